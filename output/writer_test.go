package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/bondscrape/config"
	"github.com/use-agent/bondscrape/models"
)

func sampleTable(t *testing.T) *models.Table {
	t.Helper()
	tbl := models.NewTable([]string{"ISIN", "ULTIMO", "Rendimento effettivo a scadenza lordo"})
	require.NoError(t, tbl.AppendRow("IT0005441883", 58.12, 4.25))
	require.NoError(t, tbl.AppendRow("IT0005534141", 100.0, 0.0))
	tbl.Rows[0].Index = 4
	tbl.Rows[1].Index = 17
	return tbl
}

func TestRunDirName(t *testing.T) {
	tests := []struct {
		name string
		nsec int
		want string
	}{
		{"microseconds", 678901000, "borsaitaliana_2023-11-02 17_04_05.678901"},
		{"leading zero micros", 1000, "borsaitaliana_2023-11-02 17_04_05.000001"},
		{"whole second", 0, "borsaitaliana_2023-11-02 17_04_05"},
		{"sub-microsecond only", 999, "borsaitaliana_2023-11-02 17_04_05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2023, 11, 2, 17, 4, 5, tt.nsec, time.UTC)
			name := RunDirName("borsaitaliana_", now)
			assert.Equal(t, tt.want, name)
			assert.NotContains(t, name, ":")
		})
	}
}

func TestWriter_Write(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "flussi")
	w := NewWriter(config.OutputConfig{Dir: parent, Prefix: "borsaitaliana_"})
	now := time.Date(2023, 11, 2, 17, 4, 5, 0, time.UTC)

	dir, err := w.Write(sampleTable(t), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "borsaitaliana_2023-11-02 17_04_05"), dir)

	csvData, err := os.ReadFile(filepath.Join(dir, CSVFile))
	require.NoError(t, err)
	assert.Equal(t,
		",ISIN,ULTIMO,Rendimento effettivo a scadenza lordo\n"+
			"4,IT0005441883,58.12,4.25\n"+
			"17,IT0005534141,100.0,0.0\n",
		string(csvData))

	htmlData, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(htmlData), `class="dataframe"`)
	assert.Contains(t, string(htmlData), "IT0005534141")

	jsonData, err := os.ReadFile(filepath.Join(dir, JSONFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(jsonData), "[\n    {\n        \"ISIN\": \"IT0005441883\","),
		"records are indented with four spaces:\n%s", jsonData)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(jsonData, &rows))
	assert.Equal(t, []map[string]any{
		{"ISIN": "IT0005441883", "ULTIMO": 58.12, "Rendimento effettivo a scadenza lordo": 4.25},
		{"ISIN": "IT0005534141", "ULTIMO": 100.0, "Rendimento effettivo a scadenza lordo": 0.0},
	}, rows)

	assert.NoFileExists(t, filepath.Join(dir, MarkdownFile))
}

func TestWriter_EmptyTable(t *testing.T) {
	w := NewWriter(config.OutputConfig{Dir: t.TempDir(), Prefix: "borsaitaliana_"})
	dir, err := w.Write(models.NewTable([]string{"ISIN", "ULTIMO"}), time.Now())
	require.NoError(t, err)

	jsonData, err := os.ReadFile(filepath.Join(dir, JSONFile))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(jsonData))

	csvData, err := os.ReadFile(filepath.Join(dir, CSVFile))
	require.NoError(t, err)
	assert.Equal(t, ",ISIN,ULTIMO\n", string(csvData))
}

func TestWriter_Collision(t *testing.T) {
	w := NewWriter(config.OutputConfig{Dir: t.TempDir(), Prefix: "borsaitaliana_"})
	now := time.Now()

	_, err := w.Write(sampleTable(t), now)
	require.NoError(t, err)
	_, err = w.Write(sampleTable(t), now)
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeOutput, models.ErrorCode(err))
}

func TestWriter_Markdown(t *testing.T) {
	w := NewWriter(config.OutputConfig{Dir: t.TempDir(), Prefix: "borsaitaliana_", WriteMarkdown: true})
	dir, err := w.Write(sampleTable(t), time.Now())
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(dir, MarkdownFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "|")
	assert.Contains(t, string(md), "ISIN")
	assert.Contains(t, string(md), "IT0005441883")
}

func TestWriter_FailedWriteRemovesRunDir(t *testing.T) {
	parent := t.TempDir()
	w := NewWriter(config.OutputConfig{Dir: parent, Prefix: "borsaitaliana_"})

	// CSV and HTML render any value; JSON cannot encode a channel.
	tbl := models.NewTable([]string{"ISIN", "bad"})
	require.NoError(t, tbl.AppendRow("IT0005441883", make(chan int)))

	dir, err := w.Write(tbl, time.Now())
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeOutput, models.ErrorCode(err))
	assert.Empty(t, dir)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial run directory is left behind")
}
