package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/bondscrape/models"
	"github.com/use-agent/bondscrape/output"
)

var fixedNow = time.Date(2024, 3, 7, 9, 15, 42, 123456000, time.Local)

func newTestPipeline(f Fetcher, outDir string) (*Pipeline, *bytes.Buffer) {
	var stdout bytes.Buffer
	p := New(f, testConfig(outDir), &stdout)
	p.now = func() time.Time { return fixedNow }
	return p, &stdout
}

func TestRun_WritesFilteredBonds(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "flussi")
	f := newFakeFetcher()
	eightPages(f)
	e := newEnricher(t, f, testConfig(outDir))
	f.pages[e.DetailURL("IT0000000104")] = detailHTML(6, "4,12", "3,61")
	f.pages[e.DetailURL("IT0000000602")] = detailHTML(6, "", "")

	p, stdout := newTestPipeline(f, outDir)
	dirs, err := p.Run(context.Background())
	require.NoError(t, err)

	wantDir := filepath.Join(outDir, "borsaitaliana_2024-03-07 09_15_42.123456")
	require.Equal(t, []string{wantDir}, dirs)
	for _, name := range []string{output.CSVFile, output.HTMLFile, output.JSONFile} {
		assert.FileExists(t, filepath.Join(wantDir, name))
	}
	assert.NoFileExists(t, filepath.Join(wantDir, output.MarkdownFile))

	data, err := os.ReadFile(filepath.Join(wantDir, output.JSONFile))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{
		"ISIN":   "IT0000000104",
		"ULTIMO": 99.5,
		grossKey: 4.12,
		netKey:   "3,61",
	}, rows[0])

	assert.Contains(t, stdout.String(), grossKey+": 2 rows, string")
	assert.Contains(t, stdout.String(), grossKey+": 2 rows, float64")
}

func TestRun_FailureWritesNothing(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "flussi")
	f := newFakeFetcher()
	eightPages(f)
	f.pages[PageURL(baseURL, "lista.html?&page=%d", 5)] = `<html><body></body></html>`

	p, _ := newTestPipeline(f, outDir)
	dirs, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeEmptyTable, models.ErrorCode(err))
	assert.Empty(t, dirs)
	assert.NoDirExists(t, outDir)
	assert.Len(t, f.calls, 5, "no detail page is fetched")
}

func TestRun_DetailFailureWritesNothing(t *testing.T) {
	outDir := t.TempDir()
	f := newFakeFetcher()
	eightPages(f)
	e := newEnricher(t, f, testConfig(outDir))
	f.pages[e.DetailURL("IT0000000104")] = detailHTML(6, "4,12", "3,61")
	f.pages[e.DetailURL("IT0000000602")] = detailHTML(1, "4,12", "3,61")

	p, _ := newTestPipeline(f, outDir)
	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeDetailMissing, models.ErrorCode(err))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_SkipsOtherSites(t *testing.T) {
	outDir := t.TempDir()
	f := newFakeFetcher()
	p, _ := newTestPipeline(f, outDir)
	p.cfg.Listing.URLs = []string{"https://www.example.com/bonds/"}

	dirs, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dirs)
	assert.Empty(t, f.calls)
}

func TestRun_SameTimestampCollides(t *testing.T) {
	outDir := t.TempDir()
	f := newFakeFetcher()
	eightPages(f)
	e := newEnricher(t, f, testConfig(outDir))
	f.pages[e.DetailURL("IT0000000104")] = detailHTML(6, "4,12", "3,61")
	f.pages[e.DetailURL("IT0000000602")] = detailHTML(6, "3,50", "3,06")

	p, _ := newTestPipeline(f, outDir)
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeOutput, models.ErrorCode(err))
}
