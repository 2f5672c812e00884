package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/bondscrape/config"
	"github.com/use-agent/bondscrape/models"
)

// Output file names inside a run directory.
const (
	CSVFile      = "table.csv"
	HTMLFile     = "table.html"
	JSONFile     = "table.json"
	MarkdownFile = "table.md"
)

// Run timestamp layouts; the fraction is left out when it is zero.
const (
	timestampLayout       = "2006-01-02 15:04:05.000000"
	timestampLayoutSecond = "2006-01-02 15:04:05"
)

// Writer persists result tables into fresh, timestamped run directories.
type Writer struct {
	cfg config.OutputConfig
	md  *converter.Converter
}

// NewWriter creates a Writer for the given output settings.
func NewWriter(cfg config.OutputConfig) *Writer {
	w := &Writer{cfg: cfg}
	if cfg.WriteMarkdown {
		w.md = newMarkdownConverter()
	}
	return w
}

// RunDirName returns the run directory name for now, at microsecond
// precision. Colons are replaced so the name is valid on every filesystem.
func RunDirName(prefix string, now time.Time) string {
	now = now.Truncate(time.Microsecond)
	layout := timestampLayout
	if now.Nanosecond() == 0 {
		layout = timestampLayoutSecond
	}
	return prefix + strings.ReplaceAll(now.Format(layout), ":", "_")
}

// Write creates <Dir>/<Prefix><timestamp>/ and writes tbl into it as CSV,
// HTML and JSON (plus Markdown when enabled). It returns the directory.
//
// The parent directory is created when missing; the run directory must not
// exist yet. If any file cannot be written the run directory is removed.
func (w *Writer) Write(tbl *models.Table, now time.Time) (string, error) {
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return "", models.NewScrapeError(models.ErrCodeOutput, "cannot create output directory", err)
	}
	dir := filepath.Join(w.cfg.Dir, RunDirName(w.cfg.Prefix, now))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", models.NewScrapeError(models.ErrCodeOutput, "cannot create run directory", err)
	}

	html := RenderHTML(tbl)

	files := []outputFile{
		{CSVFile, func(f io.Writer) error { return WriteCSV(f, tbl) }},
		{HTMLFile, func(f io.Writer) error {
			_, err := io.WriteString(f, html)
			return err
		}},
		{JSONFile, func(f io.Writer) error { return WriteJSON(f, tbl) }},
	}
	if w.md != nil {
		files = append(files, outputFile{MarkdownFile, func(f io.Writer) error {
			md, err := ToMarkdown(w.md, html)
			if err != nil {
				return err
			}
			_, err = io.WriteString(f, md+"\n")
			return err
		}})
	}

	for _, file := range files {
		if err := writeFile(filepath.Join(dir, file.name), file.write); err != nil {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				slog.Warn("cannot remove partial run directory", "dir", dir, "error", rmErr)
			}
			return "", models.NewScrapeError(models.ErrCodeOutput, "cannot write "+file.name, err)
		}
	}
	return dir, nil
}

type outputFile struct {
	name  string
	write func(io.Writer) error
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
