package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/bondscrape/models"
	"golang.org/x/net/html"
)

// FirstTable parses rawHTML and returns the first <table> on the page.
//
// Each <tr> contributes its <td> cells, or its <th> cells when it has no
// <td>; rows with neither are skipped. The first contributing row becomes
// the header and is not part of the returned rows. Only the first table is
// read even when the page holds several.
//
// Header names are made unique so no cell is lost when pages are stacked:
// a blank header becomes "Unnamed: <position>" and a repeated one gets a
// ".1", ".2", ... suffix ("Var", "Var.1").
//
// A page with no table, or whose first table yields no rows, returns a
// ScrapeError wrapping models.ErrEmptyTable.
func FirstTable(rawHTML string) (*models.Table, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, models.NewScrapeError(models.ErrCodeEmptyTable, "no table on page", models.ErrEmptyTable)
	}

	var data [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			cells = tr.Find("th")
		}
		if cells.Length() == 0 {
			return
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			row = append(row, cellText(c))
		})
		data = append(data, row)
	})

	if len(data) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeEmptyTable, "first table has no rows", models.ErrEmptyTable)
	}

	out := models.NewTable(uniqueColumns(data[0]))
	for i, row := range data[1:] {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := out.AppendRow(values...); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeMalformed, fmt.Sprintf("table row %d does not fit the header", i+1), err)
		}
	}
	return out, nil
}

// uniqueColumns renames blank and repeated header cells.
func uniqueColumns(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, name := range header {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// parseDocument builds a goquery document on top of an x/net/html parse tree.
func parseDocument(rawHTML string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeMalformed, "failed to parse page HTML", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// cellText returns the visible text of a cell with whitespace runs
// (including non-breaking spaces) collapsed to a single space.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// RequireTable fails, like FirstTable, when rawHTML has no <table> at all.
// It lets a transport that runs no JavaScript hand over to the browser.
func RequireTable(rawHTML string) error {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return err
	}
	if doc.Find("table").Length() == 0 {
		return models.NewScrapeError(models.ErrCodeEmptyTable, "no table on page", models.ErrEmptyTable)
	}
	return nil
}
