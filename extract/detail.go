package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/bondscrape/models"
)

// DetailExtractor reads the key/value tables of an instrument detail page.
// Selectors are compiled once and reused for every page.
type DetailExtractor struct {
	container cascadia.Selector
	table     cascadia.Selector
}

// NewDetailExtractor compiles class selectors for the containers and for
// the tables inside them (e.g. "l-box" and "m-table").
func NewDetailExtractor(containerClass, tableClass string) (*DetailExtractor, error) {
	container, err := cascadia.Compile("." + containerClass)
	if err != nil {
		return nil, fmt.Errorf("extract: container class %q: %w", containerClass, err)
	}
	table, err := cascadia.Compile("." + tableClass)
	if err != nil {
		return nil, fmt.Errorf("extract: table class %q: %w", tableClass, err)
	}
	return &DetailExtractor{container: container, table: table}, nil
}

// Extract returns one DetailRecord per table that yielded at least one
// pair, ordered by container then by table in document order.
//
// Only rows with exactly two <td> cells count; the first cell is the key
// and the second the value. A repeated key keeps its first position and
// takes the later value.
func (d *DetailExtractor) Extract(rawHTML string) ([]models.DetailRecord, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	var records []models.DetailRecord
	doc.FindMatcher(d.container).Each(func(_ int, box *goquery.Selection) {
		box.FindMatcher(d.table).Each(func(_ int, tbl *goquery.Selection) {
			rec := models.NewDetailRecord()
			tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
				cells := tr.Find("td")
				if cells.Length() != 2 {
					return
				}
				rec.Set(cellText(cells.Eq(0)), cellText(cells.Eq(1)))
			})
			if rec.Len() > 0 {
				records = append(records, rec)
			}
		})
	})
	return records, nil
}
