package output

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/use-agent/bondscrape/models"
)

// htmlCSSClass is the class of the rendered <table>.
const htmlCSSClass = "dataframe"

// newTableWriter loads tbl into a go-pretty writer, index column first.
func newTableWriter(tbl *models.Table) table.Writer {
	tw := table.NewWriter()

	header := make(table.Row, 0, len(tbl.Columns)+1)
	header = append(header, "")
	for _, c := range tbl.Columns {
		header = append(header, c)
	}
	tw.AppendHeader(header)

	for _, r := range tbl.Rows {
		row := make(table.Row, 0, len(r.Values)+1)
		row = append(row, strconv.Itoa(r.Index))
		for _, v := range r.Values {
			row = append(row, formatValue(v))
		}
		tw.AppendRow(row)
	}
	return tw
}

// RenderHTML renders tbl as an HTML <table class="dataframe">.
func RenderHTML(tbl *models.Table) string {
	tw := newTableWriter(tbl)
	tw.Style().HTML.CSSClass = htmlCSSClass
	tw.Style().HTML.EscapeText = true
	return tw.RenderHTML()
}
