package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/use-agent/bondscrape/models"
)

// PrintColumn writes one column of tbl to w as an index/value table, with
// the column name and row count as caption.
func PrintColumn(w io.Writer, tbl *models.Table, column string) error {
	values, err := tbl.Column(column)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"", column})
	for i, v := range values {
		tw.AppendRow(table.Row{strconv.Itoa(tbl.Rows[i].Index), formatValue(v)})
	}
	tw.SetCaption(fmt.Sprintf("%s: %d rows, %s", column, len(values), dtype(values)))
	tw.Render()
	return nil
}

// dtype names the common Go type of a column's values, "object" when mixed.
func dtype(values []any) string {
	kind := ""
	for _, v := range values {
		k := fmt.Sprintf("%T", v)
		if kind == "" {
			kind = k
		} else if k != kind {
			return "object"
		}
	}
	if kind == "" {
		return "empty"
	}
	return kind
}
