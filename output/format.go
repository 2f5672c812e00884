package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/use-agent/bondscrape/models"
)

// formatValue renders a cell for text formats. Whole floats keep a
// trailing ".0" so numeric columns stay recognisable ("100.0", "99.5").
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !math.IsInf(x, 0) && !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes tbl with a leading, unnamed index column.
func WriteCSV(w io.Writer, tbl *models.Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(tbl.Columns)+1)
	header = append(header, "")
	header = append(header, tbl.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range tbl.Rows {
		record := make([]string, 0, len(r.Values)+1)
		record = append(record, strconv.Itoa(r.Index))
		for _, v := range r.Values {
			record = append(record, formatValue(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// jsonValue maps a cell to its JSON form; non-finite floats become null.
func jsonValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

// WriteJSON writes tbl as an array of row objects (columns in table order,
// no index), indented with four spaces.
func WriteJSON(w io.Writer, tbl *models.Table) error {
	records := tbl.Records()
	for _, rec := range records {
		for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
			pair.Value = jsonValue(pair.Value)
		}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
