package pipeline

import (
	"github.com/use-agent/bondscrape/models"
)

// yieldToFloat coerces a scraped yield; the site leaves zero yields blank.
func yieldToFloat(v any) (any, error) {
	if isMissing(v) {
		return 0.0, nil
	}
	return toFloat(v)
}

// FilterByYield converts the gross yield column of tbl to float64 in place
// (blank → 0.0) and returns the rows whose yield is strictly above minYield.
func FilterByYield(tbl *models.Table, grossColumn string, minYield float64) (*models.Table, error) {
	idx, ok := tbl.ColumnIndex(grossColumn)
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeMalformed, "table has no gross yield column", nil)
	}
	if err := tbl.MapColumn(grossColumn, yieldToFloat); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidNumber, "gross yield is not a number", err)
	}
	return tbl.Filter(func(r models.Row) bool {
		return r.Values[idx].(float64) > minYield
	}), nil
}
