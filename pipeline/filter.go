package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/use-agent/bondscrape/models"
)

// NormalizeDecimal turns a comma-decimal string ("99,5") into a
// dot-decimal one ("99.5"). Strings without commas are returned unchanged.
func NormalizeDecimal(s string) string {
	return strings.ReplaceAll(s, ",", ".")
}

// ParseDecimal parses a comma- or dot-decimal number.
func ParseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(NormalizeDecimal(s)), 64)
}

// isMissing reports whether a cell has no usable value.
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// toFloat coerces a cell to float64.
func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := ParseDecimal(x)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %v (%T) to a number", v, v)
	}
}

// FilterByPrice concatenates the listing tables in page order, drops rows
// with no price, converts the price column to float64, and keeps rows
// priced strictly below maxPrice.
//
// The result is a subset of the concatenated rows in their original order;
// each row keeps its concatenation index.
func FilterByPrice(tables []*models.Table, priceColumn string, maxPrice float64) (*models.Table, error) {
	combined := models.Concat(tables...)
	idx, ok := combined.ColumnIndex(priceColumn)
	if !ok {
		return nil, models.NewScrapeError(
			models.ErrCodeMalformed,
			fmt.Sprintf("listing has no %q column", priceColumn),
			nil,
		)
	}

	priced := combined.Filter(func(r models.Row) bool {
		return !isMissing(r.Values[idx])
	})
	if err := priced.MapColumn(priceColumn, toFloat); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidNumber, "price is not a number", err)
	}

	return priced.Filter(func(r models.Row) bool {
		return r.Values[idx].(float64) < maxPrice
	}), nil
}
