package models

import (
	"errors"
	"fmt"
)

// Error codes used in log records and internal error handling.
const (
	ErrCodeTimeout       = "SCRAPE_TIMEOUT"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash  = "BROWSER_CRASH"
	ErrCodeEmptyTable    = "TABLE_EMPTY"
	ErrCodeMalformed     = "TABLE_MALFORMED"
	ErrCodeInvalidNumber = "INVALID_NUMBER"
	ErrCodeDetailMissing = "DETAIL_MISSING"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeOutput        = "OUTPUT_FAILED"
)

// ErrEmptyTable is reported when a page has no table, or its first table has no rows.
var ErrEmptyTable = errors.New("table is empty")

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ErrorCode returns the code of the first ScrapeError in err's chain,
// or "" when there is none.
func ErrorCode(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
