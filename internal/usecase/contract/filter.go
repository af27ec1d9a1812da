package contract

import (
	"net/url"
	"strconv"
	"time"

	domain "gccp-api/internal/domain/contract"
)

// Recognized listing parameters.
const (
	ParamID             = "id"
	ParamDocumentNumber = "document_number"
	ParamState          = "state"
	ParamIssueDate      = "issue_date"
)

// FilterQuery is a parsed set of listing parameters.
type FilterQuery struct {
	Filter domain.Filter
	// Provided counts the recognized, non-empty keys.
	Provided int
}

// BuildFilter turns query parameters into a conjunctive filter. Any key that
// is not a recognized, non-empty filter fails the whole request. In lenient
// mode an issue_date that matches no format counts as provided but filters
// nothing.
func BuildFilter(params url.Values, strictDates bool) (FilterQuery, error) {
	var q FilterQuery
	if v := params.Get(ParamID); v != "" {
		q.Filter.ID = v
		q.Provided++
	}
	if v := params.Get(ParamDocumentNumber); v != "" {
		q.Filter.DocumentNumber = v
		q.Provided++
	}
	if v := params.Get(ParamState); v != "" {
		q.Filter.State = v
		q.Provided++
	}
	badDate := false
	if v := params.Get(ParamIssueDate); v != "" {
		q.Provided++
		if r, ok := ParseIssueDate(v); ok {
			q.Filter.IssueDate = r
		} else {
			badDate = strictDates
		}
	}

	if len(params) > q.Provided {
		return FilterQuery{}, domain.ErrInvalidParams
	}
	if badDate {
		return FilterQuery{}, domain.ErrInvalidDateFilter
	}
	return q, nil
}

// ParseIssueDate tries, in order: an exact date (YYYY-MM-DD), a month
// (MM/YYYY) and a bare year. The first match wins.
func ParseIssueDate(raw string) (*domain.DateRange, bool) {
	if d, err := time.Parse("2006-1-2", raw); err == nil {
		return &domain.DateRange{From: d, To: d.AddDate(0, 0, 1)}, true
	}
	if d, err := time.Parse("1/2006", raw); err == nil {
		return &domain.DateRange{From: d, To: d.AddDate(0, 1, 0)}, true
	}
	if y, err := strconv.Atoi(raw); err == nil {
		from := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &domain.DateRange{From: from, To: from.AddDate(1, 0, 0)}, true
	}
	return nil, false
}
