package contract

import "time"

// DateRange is the half-open interval [From, To) on issue_date.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Filter is a conjunction of exact-match criteria. Empty fields match all.
type Filter struct {
	ID             string
	DocumentNumber string
	State          string
	IssueDate      *DateRange
}

// Page selects a window of a listing. Limit 0 returns every row.
type Page struct {
	Offset int
	Limit  int
}
