package contract

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoContracts       = errors.New("no contracts registered")
	ErrNoMatch           = errors.New("no contracts match the given parameters")
	ErrInvalidParams     = errors.New("invalid parameter(s)")
	ErrInvalidDateFilter = errors.New("invalid issue_date filter")
	ErrMissingID         = errors.New("id is required to update the contract")
	ErrSummary           = errors.New("error calculating contract summary")
)
