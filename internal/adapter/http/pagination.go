package http

import (
	"math"
	"net/url"
	"strconv"

	domain "gccp-api/internal/domain/contract"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// keeps (page-1)*size within int for any accepted size
	maxPage = math.MaxInt / MaxPageSize

	paramPage     = "page"
	paramPageSize = "page_size"
)

// PaginatedResponse wraps a page of list results.
type PaginatedResponse struct {
	Data        any   `json:"data"`
	TotalRows   int64 `json:"total_rows"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

type pageRequest struct {
	page, size int
}

// takePage removes the pagination keys from params. ok is false when neither
// key was sent, meaning the full result set is wanted. Non-numeric values
// fall back to the defaults.
func takePage(params url.Values) (pr pageRequest, ok bool) {
	ok = params.Has(paramPage) || params.Has(paramPageSize)
	pr.page, _ = strconv.Atoi(params.Get(paramPage))
	pr.size, _ = strconv.Atoi(params.Get(paramPageSize))
	params.Del(paramPage)
	params.Del(paramPageSize)

	switch {
	case pr.page <= 0:
		pr.page = 1
	case pr.page > maxPage:
		pr.page = maxPage
	}
	switch {
	case pr.size > MaxPageSize:
		pr.size = MaxPageSize
	case pr.size <= 0:
		pr.size = DefaultPageSize
	}
	return pr, ok
}

func (pr pageRequest) toPage() domain.Page {
	return domain.Page{Offset: (pr.page - 1) * pr.size, Limit: pr.size}
}

func (pr pageRequest) response(data any, totalRows int64) PaginatedResponse {
	totalPages := 0
	if totalRows > 0 {
		totalPages = int(math.Ceil(float64(totalRows) / float64(pr.size)))
	}
	return PaginatedResponse{
		Data:        data,
		TotalRows:   totalRows,
		TotalPages:  totalPages,
		CurrentPage: pr.page,
		PageSize:    pr.size,
	}
}
