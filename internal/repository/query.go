package repository

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"tristar/fitness-hub/internal/apperr"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage bounds Page so Offset stays positive.
	MaxPage = 1_000_000
)

// ListQuery selects a page of a collection. Filters are an exact-match
// conjunction keyed by API field name; Search is a case-insensitive substring
// match over the collection's search fields.
type ListQuery struct {
	Filters map[string]string
	Search  string
	SortBy  string
	Desc    bool
	Page    int
	Limit   int
}

// Normalize applies defaults and rejects fields the schema does not expose.
func (q *ListQuery) Normalize(s Schema) error {
	var fields []apperr.FieldError
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageSize
	}
	if q.Page < 1 || q.Page > MaxPage {
		fields = append(fields, apperr.FieldError{Field: "page", Message: fmt.Sprintf("must be between 1 and %d", MaxPage)})
	}
	if q.Limit < 1 || q.Limit > MaxPageSize {
		fields = append(fields, apperr.FieldError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", MaxPageSize)})
	}
	if q.SortBy == "" {
		q.SortBy = s.DefaultSort
		q.Desc = s.DefaultDesc
	} else if f, ok := s.Fields[q.SortBy]; !ok || !f.Sort {
		fields = append(fields, apperr.FieldError{Field: "sortBy", Message: "cannot sort by " + q.SortBy})
	}
	for _, name := range sortedKeys(q.Filters) {
		f, ok := s.Fields[name]
		if !ok || !f.Filter {
			fields = append(fields, apperr.FieldError{Field: name, Message: "is not a filterable field"})
			continue
		}
		if f.Fold {
			q.Filters[name] = strings.ToLower(strings.TrimSpace(q.Filters[name]))
		}
	}
	q.Search = strings.TrimSpace(q.Search)
	if len(fields) > 0 {
		return apperr.Validation("invalid list query", fields...)
	}
	return nil
}

// Offset is the number of records skipped before the current page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasNext     bool  `json:"hasNextPage"`
	HasPrev     bool  `json:"hasPrevPage"`
}

func NewPagination(q ListQuery, total int64) Pagination {
	pages := int(math.Ceil(float64(total) / float64(q.Limit)))
	return Pagination{
		CurrentPage: q.Page,
		PageSize:    q.Limit,
		TotalPages:  pages,
		TotalCount:  total,
		HasNext:     q.Page < pages,
		HasPrev:     q.Page > 1,
	}
}

// SortedFilters returns filter names in a stable order for query building.
func (q ListQuery) SortedFilters() []string {
	return sortedKeys(q.Filters)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
