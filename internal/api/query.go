package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/repository"
	"tristar/fitness-hub/internal/sequence"
)

var reservedParams = map[string]struct{}{
	"page": {}, "limit": {}, "sortBy": {}, "sortOrder": {}, "search": {},
}

// parseListQuery reads page, limit, sortBy, sortOrder and search. Every other
// non-empty query parameter becomes an exact-match filter; the service rejects
// names its collection does not expose.
func parseListQuery(c *gin.Context) (repository.ListQuery, error) {
	q := repository.ListQuery{Filters: map[string]string{}}
	var fields []apperr.FieldError

	for name, dst := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: name, Message: "must be an integer"})
			continue
		}
		*dst = n
	}

	switch strings.ToLower(c.DefaultQuery("sortOrder", "asc")) {
	case "asc":
	case "desc":
		q.Desc = true
	default:
		fields = append(fields, apperr.FieldError{Field: "sortOrder", Message: "must be asc or desc"})
	}
	q.SortBy = c.Query("sortBy")
	q.Search = c.Query("search")

	for name, values := range c.Request.URL.Query() {
		if _, reserved := reservedParams[name]; reserved || len(values) == 0 || values[0] == "" {
			continue
		}
		q.Filters[name] = values[0]
	}

	if len(fields) > 0 {
		return q, apperr.Validation("invalid list query", fields...)
	}
	return q, nil
}

// invoiceIDParam accepts both "#MP0001" and the URL-friendly "MP0001".
func invoiceIDParam(c *gin.Context) string {
	id := c.Param("id")
	if _, ok := sequence.Parse(id); !ok {
		if _, ok := sequence.Parse("#" + id); ok {
			return "#" + id
		}
	}
	return id
}
