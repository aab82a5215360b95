package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tristar/fitness-hub/internal/apperr"
)

func TestNormalizeDefaults(t *testing.T) {
	q := ListQuery{}
	require.NoError(t, q.Normalize(MemberSchema))
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, "name", q.SortBy)
	assert.False(t, q.Desc)

	inv := ListQuery{}
	require.NoError(t, inv.Normalize(InvoiceSchema))
	assert.Equal(t, "createdAt", inv.SortBy)
	assert.True(t, inv.Desc)
}

func TestNormalizeRejectsUnknownFields(t *testing.T) {
	q := ListQuery{
		Filters: map[string]string{"status": "active", "password": "x"},
		SortBy:  "email",
		Limit:   500,
	}
	err := q.Normalize(MemberSchema)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	names := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"limit", "sortBy", "password"}, names)
}

func TestNormalizeFoldsEmailFilter(t *testing.T) {
	q := ListQuery{Filters: map[string]string{"email": " Asha@Example.com", "status": "Active"}}
	require.NoError(t, q.Normalize(MemberSchema))
	assert.Equal(t, "asha@example.com", q.Filters["email"])
	assert.Equal(t, "Active", q.Filters["status"])
}

func TestNormalizeBoundsPage(t *testing.T) {
	for _, page := range []int{-1, MaxPage + 1, math.MaxInt} {
		q := ListQuery{Page: page}
		err := q.Normalize(MemberSchema)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "page %d", page)
	}

	q := ListQuery{Page: MaxPage, Limit: MaxPageSize}
	require.NoError(t, q.Normalize(MemberSchema))
	assert.Positive(t, q.Offset())
}

func TestNewPagination(t *testing.T) {
	q := ListQuery{Page: 2, Limit: 20}
	p := NewPagination(q, 45)
	assert.Equal(t, Pagination{CurrentPage: 2, PageSize: 20, TotalPages: 3, TotalCount: 45, HasNext: true, HasPrev: true}, p)
	assert.Equal(t, 20, q.Offset())

	last := NewPagination(ListQuery{Page: 3, Limit: 20}, 45)
	assert.False(t, last.HasNext)

	empty := NewPagination(ListQuery{Page: 1, Limit: 20}, 0)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
	assert.Zero(t, empty.TotalPages)
}

func TestSchemasSearchFieldsResolve(t *testing.T) {
	for name, s := range map[string]Schema{
		"members": MemberSchema, "invoices": InvoiceSchema, "trainers": TrainerSchema,
		"visitors": VisitorSchema, "followups": FollowUpSchema, "sessions": SessionSchema,
		"activities": ActivitySchema, "checkins": CheckInSchema,
	} {
		for _, f := range s.Search {
			_, ok := s.Fields[f]
			assert.True(t, ok, "%s search field %s", name, f)
		}
		def, ok := s.Fields[s.DefaultSort]
		assert.True(t, ok && def.Sort, "%s default sort", name)
	}
}
