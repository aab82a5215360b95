// Package service holds the Record Store business rules. Services validate
// input, enforce uniqueness and derivation invariants, append activity entries
// and translate repository errors into apperr kinds.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/metrics"
	"tristar/fitness-hub/internal/repository"
)

// Env carries the collaborators shared by every service.
type Env struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics // may be nil
	Now     func() time.Time
	NewID   func() string
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	if e.Now == nil {
		e.Now = func() time.Time { return time.Now().UTC() }
	}
	if e.NewID == nil {
		e.NewID = uuid.NewString
	}
	return e
}

// recorder appends activity entries. A failed append is logged and never
// fails the mutation that produced it.
type recorder struct {
	env        Env
	activities repository.ActivityRepository
}

func (r recorder) record(ctx context.Context, a domain.Activity) {
	a.ID = r.env.NewID()
	a.Timestamp = r.env.Now()
	if err := r.activities.Append(ctx, &a); err != nil {
		r.env.Logger.Warn("failed to append activity",
			zap.String("type", string(a.Type)),
			zap.String("action", a.Action),
			zap.Error(err))
	}
}

// fromRepo maps repository sentinels onto the error taxonomy.
func fromRepo(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(resource)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Wrap(apperr.KindConflict, resource+" already exists", err)
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal("storage failure", err)
}

// list normalizes q against schema before running fetch.
func list[T any](ctx context.Context, q repository.ListQuery, schema repository.Schema, resource string,
	fetch func(context.Context, repository.ListQuery) ([]T, int64, error)) ([]T, repository.Pagination, error) {
	if err := q.Normalize(schema); err != nil {
		return nil, repository.Pagination{}, err
	}
	items, total, err := fetch(ctx, q)
	if err != nil {
		return nil, repository.Pagination{}, fromRepo(err, resource)
	}
	return items, repository.NewPagination(q, total), nil
}

func changedDetails(changed []string) string {
	return "Updated " + strings.Join(changed, ", ")
}
