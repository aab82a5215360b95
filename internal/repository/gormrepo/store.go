package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tristar/fitness-hub/internal/repository"
)

// store implements repository.Store for one table.
type store[T repository.Entity] struct {
	db     *gorm.DB
	schema repository.Schema
}

func newStore[T repository.Entity](db *gorm.DB, schema repository.Schema) store[T] {
	return store[T]{db: db, schema: schema}
}

func (s store[T]) Create(ctx context.Context, v *T) error {
	return translate(s.db.WithContext(ctx).Create(v).Error)
}

func (s store[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var v T
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// List counts and fetches with the same filter scope so totals match the page.
func (s store[T]) List(ctx context.Context, q repository.ListQuery) ([]T, int64, error) {
	filter := s.filterScope(q)

	var total int64
	if err := s.db.WithContext(ctx).Model(new(T)).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	items := make([]T, 0, q.Limit)
	err := s.db.WithContext(ctx).
		Scopes(filter, s.orderScope(q.SortBy, q.Desc)).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

func (s store[T]) FindBy(ctx context.Context, field, value string) ([]T, error) {
	f, ok := s.schema.Fields[field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	items := []T{}
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: value}).
		Scopes(s.orderScope(s.schema.DefaultSort, s.schema.DefaultDesc)).
		Find(&items).Error
	return items, translate(err)
}

func (s store[T]) All(ctx context.Context) ([]T, error) {
	items := []T{}
	err := s.db.WithContext(ctx).
		Scopes(s.orderScope(s.schema.DefaultSort, s.schema.DefaultDesc)).
		Find(&items).Error
	return items, translate(err)
}

// Update writes every column, zero values included.
func (s store[T]) Update(ctx context.Context, v *T) error {
	res := s.db.WithContext(ctx).Model(v).Select("*").Updates(v)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s store[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s store[T]) filterScope(q repository.ListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, name := range q.SortedFilters() {
			f := s.schema.Fields[name]
			db = db.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: q.Filters[name]})
		}
		if q.Search != "" && len(s.schema.Search) > 0 {
			pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
			parts := make([]string, 0, len(s.schema.Search))
			args := make([]any, 0, len(s.schema.Search))
			for _, name := range s.schema.Search {
				parts = append(parts, "LOWER("+s.schema.Fields[name].Column+") LIKE ? ESCAPE '\\'")
				args = append(args, pattern)
			}
			db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
		}
		return db
	}
}

// orderScope sorts by the schema column, then by id so pages are stable.
func (s store[T]) orderScope(sortBy string, desc bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f, ok := s.schema.Fields[sortBy]; ok && f.Column != "id" {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Column}, Desc: desc})
		}
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc && sortBy == "id"})
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}
