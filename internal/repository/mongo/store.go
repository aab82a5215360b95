package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tristar/fitness-hub/internal/repository"
)

// store implements repository.Store for one collection.
type store[T repository.Entity] struct {
	collection *mongo.Collection
	schema     repository.Schema
}

func newStore[T repository.Entity](c *mongo.Collection, schema repository.Schema) store[T] {
	return store[T]{collection: c, schema: schema}
}

func (s store[T]) Create(ctx context.Context, v *T) error {
	_, err := s.collection.InsertOne(ctx, v)
	return translate(err)
}

func (s store[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var v T
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (s store[T]) List(ctx context.Context, q repository.ListQuery) ([]T, int64, error) {
	filter := buildFilter(s.schema, q)
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(buildSort(s.schema, q.SortBy, q.Desc)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	items, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s store[T]) FindBy(ctx context.Context, field, value string) ([]T, error) {
	f, ok := s.schema.Fields[field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	return s.find(ctx, bson.M{f.BSON: value}, s.defaultOrder())
}

func (s store[T]) All(ctx context.Context) ([]T, error) {
	return s.find(ctx, bson.M{}, s.defaultOrder())
}

// Update replaces the whole document.
func (s store[T]) Update(ctx context.Context, v *T) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": (*v).Key()}, v)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s store[T]) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s store[T]) defaultOrder() *options.FindOptions {
	return options.Find().SetSort(buildSort(s.schema, s.schema.DefaultSort, s.schema.DefaultDesc))
}

func (s store[T]) find(ctx context.Context, filter any, opts *options.FindOptions) ([]T, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// buildFilter turns exact-match filters and the search term into one query document.
func buildFilter(s repository.Schema, q repository.ListQuery) bson.M {
	filter := bson.M{}
	for _, name := range q.SortedFilters() {
		filter[s.Fields[name].BSON] = q.Filters[name]
	}
	if q.Search != "" && len(s.Search) > 0 {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := make(bson.A, 0, len(s.Search))
		for _, name := range s.Search {
			or = append(or, bson.M{s.Fields[name].BSON: pattern})
		}
		filter["$or"] = or
	}
	return filter
}

// buildSort orders by the schema key and breaks ties on _id.
func buildSort(s repository.Schema, sortBy string, desc bool) bson.D {
	dir := 1
	if desc {
		dir = -1
	}
	if f, ok := s.Fields[sortBy]; ok && f.BSON != "_id" {
		return bson.D{{Key: f.BSON, Value: dir}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "_id", Value: dir}}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}
