// Package basesvc provides the generic MongoDB persistence layer shared by
// every typed store.
package basesvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/base/models"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/utility"
)

// BaseServiceMongo defines the generic operations available on a collection.
// Type parameter Model is the typed document shape.
type BaseServiceMongo[Model any] interface {
	InsertOne(ctx context.Context, data Model) (Model, error)

	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (Model, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]Model, error)
	FindRaw(ctx context.Context, filter interface{}) (bson.M, error)

	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (Model, error)
	ReplaceOne(ctx context.Context, filter interface{}, data Model) (Model, error)

	DeleteOne(ctx context.Context, filter interface{}) error
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)

	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[Model], error)
}

// BaseServiceMongoImpl implements BaseServiceMongo over a single collection.
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo creates a base service bound to the given collection.
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{collection: collection}
}

// Collection exposes the underlying collection for callers that need direct
// driver access.
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// InsertOne creates a document, stamping createdAt/updatedAt in epoch millis.
// Empty-string fields are dropped so sparse unique indexes skip them.
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	for key, value := range dataMap {
		if strValue, ok := value.(string); ok && strValue == "" {
			delete(dataMap, key)
		}
	}

	now := time.Now().UnixMilli()
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now

	result, err := s.collection.InsertOne(ctx, dataMap)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	var created T
	if err := s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created); err != nil {
		return zero, common.ConvertMongoError(err)
	}
	return created, nil
}

// FindOne returns a single document matching the filter.
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	var result T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.FindOne()
	}

	findResult := s.collection.FindOne(ctx, filter, opts)
	if err := findResult.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}

	if err := findResult.Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		// A decode failure on a matched document is malformed legacy data,
		// not a driver fault.
		return zero, common.NewError(
			common.ErrCodeMalformedLegacy,
			"Stored document does not decode into the expected shape",
			common.StatusInternalServerError,
			err,
		)
	}
	return result, nil
}

// FindRaw returns the matched document as a loose map, preserving legacy
// fields the typed model does not know about.
func (s *BaseServiceMongoImpl[T]) FindRaw(ctx context.Context, filter interface{}) (bson.M, error) {
	if filter == nil {
		filter = bson.D{}
	}

	var raw bson.M
	err := s.collection.FindOne(ctx, filter).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, common.ConvertMongoError(err)
	}
	return raw, nil
}

// Find returns every document matching the filter. Always returns a non-nil
// slice.
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Find()
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var results []T
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// UpdateOne applies a partial update and returns the updated document.
// The update's $set always receives a fresh updatedAt stamp.
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (T, error) {
	var zero T

	if filter == nil {
		filter = bson.D{}
	}
	if opts == nil {
		opts = options.Update().SetUpsert(false)
	}

	updateDoc, err := normalizeUpdate(update)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}

	result, err := s.collection.UpdateOne(ctx, filter, updateDoc, opts)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return zero, common.ErrNotFound
	}

	return s.FindOne(ctx, filter, nil)
}

// ReplaceOne fully replaces the matched document. Used by the migration path
// for delete-then-recreate semantics where stray legacy fields must not
// survive a partial update.
func (s *BaseServiceMongoImpl[T]) ReplaceOne(ctx context.Context, filter interface{}, data T) (T, error) {
	var zero T

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return zero, common.ErrInvalidFormat
	}
	dataMap["updatedAt"] = time.Now().UnixMilli()
	delete(dataMap, "_id")

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, filter, dataMap, opts); err != nil {
		return zero, common.ConvertMongoError(err)
	}
	return s.FindOne(ctx, filter, nil)
}

// DeleteOne removes a single document.
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if result.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteMany removes every matching document and returns the count. Zero
// matches is not an error.
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.DeletedCount, nil
}

// CountDocuments counts documents matching the filter.
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// DocumentExists reports whether any document matches the filter.
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return count > 0, nil
}

// FindWithPagination returns one page of matching documents.
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if opts == nil {
		opts = options.Find()
	}
	opts.SetSkip((page - 1) * limit).SetLimit(limit)

	total, err := s.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	return &basemodels.PaginateResult[T]{
		Items:     items,
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Total:     total,
	}, nil
}

// normalizeUpdate wraps a plain field map in $set and stamps updatedAt.
// Updates already carrying operators pass through with the stamp added.
func normalizeUpdate(update interface{}) (bson.M, error) {
	updateMap, err := utility.ToMap(update)
	if err != nil {
		return nil, err
	}

	hasOperator := false
	for key := range updateMap {
		if len(key) > 0 && key[0] == '$' {
			hasOperator = true
			break
		}
	}

	if !hasOperator {
		updateMap = bson.M{"$set": updateMap}
	}

	set, ok := updateMap["$set"].(map[string]interface{})
	if !ok {
		if setM, okM := updateMap["$set"].(bson.M); okM {
			set = setM
		} else {
			set = bson.M{}
		}
	}
	set["updatedAt"] = time.Now().UnixMilli()
	updateMap["$set"] = set

	return bson.M(updateMap), nil
}
