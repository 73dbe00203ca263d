package orderstore

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "github.com/orimhanre/distrinaranjos-sub004/internal/api/base/service"
	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/database"
)

// tokenAliasFields are the field names a composite token has historically
// been stored under. Only the store and the matcher know this list.
var tokenAliasFields = []string{"orderToken", "invoiceNumber", "orderNumber", "numeroPedido"}

// NewMongoRecordStore builds the full store set for one environment database.
func NewMongoRecordStore(db *mongo.Database, env string) *RecordStore {
	return &RecordStore{
		Env:      env,
		Profiles: NewMongoProfileStore(db),
		Orders:   NewMongoOrderStore(db),
		Archive:  NewMongoArchiveStore(db),
		Tokens:   NewMongoTokenStore(db),
	}
}

// ====================================
// ProfileStore
// ====================================

// MongoProfileStore implements ProfileStore over the client_profiles
// collection.
type MongoProfileStore struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.ClientProfile]
}

// NewMongoProfileStore creates the profile store.
func NewMongoProfileStore(db *mongo.Database) *MongoProfileStore {
	return &MongoProfileStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.ClientProfile](db.Collection(database.ColClientProfiles)),
	}
}

func profileKey(email string) bson.M {
	return bson.M{"email": strings.ToLower(email)}
}

func (s *MongoProfileStore) Get(ctx context.Context, email string) (ordermodels.ClientProfile, error) {
	return s.FindOne(ctx, profileKey(email), nil)
}

func (s *MongoProfileStore) GetRaw(ctx context.Context, email string) (bson.M, error) {
	return s.FindRaw(ctx, profileKey(email))
}

func (s *MongoProfileStore) Replace(ctx context.Context, profile ordermodels.ClientProfile) (ordermodels.ClientProfile, error) {
	profile.Email = strings.ToLower(profile.Email)
	return s.ReplaceOne(ctx, profileKey(profile.Email), profile)
}

func (s *MongoProfileStore) Patch(ctx context.Context, email string, fields bson.M) error {
	_, err := s.UpdateOne(ctx, profileKey(email), fields, nil)
	return err
}

func (s *MongoProfileStore) Delete(ctx context.Context, email string) error {
	return s.DeleteOne(ctx, profileKey(email))
}

func (s *MongoProfileStore) FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.ClientProfile, error) {
	return s.Find(ctx, bson.M{field: value}, nil)
}

func (s *MongoProfileStore) ListLegacy(ctx context.Context) ([]ordermodels.ClientProfile, error) {
	filter := bson.M{"orders.0": bson.M{"$exists": true}}
	return s.Find(ctx, filter, nil)
}

// ====================================
// OrderStore
// ====================================

// MongoOrderStore implements OrderStore over the order_records collection.
type MongoOrderStore struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.OrderRecord]
}

// NewMongoOrderStore creates the canonical order store.
func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.OrderRecord](db.Collection(database.ColOrderRecords)),
	}
}

func orderKey(id ordermodels.OrderID) bson.M {
	return bson.M{
		"clientEmail": strings.ToLower(id.ClientEmail),
		"orderToken":  id.OrderToken,
	}
}

func (s *MongoOrderStore) Get(ctx context.Context, id ordermodels.OrderID) (ordermodels.OrderRecord, error) {
	return s.FindOne(ctx, orderKey(id), nil)
}

func (s *MongoOrderStore) ListByClient(ctx context.Context, email string) ([]ordermodels.OrderRecord, error) {
	return s.Find(ctx, bson.M{"clientEmail": strings.ToLower(email)}, nil)
}

func (s *MongoOrderStore) FindByTokenAlias(ctx context.Context, token string) ([]ordermodels.OrderRecord, error) {
	or := make([]bson.M, 0, len(tokenAliasFields))
	for _, field := range tokenAliasFields {
		or = append(or, bson.M{field: token})
	}
	return s.Find(ctx, bson.M{"$or": or}, nil)
}

func (s *MongoOrderStore) Insert(ctx context.Context, record ordermodels.OrderRecord) (ordermodels.OrderRecord, error) {
	record.ClientEmail = strings.ToLower(record.ClientEmail)
	return s.InsertOne(ctx, record)
}

func (s *MongoOrderStore) Upsert(ctx context.Context, record ordermodels.OrderRecord) (ordermodels.OrderRecord, error) {
	record.ClientEmail = strings.ToLower(record.ClientEmail)
	return s.ReplaceOne(ctx, orderKey(record.OrderID()), record)
}

func (s *MongoOrderStore) Patch(ctx context.Context, id ordermodels.OrderID, fields bson.M) (ordermodels.OrderRecord, error) {
	return s.UpdateOne(ctx, orderKey(id), fields, nil)
}

func (s *MongoOrderStore) Delete(ctx context.Context, id ordermodels.OrderID) error {
	return s.DeleteOne(ctx, orderKey(id))
}

func (s *MongoOrderStore) FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.OrderRecord, error) {
	return s.Find(ctx, bson.M{field: value}, nil)
}

func (s *MongoOrderStore) DeleteByField(ctx context.Context, field string, value interface{}) (int64, error) {
	return s.DeleteMany(ctx, bson.M{field: value})
}

// ====================================
// ArchiveStore
// ====================================

// MongoArchiveStore implements ArchiveStore over the archived_orders
// collection.
type MongoArchiveStore struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.ArchivedOrder]
}

// NewMongoArchiveStore creates the archive store.
func NewMongoArchiveStore(db *mongo.Database) *MongoArchiveStore {
	return &MongoArchiveStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.ArchivedOrder](db.Collection(database.ColArchivedOrders)),
	}
}

func (s *MongoArchiveStore) Get(ctx context.Context, orderID string) (ordermodels.ArchivedOrder, error) {
	return s.FindOne(ctx, bson.M{"orderId": orderID}, nil)
}

func (s *MongoArchiveStore) Insert(ctx context.Context, archived ordermodels.ArchivedOrder) (ordermodels.ArchivedOrder, error) {
	return s.InsertOne(ctx, archived)
}

func (s *MongoArchiveStore) Delete(ctx context.Context, orderID string) error {
	return s.DeleteOne(ctx, bson.M{"orderId": orderID})
}

func (s *MongoArchiveStore) ListExpired(ctx context.Context, now int64) ([]ordermodels.ArchivedOrder, error) {
	return s.Find(ctx, bson.M{"retentionDeadline": bson.M{"$lte": now}}, nil)
}

func (s *MongoArchiveStore) FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.ArchivedOrder, error) {
	return s.Find(ctx, bson.M{field: value}, nil)
}

// ====================================
// TokenStore
// ====================================

// MongoTokenStore implements TokenStore over the device_tokens collection.
type MongoTokenStore struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.DeviceToken]
}

// NewMongoTokenStore creates the device-token registry store.
func NewMongoTokenStore(db *mongo.Database) *MongoTokenStore {
	return &MongoTokenStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.DeviceToken](db.Collection(database.ColDeviceTokens)),
	}
}

func (s *MongoTokenStore) ListByEmail(ctx context.Context, email string) ([]ordermodels.DeviceToken, error) {
	return s.Find(ctx, bson.M{"email": strings.ToLower(email)}, nil)
}

func (s *MongoTokenStore) Register(ctx context.Context, token ordermodels.DeviceToken) (ordermodels.DeviceToken, error) {
	token.Email = strings.ToLower(token.Email)
	existing, err := s.FindOne(ctx, bson.M{"token": token.Token}, nil)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return ordermodels.DeviceToken{}, err
	}
	return s.InsertOne(ctx, token)
}

func (s *MongoTokenStore) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	return s.DeleteMany(ctx, bson.M{"token": bson.M{"$in": tokens}})
}

func (s *MongoTokenStore) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	return s.DeleteMany(ctx, bson.M{"email": strings.ToLower(email)})
}
