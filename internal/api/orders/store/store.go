// Package orderstore defines the typed record-store contracts the order core
// depends on. The core never touches a database product directly; the Mongo
// implementations live beside these interfaces and tests substitute in-memory
// fakes.
package orderstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
)

// ProfileStore is the client_profiles table. Keys are lowercased emails.
type ProfileStore interface {
	Get(ctx context.Context, email string) (ordermodels.ClientProfile, error)
	// GetRaw returns the stored document as a loose map, keeping legacy
	// fields the typed model does not know about. The migration path needs
	// this to normalize alias fields.
	GetRaw(ctx context.Context, email string) (bson.M, error)
	// Replace fully rewrites the profile document (delete-then-recreate
	// semantics): fields absent from the new document do not survive.
	Replace(ctx context.Context, profile ordermodels.ClientProfile) (ordermodels.ClientProfile, error)
	Patch(ctx context.Context, email string, fields bson.M) error
	Delete(ctx context.Context, email string) error
	FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.ClientProfile, error)
	// ListLegacy returns every profile still carrying embedded orders.
	ListLegacy(ctx context.Context) ([]ordermodels.ClientProfile, error)
}

// OrderStore is the canonical order_records table, keyed by
// (clientEmail, orderToken).
type OrderStore interface {
	Get(ctx context.Context, id ordermodels.OrderID) (ordermodels.OrderRecord, error)
	ListByClient(ctx context.Context, email string) ([]ordermodels.OrderRecord, error)
	// FindByTokenAlias returns every record whose canonical token, invoice
	// number or legacy alias equals token, across all clients.
	FindByTokenAlias(ctx context.Context, token string) ([]ordermodels.OrderRecord, error)
	Insert(ctx context.Context, record ordermodels.OrderRecord) (ordermodels.OrderRecord, error)
	Upsert(ctx context.Context, record ordermodels.OrderRecord) (ordermodels.OrderRecord, error)
	Patch(ctx context.Context, id ordermodels.OrderID, fields bson.M) (ordermodels.OrderRecord, error)
	Delete(ctx context.Context, id ordermodels.OrderID) error
	FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.OrderRecord, error)
	DeleteByField(ctx context.Context, field string, value interface{}) (int64, error)
}

// ArchiveStore is the archived_orders table, keyed by the original order id.
type ArchiveStore interface {
	Get(ctx context.Context, orderID string) (ordermodels.ArchivedOrder, error)
	Insert(ctx context.Context, archived ordermodels.ArchivedOrder) (ordermodels.ArchivedOrder, error)
	Delete(ctx context.Context, orderID string) error
	// ListExpired returns every entry whose retentionDeadline <= now.
	ListExpired(ctx context.Context, now int64) ([]ordermodels.ArchivedOrder, error)
	FindByField(ctx context.Context, field string, value interface{}) ([]ordermodels.ArchivedOrder, error)
}

// TokenStore is the device_tokens push-recipient registry.
type TokenStore interface {
	ListByEmail(ctx context.Context, email string) ([]ordermodels.DeviceToken, error)
	Register(ctx context.Context, token ordermodels.DeviceToken) (ordermodels.DeviceToken, error)
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

// RecordStore bundles the four typed stores of one environment. Two
// environments (regular and virtual) are two constructed instances, not two
// sets of conditionals.
type RecordStore struct {
	Env      string
	Profiles ProfileStore
	Orders   OrderStore
	Archive  ArchiveStore
	Tokens   TokenStore
}
