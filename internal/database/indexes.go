package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

// Collection names shared by every environment.
const (
	ColClientProfiles = "client_profiles"
	ColOrderRecords   = "order_records"
	ColArchivedOrders = "archived_orders"
	ColDeviceTokens   = "device_tokens"
)

// EnsureIndexes creates the indexes the order core relies on. Safe to call on
// every start; Mongo treats an existing identical index as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	log := logger.GetAppLogger()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		ColClientProfiles: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_profile_email"),
			},
			{
				Keys:    bson.D{{Key: "externalId", Value: 1}},
				Options: options.Index().SetSparse(true).SetName("idx_profile_external_id"),
			},
		},
		ColOrderRecords: {
			{
				Keys:    bson.D{{Key: "clientEmail", Value: 1}, {Key: "orderToken", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_order_client_token"),
			},
			{
				Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
				Options: options.Index().SetSparse(true).SetName("idx_order_invoice"),
			},
		},
		ColArchivedOrders: {
			{
				Keys:    bson.D{{Key: "retentionDeadline", Value: 1}},
				Options: options.Index().SetName("idx_archive_retention"),
			},
		},
		ColDeviceTokens: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("idx_token_email"),
			},
			{
				Keys:    bson.D{{Key: "token", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_token_value"),
			},
		},
	}

	for col, models := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
		log.WithField("collection", col).Debug("Indexes ensured")
	}
	return nil
}
