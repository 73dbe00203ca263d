package ordermodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArchivedOrder is a retained snapshot of a soft-deleted order. It keeps the
// original order id, is never mutated after creation, and is destroyed by the
// purge once the retention deadline passes (or immediately by an explicit
// permanent delete).
type ArchivedOrder struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	// Original composite key, preserved, not regenerated.
	OrderID string `json:"orderId" bson:"orderId"`

	Order OrderRecord `json:"order" bson:"order"`

	// Owning client's address fields at time of deletion, when available.
	ClientSnapshot *Client `json:"clientSnapshot,omitempty" bson:"clientSnapshot,omitempty"`

	DeletedAt         int64  `json:"deletedAt" bson:"deletedAt"`                 // epoch millis
	RetentionDeadline int64  `json:"retentionDeadline" bson:"retentionDeadline"` // epoch millis, always > DeletedAt
	SourceEnv         string `json:"sourceEnv" bson:"sourceEnv"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
