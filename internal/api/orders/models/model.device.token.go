package ordermodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeviceToken registers one push-notification recipient for a client. Invalid
// tokens reported by the dispatcher are pruned from this registry.
type DeviceToken struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Email string `json:"email" bson:"email"`
	Token string `json:"token" bson:"token"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
