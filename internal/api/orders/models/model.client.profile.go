package ordermodels

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is the canonical client shape the field normalizer produces from a
// legacy bag of alias fields. It carries the address attributes snapshotted
// into archives and synthesized onto migrated records.
type Client struct {
	Name       string `json:"name" bson:"name"`
	Surname    string `json:"surname,omitempty" bson:"surname,omitempty"`
	Company    string `json:"company,omitempty" bson:"company,omitempty"`
	Phone      string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address    string `json:"address,omitempty" bson:"address,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	Department string `json:"department,omitempty" bson:"department,omitempty"`
	Email      string `json:"email" bson:"email"`
	ExternalID string `json:"externalId,omitempty" bson:"externalId,omitempty"`
}

// OrderSnapshot is a legacy order embedded in a client profile. Snapshots were
// written by several schema generations, so they stay loose maps until the
// migration path normalizes them into canonical OrderRecords.
type OrderSnapshot = bson.M

// ClientProfile is the per-client document, keyed by lowercased email.
// A profile is either legacy (non-empty Orders) or migrated (Orders
// empty/absent); the migration rewrites the document so the two never grow
// side by side.
type ClientProfile struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Email      string `json:"email" bson:"email"`
	Name       string `json:"name,omitempty" bson:"name,omitempty"`
	Surname    string `json:"surname,omitempty" bson:"surname,omitempty"`
	Company    string `json:"company,omitempty" bson:"company,omitempty"`
	Phone      string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address    string `json:"address,omitempty" bson:"address,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	Department string `json:"department,omitempty" bson:"department,omitempty"`
	ExternalID string `json:"externalId,omitempty" bson:"externalId,omitempty"`

	Active      bool  `json:"active" bson:"active"`
	FirstLogin  int64 `json:"firstLogin,omitempty" bson:"firstLogin,omitempty"`   // epoch millis
	LastLoginAt int64 `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"` // epoch millis

	// Legacy embedded order list. Present only on profiles not yet migrated.
	Orders []OrderSnapshot `json:"orders,omitempty" bson:"orders,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// IsLegacy reports whether the profile still carries embedded orders.
func (p ClientProfile) IsLegacy() bool {
	return len(p.Orders) > 0
}

// Client projects the profile onto the canonical client shape.
func (p ClientProfile) Client() Client {
	return Client{
		Name:       p.Name,
		Surname:    p.Surname,
		Company:    p.Company,
		Phone:      p.Phone,
		Address:    p.Address,
		City:       p.City,
		Department: p.Department,
		Email:      p.Email,
		ExternalID: p.ExternalID,
	}
}
