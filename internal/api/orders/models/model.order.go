package ordermodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is one line item of an order.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"qty" bson:"qty"`
	UnitPrice float64 `json:"unitPrice" bson:"unitPrice"`
	Variant   string  `json:"variant,omitempty" bson:"variant,omitempty"`
	Brand     string  `json:"brand,omitempty" bson:"brand,omitempty"`
}

// Tracking holds shipment tracking fields.
type Tracking struct {
	Number  string `json:"number,omitempty" bson:"number,omitempty"`
	Courier string `json:"courier,omitempty" bson:"courier,omitempty"`
}

// AdminMessage is one append-only admin note on an order. Entries are never
// edited; mark-read flips IsRead on all entries of one document at once.
type AdminMessage struct {
	Message     string   `json:"message" bson:"message"`
	At          int64    `json:"at" bson:"at"` // epoch millis
	IsRead      bool     `json:"isRead" bson:"isRead"`
	Attachments []string `json:"attachments" bson:"attachments"`
}

// OrderRecord is the canonical per-order document, keyed by
// (clientEmail, orderToken). Once a profile is migrated this record is the
// source of truth; until then the profile's embedded copy is a best-effort
// cache kept in sync by the dual-write coordinator.
type OrderRecord struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	ClientEmail   string `json:"clientEmail" bson:"clientEmail"`
	OrderToken    string `json:"orderToken" bson:"orderToken"`
	InvoiceNumber string `json:"invoiceNumber,omitempty" bson:"invoiceNumber,omitempty"`

	Items        []OrderItem `json:"items" bson:"items"`
	Subtotal     float64     `json:"subtotal" bson:"subtotal"`
	ShippingCost float64     `json:"shippingCost" bson:"shippingCost"`
	Total        float64     `json:"total" bson:"total"`

	Status        OrderStatus   `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`

	OrderedAt   int64 `json:"orderedAt" bson:"orderedAt"`     // epoch millis
	LastUpdated int64 `json:"lastUpdated" bson:"lastUpdated"` // epoch millis, monotonically non-decreasing

	DocumentURL   string         `json:"documentUrl,omitempty" bson:"documentUrl,omitempty"`
	Tracking      Tracking       `json:"tracking" bson:"tracking"`
	AdminMessages []AdminMessage `json:"adminMessages" bson:"adminMessages"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// OrderID returns the structured composite key of the record.
func (o OrderRecord) OrderID() OrderID {
	return OrderID{ClientEmail: o.ClientEmail, OrderToken: o.OrderToken}
}
