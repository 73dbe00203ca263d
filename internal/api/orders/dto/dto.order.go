// Package orderdto defines the request shapes of the order HTTP surface.
package orderdto

import (
	"github.com/go-playground/validator/v10"

	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
)

var validate = validator.New()

// Validate runs struct-tag validation and maps failures onto the catalog.
func Validate(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationInput,
			"Request input failed validation",
			common.StatusBadRequest,
			err.Error(),
		)
	}
	return nil
}

// OrderUpdateInput is a partial order update. Omitted fields stay untouched.
type OrderUpdateInput struct {
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=new confirmed shipped delivered cancelled"`
	PaymentStatus   *string `json:"paymentStatus,omitempty" validate:"omitempty,oneof=pending paid failed"`
	PaymentMethod   *string `json:"paymentMethod,omitempty"`
	TrackingNumber  *string `json:"trackingNumber,omitempty"`
	TrackingCourier *string `json:"trackingCourier,omitempty"`
}

// AdminMessageInput appends one admin note to an order.
type AdminMessageInput struct {
	Message     string   `json:"message" validate:"required,min=1"`
	Attachments []string `json:"attachments,omitempty" validate:"omitempty,dive,url"`
	// Notify pushes the message to the client's registered devices.
	Notify bool `json:"notify,omitempty"`
}

// RegisterTokenInput registers one device token for push delivery.
type RegisterTokenInput struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,min=10"`
}

// IdentityDeleteInput removes every record of one client identity.
type IdentityDeleteInput struct {
	Email      string `json:"email" validate:"required,email"`
	ExternalID string `json:"externalId,omitempty"`
}

// MigrateProfileInput migrates one legacy profile by email.
type MigrateProfileInput struct {
	Email string `json:"email" validate:"required,email"`
}
