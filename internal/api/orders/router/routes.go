// Package router registers the order-domain routes.
package router

import (
	"github.com/gofiber/fiber/v3"

	orderhdl "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/handler"
)

// Register mounts the order routes on v1. The admin middleware is applied by
// the caller on the group; routes here assume it already ran.
//
// Middleware must be attached with .Use() on the group, never inline in the
// route call: Fiber v3 silently skips inline middleware handlers.
func Register(v1 fiber.Router, h *orderhdl.OrderHandler) {
	orders := v1.Group("/orders")
	orders.Get("/:identifier", h.HandleGetOrder)
	orders.Patch("/:identifier", h.HandleUpdateOrder)
	orders.Delete("/:identifier", h.HandleSoftDelete)
	orders.Post("/:identifier/messages", h.HandleAppendMessage)
	orders.Post("/:identifier/messages/read", h.HandleMarkMessagesRead)
	orders.Post("/:identifier/document", h.HandleGenerateDocument)

	v1.Get("/clients/:email/orders", h.HandleListClientOrders)

	archive := v1.Group("/archive")
	archive.Delete("/:identifier", h.HandlePermanentDelete)
	archive.Post("/purge", h.HandlePurge)

	migrations := v1.Group("/migrations")
	migrations.Post("/profile", h.HandleMigrateProfile)
	migrations.Post("/run", h.HandleMigrateAll)

	v1.Post("/identities/delete", h.HandleIdentityDelete)
	v1.Post("/devices", h.HandleRegisterDevice)
}
