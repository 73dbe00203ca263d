// Package router assembles the whole HTTP surface under /api/v1.
package router

import (
	"github.com/gofiber/fiber/v3"

	basehdl "github.com/orimhanre/distrinaranjos-sub004/internal/api/base/handler"
	"github.com/orimhanre/distrinaranjos-sub004/internal/api/middleware"
	orderhdl "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/handler"
	orderrouter "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/router"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
)

// SetupRoutes mounts the health endpoint and the admin-guarded order surface.
func SetupRoutes(app *fiber.App, jwtSecret string, orders *orderhdl.OrderHandler) {
	app.Get("/health", func(c fiber.Ctx) error {
		return basehdl.JSONResponse(c, common.StatusOK, fiber.Map{
			"status": "ok",
		})
	})

	v1 := app.Group("/api/v1")
	v1.Use(middleware.RequireAdmin(jwtSecret))

	orderrouter.Register(v1, orders)
}
