// Package basehdl holds the response helpers shared by every domain handler.
package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

// JSONResponse writes a JSON response with an explicit UTF-8 charset so
// accented client names render correctly everywhere.
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler wraps a handler body with recover so a panic still produces a
// response instead of a dropped connection.
func SafeHandler(c fiber.Ctx, fn func() error) error {
	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithField("panic", r).Error(string(debug.Stack()))
			HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Unexpected server error: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return fn()
}

// HandleResponse normalizes every handler outcome into the service-wide
// response envelope. Catalog errors keep their status and machine code;
// anything else becomes a 500.
func HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		var catalogErr *common.Error
		if errors.As(err, &catalogErr) {
			JSONResponse(c, catalogErr.StatusCode, fiber.Map{
				"code":    catalogErr.Code.Code,
				"message": catalogErr.Message,
				"details": catalogErr.Details,
				"status":  "error",
			})
			return
		}
		JSONResponse(c, common.StatusInternalServerError, fiber.Map{
			"code":    common.ErrCodeInternalServer.Code,
			"message": err.Error(),
			"status":  "error",
		})
		return
	}

	JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": "Success",
		"data":    data,
		"status":  "success",
	})
}
