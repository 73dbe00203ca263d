// Package middleware holds the request guards in front of the admin surface.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	basehdl "github.com/orimhanre/distrinaranjos-sub004/internal/api/base/handler"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
)

// AdminClaims is the token payload issued to back-office users.
type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAdmin validates the Bearer token with the shared secret and stores
// the claims on the request for audit logging.
func RequireAdmin(secret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
			return nil
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, common.ErrTokenInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			basehdl.HandleResponse(c, nil, common.ErrTokenInvalid)
			return nil
		}

		c.Locals("adminEmail", claims.Email)
		c.Locals("adminRole", claims.Role)
		return c.Next()
	}
}
