package middleware

import (
	"fmt"
	"strings"

	"lead_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// Admin Auth
// =============================================================================

// AdminClaims are the claims carried by an admin token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth guards the maintenance endpoints with an HS256 bearer token.
// The token must carry role "admin". With an empty secret the middleware
// rejects everything, so a misconfigured deployment fails closed.
func AdminAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return apperr.Unauthorized("admin access not configured")
		}

		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return apperr.Unauthorized("missing authorization header")
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			return apperr.Unauthorized("invalid authorization header")
		}

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return apperr.Unauthorized("invalid token")
		}

		if claims.Role != "admin" {
			return apperr.Forbidden("admin role required")
		}

		c.Locals("admin_subject", claims.Subject)
		return c.Next()
	}
}
