package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	jwtpkg "github.com/urbanwheels/urbanwheels/internal/pkg/jwt"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
	"github.com/urbanwheels/urbanwheels/internal/utils"
)

// JWTAuthMiddleware creates a middleware for JWT authentication on rider
// endpoints. On success the numeric user id and role are stored on the
// echo context under "user_id" and "user_role".
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.UnauthorizedResponse(c, "Authorization header is required")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return utils.UnauthorizedResponse(c, "Invalid authorization format")
			}

			claims, err := jwtpkg.ValidateToken(parts[1], config.Secret)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			userID, err := jwtpkg.UserIDFromClaims(claims)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token: "+err.Error())
			}

			role, ok := claims["role"]
			if !ok {
				return utils.UnauthorizedResponse(c, "Invalid token: missing role claim")
			}

			c.Set("user_id", userID)
			c.Set("user_role", role)

			return next(c)
		}
	}
}

// UserIDFromEchoContext returns the authenticated user id set by the JWT
// middleware, or 0 when the request is unauthenticated.
func UserIDFromEchoContext(c echo.Context) int64 {
	if v, ok := c.Get("user_id").(int64); ok {
		return v
	}
	return 0
}
