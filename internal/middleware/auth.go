package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// WorkspaceIDKey is the context key for the authenticated workspace ID
	WorkspaceIDKey contextKey = "workspace_id"
	// APITokenKey is the context key for the presented API token
	APITokenKey contextKey = "api_token"
)

// AuthMiddleware authenticates requests against the configured API tokens.
// Each token maps to exactly one workspace.
type AuthMiddleware struct {
	tokens map[string]int32
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens map[string]int32) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate returns an Echo middleware that validates bearer tokens and
// stores the resolved workspace in the request context.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			token := parts[1]
			workspaceID, ok := m.tokens[token]
			if !ok {
				log.Debug().Msg("Unknown API token")
				return unauthorizedError(c, "Invalid API token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, WorkspaceIDKey, workspaceID)
			ctx = context.WithValue(ctx, APITokenKey, token)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetWorkspaceID extracts the authenticated workspace ID from the context.
// Returns 0 when the request is unauthenticated.
func GetWorkspaceID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(WorkspaceIDKey).(int32); ok {
		return id
	}
	return 0
}

// GetAPIToken extracts the presented API token from the context
func GetAPIToken(c echo.Context) string {
	if token, ok := c.Request().Context().Value(APITokenKey).(string); ok {
		return token
	}
	return ""
}
