package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/davena/flowcast/flowcast-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// setupWorkspaceContext simulates an authenticated request for the given
// workspace, the way the auth middleware would.
func setupWorkspaceContext(c echo.Context, workspaceID int32) {
	ctx := c.Request().Context()
	ctx = context.WithValue(ctx, middleware.WorkspaceIDKey, workspaceID)
	ctx = context.WithValue(ctx, middleware.APITokenKey, "test-token")
	c.SetRequest(c.Request().WithContext(ctx))
}

// newJSONRequest builds an authenticated echo context with a JSON body.
func newJSONRequest(e *echo.Echo, method, target, body string, workspaceID int32) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if workspaceID != 0 {
		setupWorkspaceContext(c, workspaceID)
	}
	return c, rec
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Failed to parse date %q: %v", value, err)
	}
	return d
}
