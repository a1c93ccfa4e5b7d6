package testutil

import (
	"context"
	"net/http"

	"veridoc/internal/platform/middleware"
)

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithUserID(req *http.Request, userID string) *http.Request {
	return WithAuth(req, userID, "")
}

// WithAuth adds a user ID and role to the request context.
// This is the typical state for an authenticated request.
func WithAuth(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(middleware.WithAuth(req.Context(), userID, role))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
