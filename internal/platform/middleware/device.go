package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mssola/useragent"
)

type contextKeyDevice struct{}

// Device parses the User-Agent header into a short "browser/os" summary and
// stores it in the context. The summary ends up in audit events so reviewers
// can spot submissions coming from unexpected clients.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		summary := summarizeUserAgent(r.Header.Get("User-Agent"))
		ctx := context.WithValue(r.Context(), contextKeyDevice{}, summary)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDevice retrieves the device summary from the context.
func GetDevice(ctx context.Context) string {
	if device, ok := ctx.Value(contextKeyDevice{}).(string); ok {
		return device
	}
	return ""
}

// WithDevice injects a device summary into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, contextKeyDevice{}, device)
}

func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		return "bot"
	}
	name, version := ua.Browser()
	if name == "" {
		return ua.OS()
	}
	if os := ua.OS(); os != "" {
		return fmt.Sprintf("%s %s/%s", name, version, os)
	}
	return fmt.Sprintf("%s %s", name, version)
}
