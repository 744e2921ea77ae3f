// Package requestid carries per-request identifiers through context: the
// request ID for every request and, once a session is verified, the user ID.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

const (
	Header = "X-Request-ID"

	maxLen = 128
)

type (
	requestIDKey struct{}
	userIDKey    struct{}
)

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// Sanitize returns id if it is safe to echo into headers and logs, otherwise
// "". Only printable ASCII without spaces is accepted, up to 128 bytes.
func Sanitize(id string) string {
	if len(id) == 0 || len(id) > maxLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return ""
		}
	}
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
