package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// =============================================================================
// Identity Middleware
// =============================================================================

// The service runs behind an authenticating gateway that validates the
// session and forwards the caller's identity in the X-User-ID header. This
// middleware parses the header and puts the user ID on the request context;
// requests without a valid UUID are rejected.

// UserIDHeader is the trusted header set by the upstream gateway.
const UserIDHeader = "X-User-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDContextKey contextKey = "user_id"

// GetUserID retrieves the authenticated user ID from the request context.
// Returns uuid.Nil and false when the request did not pass through
// RequireIdentity.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok
}

// IdentityMiddleware extracts the gateway-provided user identity.
type IdentityMiddleware struct {
	logger *slog.Logger
}

// NewIdentityMiddleware creates a new identity middleware.
func NewIdentityMiddleware(logger *slog.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{logger: logger}
}

// RequireIdentity returns middleware that rejects requests without a valid
// X-User-ID header and stores the parsed ID on the context.
func (m *IdentityMiddleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			m.reject(w, r, "missing identity header")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			m.reject(w, r, "invalid identity header")
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *IdentityMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	m.logger.Info("rejected unauthenticated request",
		"path", r.URL.Path,
		"method", r.Method,
		"reason", reason,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": "Authentication required.",
	})
}
