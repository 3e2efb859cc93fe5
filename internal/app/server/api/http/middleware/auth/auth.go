package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Auth checks the bearer token of a request against a bcrypt hash. With an
// empty hash every request passes.
type Auth struct {
	hash []byte
	log  *slog.Logger

	mu       sync.RWMutex
	verified string
}

func New(tokenHash string, log *slog.Logger) *Auth {
	a := &Auth{
		log: log.With("component", "auth_middleware"),
	}
	if tokenHash != "" {
		a.hash = []byte(tokenHash)
	} else {
		a.log.Warn("API token hash is empty, authentication disabled")
	}
	return a
}

type contextKey string

const AuthenticatedKey contextKey = "authenticated"

// HashToken returns the bcrypt hash to put into API_TOKEN_HASH.
func HashToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Middleware is the huma flavour used by the document operations.
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !a.allowed(ctx.Header("Authorization")) {
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/problem+json")
			if err := json.NewEncoder(ctx.BodyWriter()).Encode(unauthorized()); err != nil {
				a.log.Error("failed to encode response", "error", err)
			}
			return
		}
		next(huma.WithContext(ctx, context.WithValue(ctx.Context(), AuthenticatedKey, true)))
	}
}

// Proceed is the net/http flavour used by the websocket endpoint.
func (a *Auth) Proceed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.allowed(r.Header.Get("Authorization")) {
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(unauthorized()); err != nil {
				a.log.Error("failed to encode response", "error", err)
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), AuthenticatedKey, true)))
	})
}

func (a *Auth) allowed(header string) bool {
	if a.hash == nil {
		return true
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		a.log.Debug("missing bearer token")
		return false
	}

	// bcrypt is slow on purpose; remember the last token that matched.
	a.mu.RLock()
	hit := a.verified != "" && a.verified == token
	a.mu.RUnlock()
	if hit {
		return true
	}

	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(token)); err != nil {
		a.log.Debug("token rejected", "error", err)
		return false
	}

	a.mu.Lock()
	a.verified = token
	a.mu.Unlock()
	return true
}

func unauthorized() map[string]any {
	return map[string]any{
		"title":  "Unauthorized",
		"status": http.StatusUnauthorized,
		"detail": "missing or invalid API token",
	}
}

func IsAuthenticated(ctx context.Context) bool {
	ok, _ := ctx.Value(AuthenticatedKey).(bool)
	return ok
}
