package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHash(t *testing.T, token string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuth_Proceed(t *testing.T) {
	a := New(testHash(t, "s3cret"), discard())

	var reached bool
	h := a.Proceed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = IsAuthenticated(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid token", header: "Bearer s3cret", status: http.StatusNoContent},
		{name: "cached token", header: "Bearer s3cret", status: http.StatusNoContent},
		{name: "wrong token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "no scheme", header: "s3cret", status: http.StatusUnauthorized},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status == http.StatusNoContent, reached)
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	a := New("", discard())
	assert.True(t, a.allowed(""))
}

func TestHashToken(t *testing.T) {
	h, err := HashToken("abc")
	require.NoError(t, err)

	a := New(h, discard())
	assert.True(t, a.allowed("Bearer abc"))
	assert.False(t, a.allowed("Bearer abd"))
}
