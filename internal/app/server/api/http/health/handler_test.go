package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type backend struct {
	name string
	err  error
}

func (b backend) Ping(context.Context) error { return b.err }
func (b backend) Name() string               { return b.name }

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name           string
		db              Backend
		expectedStatus  string
		expectedStorage string
		wantErr         bool
	}{
		{
			name:           "no storage configured",
			expectedStatus: "OK",
		},
		{
			name:            "postgres answers",
			db:              backend{name: "postgres"},
			expectedStatus:  "OK",
			expectedStorage: "postgres",
		},
		{
			name:    "postgres down",
			db:      backend{name: "postgres", err: errors.New("connection refused")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := NewHandler(tt.db, slog.Default(), huma.Middlewares{})

			// Act
			output, err := handler.healthCheck(context.Background(), &Input{})

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, output.Body.Status)
			assert.Equal(t, tt.expectedStorage, output.Body.Storage)
		})
	}
}

func TestHandler_Route(t *testing.T) {
	_, api := humatest.New(t)
	NewHandler(backend{name: "memory"}, slog.Default(), nil).SetupRoutes(api)

	resp := api.Get("/api/v1/health")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"OK"`)
	assert.Contains(t, resp.Body.String(), `"storage":"memory"`)
}

func TestNewHandler(t *testing.T) {
	handler := NewHandler(nil, slog.Default(), huma.Middlewares{})

	assert.NotNil(t, handler)
	assert.NotNil(t, handler.log)
	assert.NotNil(t, handler.middleware)
}
