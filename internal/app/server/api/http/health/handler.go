package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Backend is the document storage the health check reports on.
type Backend interface {
	Ping(ctx context.Context) error
	Name() string
}

type Handler struct {
	db         Backend
	log        *slog.Logger
	middleware huma.Middlewares
}

// NewHandler builds the health handler. db may be nil.
func NewHandler(db Backend, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		db:         db,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	resp := Response{Status: "OK"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.log.Error("storage unreachable", "storage", h.db.Name(), "error", err)
			return nil, huma.Error503ServiceUnavailable(h.db.Name() + " storage unreachable")
		}
		resp.Storage = h.db.Name()
	}

	return &Output{Body: resp}, nil
}
