// Routes served by cmd/server:
//
//	GET   /api/v1/health                                      (public)
//	GET   /api/v1/connectivity                                websocket heartbeats (auth)
//	PUT   /api/v1/documents/{collection}/{id}                 create or replace (auth)
//	GET   /api/v1/documents/{collection}/{id}                 read (auth)
//	PATCH /api/v1/documents/{collection}/{id}                 merge fields (auth)
//	POST  /api/v1/documents/{collection}/{id}/arrays/{field}  append by element id (auth)
package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	connectivityAPI "helpdesk/internal/app/server/api/http/connectivity"
	documentAPI "helpdesk/internal/app/server/api/http/document"
	healthAPI "helpdesk/internal/app/server/api/http/health"
	"helpdesk/internal/app/server/api/http/middleware"
	"helpdesk/internal/app/server/api/http/middleware/auth"
	"helpdesk/internal/app/server/api/http/middleware/logger"
	"helpdesk/internal/domain/document"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Documents         document.Repository
	DB                healthAPI.Backend
	APITokenHash      string
	HeartbeatInterval time.Duration
}

type Handlers struct {
	Health       *healthAPI.Handler
	Document     *documentAPI.Handler
	Connectivity *connectivityAPI.Handler
}

// New builds the router with every operation registered.
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Helpdesk API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	authMW := auth.New(deps.APITokenHash, log)
	loggerMW := logger.New(log)

	h := handlers(deps, authMW, loggerMW, log)
	h.Health.SetupRoutes(API)
	h.Document.SetupRoutes(API)

	mux.With(loggerMW.Proceed, authMW.Proceed).Handle(connectivityAPI.Path, h.Connectivity)

	return mux
}

func handlers(deps Deps, authMW *auth.Auth, loggerMW *logger.Logger, log *slog.Logger) *Handlers {
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(deps.DB, log, middlewares.GetAllAndClear())

	documentService := document.NewService(deps.Documents, document.MustValidator(), log)
	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	documentHandler := documentAPI.NewHandler(documentService, log, middlewares.GetAllAndClear())

	interval := deps.HeartbeatInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &Handlers{
		Health:       healthHandler,
		Document:     documentHandler,
		Connectivity: connectivityAPI.NewHandler(interval, log),
	}
}
