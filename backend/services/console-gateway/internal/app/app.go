package app

import (
	"context"
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"bootstrapbugz/backend/libs/clients"
	libdb "bootstrapbugz/backend/libs/db"
	"bootstrapbugz/backend/services/console-gateway/internal/audit"
	"bootstrapbugz/backend/services/console-gateway/internal/config"
	httpserver "bootstrapbugz/backend/services/console-gateway/internal/http"
	"bootstrapbugz/backend/services/console-gateway/internal/http/handlers"
	"bootstrapbugz/backend/services/console-gateway/internal/http/middleware"
)

// App wires console gateway dependencies.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	logger *zap.Logger
}

// New constructs application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	httpClient := clients.NewDefaultHTTPClient(cfg.Upstream.Timeout)

	adminClient := clients.NewAdminService(cfg.Upstream.AdminURL, httpClient, logger.Named("admin-client"))
	authClient := clients.NewAuthService(cfg.Upstream.AuthURL, httpClient, logger.Named("auth-client"))

	var (
		recorder audit.Recorder = audit.NewLogRecorder(logger.Named("audit"))
		sqlDB    *sql.DB
	)
	if cfg.Audit.DSN != "" {
		db, err := libdb.NewPostgresDB(ctx, cfg.Audit.DSN)
		if err != nil {
			return nil, err
		}
		pgRecorder := audit.NewPostgresRecorder(db)
		if err := pgRecorder.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		recorder = pgRecorder
		sqlDB = db
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AdminHandlers: handlers.NewAdminHandlers(adminClient, recorder, logger),
		AuthHandlers:  handlers.NewAuthHandlers(authClient, logger),
		HealthHandler: handlers.NewHealthHandler(),
		Throttle:      middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Interval),
	})

	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger, serverMiddlewares(logger)...)

	logger.Info("console gateway configured",
		zap.String("admin_url", cfg.Upstream.AdminURL),
		zap.String("auth_url", cfg.Upstream.AuthURL),
		zap.Bool("audit_db", sqlDB != nil),
	)

	return &App{
		server: server,
		db:     sqlDB,
		logger: logger,
	}, nil
}

// serverMiddlewares runs outermost first. Recovery sits inside logging so a panic is
// still logged as a 500 with its request id.
func serverMiddlewares(logger *zap.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.LoggingMiddleware(logger),
		middleware.RecoveryMiddleware(logger),
	}
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close audit db", zap.Error(err))
		}
	}
}
