package app

import (
	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/cache"
	"github.com/ghuser/stockhub/pkg/config"
	"github.com/ghuser/stockhub/pkg/database"
	"github.com/ghuser/stockhub/pkg/events"
	"github.com/ghuser/stockhub/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service Routes calls during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "processing item", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus   // nil when the outbox is unavailable
	Redis    *cache.RedisClient // nil when identity caching is disabled
	Verifier auth.Verifier      // nil in the worker process
}

// IsProduction reports whether error details must be hidden from clients.
func (a *Application) IsProduction() bool {
	return a.Config != nil && a.Config.Environment == config.EnvProduction
}
