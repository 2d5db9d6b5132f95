// Package app assembles the taskpilot service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/taskpilot/taskpilot/internal/api"
	"github.com/taskpilot/taskpilot/internal/api/handler"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/internal/core/security"
	"github.com/taskpilot/taskpilot/internal/core/service"
	"github.com/taskpilot/taskpilot/internal/infrastructure/config"
	"github.com/taskpilot/taskpilot/internal/infrastructure/db/mongo"
	"github.com/taskpilot/taskpilot/internal/infrastructure/db/redis"
	"github.com/taskpilot/taskpilot/internal/infrastructure/db/sqlstore"
	"github.com/taskpilot/taskpilot/internal/infrastructure/metrics"
	"github.com/taskpilot/taskpilot/internal/infrastructure/notify"
	"github.com/taskpilot/taskpilot/internal/infrastructure/queue"
)

// App owns every long-lived resource of the service.
type App struct {
	Echo *echo.Echo

	cfg        *config.Config
	log        zerolog.Logger
	db         *sqlx.DB
	mongo      *mongo.Store
	redis      *goredis.Client
	dispatcher *queue.Dispatcher
}

// New connects to the configured stores and wires the HTTP router. Mongo,
// Redis and the automation webhook are optional.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	a.db, err = sqlstore.Connect(ctx, sqlstore.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err = sqlstore.ApplySchema(ctx, a.db); err != nil {
			return nil, err
		}
	}

	tokens, err := security.NewTokenService(security.TokenConfig{
		Secret:    cfg.Auth.Secret,
		Algorithm: cfg.Auth.Algorithm,
		TTL:       cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	checks := map[string]handler.Check{"database": a.db.PingContext}

	var audit ports.AutomationLogRepository
	if cfg.Mongo.URI != "" {
		a.mongo, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		audit = mongo.NewAutomationLogRepository(a.mongo.Database())
		checks["mongodb"] = a.mongo.Ping
	}

	var dedup ports.DedupStore
	if cfg.Redis.Addr != "" {
		a.redis, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		dedup = redis.NewDedupStore(a.redis)
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}

	var notifier ports.CompletionNotifier
	if cfg.Automation.WebhookURL != "" {
		a.dispatcher = queue.NewDispatcher(
			notify.NewClient(cfg.Automation.WebhookURL, cfg.Automation.Timeout),
			dedup,
			audit,
			queue.Options{
				Workers:     cfg.Automation.Workers,
				Buffer:      cfg.Automation.Buffer,
				Timeout:     cfg.Automation.Timeout,
				DedupWindow: cfg.Automation.DedupWindow,
			},
			log,
		)
		notifier = a.dispatcher
	} else {
		log.Warn().Msg("N8N_WEBHOOK_URL not set, task-completed notifications are disabled")
	}

	users := sqlstore.NewUserRepository(a.db)
	projects := sqlstore.NewProjectRepository(a.db)
	tasks := sqlstore.NewTaskRepository(a.db)
	forecasts := sqlstore.NewForecastRepository(a.db)
	tx := sqlstore.NewTxManager(a.db, log)

	serviceMetrics := metrics.ServiceRecorder{}
	guard := service.NewAccessGuard(tokens, service.NewIdentityResolver(users), sqlstore.NewOwnerResolver(a.db), serviceMetrics, log)

	a.Echo = api.NewRouter(api.Services{
		Guard:       guard,
		Auth:        service.NewAuthService(users, tx, security.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, cfg.Auth.TokenTTL, log),
		Projects:    service.NewProjectService(projects, guard, tx, log),
		Tasks:       service.NewTaskService(tasks, guard, tx, notifier, serviceMetrics, log),
		Forecasts:   service.NewForecastService(forecasts),
		Simulations: service.NewSimulationService(sqlstore.NewSimulationRepository(a.db)),
		Admin:       service.NewAdminService(users, projects, tasks, tx, log),
		Automation:  service.NewAutomationFeedService(projects, tasks, forecasts, sqlstore.NewContactRepository(a.db)),
	}, api.Options{
		Logger:        log,
		HealthChecks:  checks,
		AuthRateLimit: rate.Limit(cfg.RateLimit.AuthPerSecond),
		AuthBurst:     cfg.RateLimit.AuthBurst,
		// the API description is not published in production
		DisableSwagger: cfg.IsProduction(),
	})
	a.Echo.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	a.Echo.Server.WriteTimeout = cfg.HTTP.WriteTimeout

	return a, nil
}

// StartWorkers launches the notification workers. They stop with ctx.
func (a *App) StartWorkers(ctx context.Context) {
	if a.dispatcher != nil {
		a.dispatcher.Start(ctx)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	a.StartWorkers(workersCtx)
	defer func() {
		stopWorkers()
		if a.dispatcher != nil {
			a.dispatcher.Wait()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.HTTP.Port).Msg("http server listening")
		if err := a.Echo.Start(":" + a.cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases the stores. It is safe on a partially built App.
func (a *App) Close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing redis")
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			a.log.Warn().Err(err).Msg("closing mongo")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing database")
		}
	}
}
