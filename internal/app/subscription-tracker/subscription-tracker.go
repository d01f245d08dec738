package subscriptiontracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/grpc/server"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/rabbitmq"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	userservice "github.com/magabrotheeeer/subscription-tracker/internal/services/user"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

const (
	healthCheckInterval = 10 * time.Second
	shutdownTimeout     = 15 * time.Second
)

// App владеет HTTP- и gRPC-серверами и внешними подключениями.
type App struct {
	server       *http.Server
	healthServer *server.HealthServer
	grpcListener net.Listener
	logger       *slog.Logger
	db           *repository.Storage
	cache        *cache.Cache
	closers      []func() error
}

// New подключается к хранилищам, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var opts []subservice.Option
	if cfg.RabbitMQ.URL != "" {
		publisher, err := app.connectRabbitMQ(ctx, cfg.RabbitMQ)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, subservice.WithEvents(publisher))
	} else {
		logger.Info("rabbitmq url is empty, subscription events are disabled")
	}

	subscriptionService := subservice.NewSubscriptionService(db, app.cache, m, cfg.Cache.TopTTL, logger, opts...)
	userService := userservice.NewUserService(db, app.cache, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, Dependencies{
		Logger:              logger,
		SubscriptionService: subscriptionService,
		UserService:         userService,
		Storage:             db,
		Metrics:             m,
		Gatherer:            reg,
		RateLimit:           cfg.RateLimit,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	app.grpcListener, err = net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.healthServer = server.NewHealthServer(db, healthCheckInterval, logger)

	return app, nil
}

func (a *App) connectRabbitMQ(ctx context.Context, cfg config.RabbitMQ) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch, cfg.Exchange)
	// Канал закрывается раньше соединения.
	a.closers = append([]func() error{publisher.Close}, a.closers...)

	a.logger.Info("publishing subscription events", slog.String("exchange", cfg.Exchange))
	return publisher, nil
}

// Run обслуживает HTTP и gRPC до отмены ctx или ошибки одного из серверов.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	grpcCtx, stopGRPC := context.WithCancel(ctx)
	defer stopGRPC()

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()
	go func() {
		errCh <- a.healthServer.Serve(grpcCtx, a.grpcListener)
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down servers gracefully")
	stopGRPC()
	if err := a.server.Shutdown(timeoutCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("failed to close rabbitmq", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
