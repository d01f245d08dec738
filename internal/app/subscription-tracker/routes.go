// Package subscriptiontracker собирает зависимости сервиса и регистрирует HTTP-маршруты.
package subscriptiontracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-описания.
	_ "github.com/magabrotheeeer/subscription-tracker/docs"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	subcreate "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	subremove "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/top"
	usercreate "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	userservice "github.com/magabrotheeeer/subscription-tracker/internal/services/user"
)

// Dependencies объединяет всё, что нужно маршрутам.
type Dependencies struct {
	Logger              *slog.Logger
	SubscriptionService *subservice.SubscriptionService
	UserService         *userservice.UserService
	Storage             health.Pinger
	Metrics             *metrics.Metrics
	Gatherer            prometheus.Gatherer
	RateLimit           config.RateLimit
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	logger := deps.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware(deps.Metrics),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, deps.RateLimit.RPS, deps.RateLimit.Burst))

		r.Post("/users", usercreate.New(logger, deps.UserService).ServeHTTP)
		r.Get("/users/{id}", read.New(logger, deps.UserService).ServeHTTP)
		r.Put("/users/{id}", update.New(logger, deps.UserService).ServeHTTP)
		r.Delete("/users/{id}", userremove.New(logger, deps.UserService).ServeHTTP)

		r.Post("/users/{id}/subscriptions", subcreate.New(logger, deps.SubscriptionService).ServeHTTP)
		r.Get("/users/{id}/subscriptions", list.New(logger, deps.SubscriptionService).ServeHTTP)
		r.Delete("/users/{id}/subscriptions/{sub_id}", subremove.New(logger, deps.SubscriptionService).ServeHTTP)
		r.Get("/subscriptions/top", top.New(logger, deps.SubscriptionService).ServeHTTP)
	})

	r.Get("/health", health.New(logger, deps.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
