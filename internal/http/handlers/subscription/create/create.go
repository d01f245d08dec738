// Package create реализует HTTP-обработчик оформления подписки пользователя на сервис.
//
// Handler принимает JSON с названием сервиса и длительностью в днях, вызывает
// сервис жизненного цикла подписок и возвращает ID новой или продлённой строки.
// Действующая подписка на тот же сервис приводит к ответу 409 с датой окончания.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler управляет HTTP-запросами на оформление подписок.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис жизненного цикла подписок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики оформления подписки.
type Service interface {
	Subscribe(ctx context.Context, userID, serviceName string, durationDays int) (models.SubscribeResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить подписку
// @Description Создает подписку пользователя на сервис или продлевает истёкшую. Действующая подписка не продлевается.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param id path string true "UUID пользователя"
// @Param request body models.DummySubscription true "Сервис и длительность подписки"
// @Success 200 {object} response.Response{data=models.SubscribeResult} "Подписка оформлена или продлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный id, JSON или длительность"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ConflictResponse "Подписка ещё действует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Параллельное изменение, запрос можно повторить"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "id")

	var req models.DummySubscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		var errs validator.ValidationErrors
		errors.As(err, &errs)
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(errs))
		return
	}

	res, err := h.service.Subscribe(r.Context(), userID, req.ServiceName, req.DurationDays)
	if err != nil {
		var active *models.ActiveSubscriptionError
		if errors.As(err, &active) {
			log.Info("subscription is still active", sl.Service(req.ServiceName))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Conflict(active))
			return
		}
		status, body := response.FromError(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to subscribe", sl.Err(err))
		} else {
			log.Info("subscribe rejected", sl.Err(err))
		}
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("subscription saved", sl.SubscriptionID(res.ID), slog.Bool("renewed", res.Renewed))
	render.JSON(w, r, response.OKWithData(res))
}
