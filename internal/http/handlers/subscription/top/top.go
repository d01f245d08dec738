// Package top реализует HTTP-обработчик рейтинга сервисов по числу подписок.
package top

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// MaxLimit ограничивает размер запрашиваемого рейтинга.
const MaxLimit = 100

// Handler обрабатывает запросы рейтинга сервисов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику построения рейтинга.
type Service interface {
	Top(ctx context.Context, n int) ([]models.TopSubscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Популярные сервисы
// @Description Возвращает сервисы с наибольшим числом подписок. При равенстве сервисы упорядочены по имени.
// @Tags Subscriptions
// @Produce  json
// @Param limit query int false "Размер рейтинга (по умолчанию 3)"
// @Success 200 {object} response.Response{data=[]models.TopSubscription} "Рейтинг сервисов"
// @Failure 400 {object} response.ErrorResponse "Некорректный limit"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/top [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.top"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxLimit {
			log.Info("invalid limit", slog.String("limit", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be an integer between 1 and 100"))
			return
		}
		limit = n
	}

	top, err := h.service.Top(r.Context(), limit)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to get top subscriptions", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	render.JSON(w, r, response.OKWithData(top))
}
