// Package remove реализует HTTP-обработчик отмены подписки.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// Handler обрабатывает удаление подписки пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику отмены подписки.
type Service interface {
	Unsubscribe(ctx context.Context, userID string, subscriptionID int) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Удаляет подписку, если она принадлежит пользователю.
// @Tags Subscriptions
// @Produce  json
// @Param id path string true "UUID пользователя"
// @Param sub_id path int true "ID подписки"
// @Success 200 {object} response.Response "Подписка удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Пользователь или подписка не найдены"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/subscriptions/{sub_id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subID, err := strconv.Atoi(chi.URLParam(r, "sub_id"))
	if err != nil {
		log.Error("invalid subscription id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription id"))
		return
	}

	res, err := h.service.Unsubscribe(r.Context(), chi.URLParam(r, "id"), subID)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to delete subscription", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}
	if res == 0 {
		log.Info("subscription not found", sl.SubscriptionID(subID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	}

	log.Info("success to delete subscription", sl.SubscriptionID(subID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": res,
	}))
}
