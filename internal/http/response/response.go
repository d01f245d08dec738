// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// ConflictResponse возвращается, если подписка на сервис ещё действует.
type ConflictResponse struct {
	Status  string    `json:"status" example:"Error"`
	Error   string    `json:"error" example:"subscription is not ended yet, it ends at 2024-02-01T00:00:00Z"`
	EndTime time.Time `json:"end_time"`
}

const (
	// StatusOK содержит значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError содержит значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// Conflict формирует ответ о действующей подписке.
func Conflict(err *models.ActiveSubscriptionError) ConflictResponse {
	return ConflictResponse{
		Status:  StatusError,
		Error:   "subscription is not ended yet, it ends at " + err.EndTime.Format(time.RFC3339),
		EndTime: err.EndTime,
	}
}

// FromError сопоставляет ошибку бизнес-логики HTTP-статусу и сообщению для клиента.
// Внутренние подробности ошибок хранилища наружу не попадают.
func FromError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrInvalidID):
		return http.StatusBadRequest, Error("invalid user id")
	case errors.Is(err, models.ErrInvalidDuration):
		return http.StatusBadRequest, Error("subscription duration must be between 1 and 36500 days")
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, Error("user not found")
	case errors.Is(err, models.ErrEmailTaken):
		return http.StatusConflict, Error("email already taken")
	case errors.Is(err, models.ErrConcurrentUpdate):
		return http.StatusServiceUnavailable, Error("concurrent update, retry the request")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
