package create

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const userID = "92d90d3d-cb16-48cd-8796-87fb9a6da86f"

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Subscribe(ctx context.Context, id, serviceName string, durationDays int) (models.SubscribeResult, error) {
	args := m.Called(ctx, id, serviceName, durationDays)
	return args.Get(0).(models.SubscribeResult), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "новая подписка",
			body: `{"service_name":"Netflix","subscription_duration_days":30}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userID, "Netflix", 30).
					Return(models.SubscribeResult{ID: 1, RowsAffected: 1}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"data":{"id":1,"rows_affected":1,"renewed":false}`,
		},
		{
			name: "продление",
			body: `{"service_name":"Netflix","subscription_duration_days":30}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userID, "Netflix", 30).
					Return(models.SubscribeResult{ID: 4, RowsAffected: 1, Renewed: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"renewed":true`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"service_name":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "нет названия сервиса",
			body:           `{"subscription_duration_days":30}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field ServiceName is a required field`,
		},
		{
			name: "нулевая длительность",
			body: `{"service_name":"Netflix","subscription_duration_days":0}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userID, "Netflix", 0).
					Return(models.SubscribeResult{}, fmt.Errorf("op: %w", models.ErrInvalidDuration))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `subscription duration must be between 1 and 36500 days`,
		},
		{
			name: "пользователь не найден",
			body: `{"service_name":"Netflix","subscription_duration_days":30}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userID, "Netflix", 30).
					Return(models.SubscribeResult{}, fmt.Errorf("op: %w", models.ErrUserNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"user not found"}`,
		},
		{
			name: "подписка ещё действует",
			body: `{"service_name":"Netflix","subscription_duration_days":30}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userID, "Netflix", 30).
					Return(models.SubscribeResult{}, fmt.Errorf("op: %w",
						&models.ActiveSubscriptionError{ServiceName: "Netflix", EndTime: end}))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"subscription is not ended yet, it ends at 2024-02-01T00:00:00Z","end_time":"2024-02-01T00:00:00Z"`,
		},
		{
			name: "параллельное изменение",
			body: `{"service_name":"Netflix","subscription_duration_days":30}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userID, "Netflix", 30).
					Return(models.SubscribeResult{}, fmt.Errorf("op: %w: %w", models.ErrStorage, models.ErrConcurrentUpdate))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `retry the request`,
		},
		{
			name: "ошибка хранилища",
			body: `{"service_name":"Netflix","subscription_duration_days":30}`,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userID, "Netflix", 30).
					Return(models.SubscribeResult{}, fmt.Errorf("op: %w", models.ErrStorage))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/users/"+userID+"/subscriptions", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", userID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
