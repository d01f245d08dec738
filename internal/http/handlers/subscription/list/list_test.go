package list

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID string) ([]*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "список подписок",
			id:   "92d90d3d-cb16-48cd-8796-87fb9a6da86f",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "92d90d3d-cb16-48cd-8796-87fb9a6da86f").Return([]*models.Subscription{
					{ID: 1, ServiceName: "Netflix"},
					{ID: 2, ServiceName: "HBO"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"service_name":"Netflix"`,
		},
		{
			name: "пустой список",
			id:   "92d90d3d-cb16-48cd-8796-87fb9a6da86f",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "92d90d3d-cb16-48cd-8796-87fb9a6da86f").Return([]*models.Subscription{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":[]}`,
		},
		{
			name: "некорректный id",
			id:   "abc",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "abc").Return(nil, fmt.Errorf("op: %w", models.ErrInvalidID))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid user id"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.id+"/subscriptions", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
