package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const testUser = "92d90d3d-cb16-48cd-8796-87fb9a6da86f"

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) UpdateUser(ctx context.Context, userUID, username string, email *string) (int, error) {
	args := m.Called(ctx, userUID, username, email)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) DeleteUser(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func newServiceWithCache() (*UserService, *RepoMock, *CacheMock) {
	repo := new(RepoMock)
	c := new(CacheMock)
	return NewUserService(repo, c, slog.New(slog.NewTextHandler(io.Discard, nil))), repo, c
}

func newService() (*UserService, *RepoMock) {
	svc, repo, _ := newServiceWithCache()
	return svc, repo
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	req := models.DummyUser{Username: "Alice", Email: "alice@example.com"}

	t.Run("success", func(t *testing.T) {
		svc, repo := newService()
		repo.On("CreateUser", ctx, models.User{Username: "Alice", Email: "alice@example.com"}).Return(testUser, nil)

		id, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, testUser, id)
		repo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, repo := newService()
		repo.On("CreateUser", ctx, mock.Anything).Return("", models.ErrEmailTaken)

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, models.ErrEmailTaken)
		assert.NotErrorIs(t, err, models.ErrStorage)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo := newService()
		repo.On("CreateUser", ctx, mock.Anything).Return("", errors.New("boom"))

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, models.ErrStorage)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes id", func(t *testing.T) {
		svc, repo := newService()
		want := &models.User{UUID: testUser, Username: "Alice"}
		repo.On("GetUser", ctx, testUser).Return(want, nil)

		got, err := svc.Get(ctx, "92D90D3D-CB16-48CD-8796-87FB9A6DA86F")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, repo := newService()
		_, err := svc.Get(ctx, "nope")
		assert.ErrorIs(t, err, models.ErrInvalidID)
		repo.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo := newService()
		repo.On("GetUser", ctx, testUser).Return(nil, models.ErrUserNotFound)
		_, err := svc.Get(ctx, testUser)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	email := "new@example.com"
	req := models.DummyUserUpdate{Username: "Alice", Email: &email}

	t.Run("success", func(t *testing.T) {
		svc, repo := newService()
		repo.On("UpdateUser", ctx, testUser, "Alice", &email).Return(1, nil)

		n, err := svc.Update(ctx, testUser, req)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, repo := newService()
		repo.On("UpdateUser", ctx, testUser, "Alice", &email).Return(0, nil)

		_, err := svc.Update(ctx, testUser, req)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, repo := newService()
		repo.On("UpdateUser", ctx, testUser, "Alice", &email).Return(0, models.ErrEmailTaken)

		_, err := svc.Update(ctx, testUser, req)
		assert.ErrorIs(t, err, models.ErrEmailTaken)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("success invalidates top cache", func(t *testing.T) {
		svc, repo, c := newServiceWithCache()
		repo.On("DeleteUser", ctx, testUser).Return(1, nil)
		c.On("Invalidate", ctx, cache.TopSubscriptionsKeys()).Return(nil).Once()

		n, err := svc.Delete(ctx, testUser)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		c.AssertExpectations(t)
	})

	t.Run("cache failure does not fail delete", func(t *testing.T) {
		svc, repo, c := newServiceWithCache()
		repo.On("DeleteUser", ctx, testUser).Return(1, nil)
		c.On("Invalidate", ctx, mock.Anything).Return(errors.New("redis down"))

		n, err := svc.Delete(ctx, testUser)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, repo, c := newServiceWithCache()
		repo.On("DeleteUser", ctx, testUser).Return(0, nil)

		_, err := svc.Delete(ctx, testUser)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
		c.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("storage failure keeps cache", func(t *testing.T) {
		svc, repo, c := newServiceWithCache()
		repo.On("DeleteUser", ctx, testUser).Return(0, errors.New("boom"))

		_, err := svc.Delete(ctx, testUser)
		assert.ErrorIs(t, err, models.ErrStorage)
		c.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.Delete(ctx, "")
		assert.ErrorIs(t, err, models.ErrInvalidID)
	})
}
