// Package services содержит справочник пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/uid"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateUser(ctx context.Context, userUID, username string, email *string) (int, error)
	DeleteUser(ctx context.Context, userUID string) (int, error)
}

// Cache сбрасывает закешированные рейтинги сервисов.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// UserService управляет профилями пользователей. Счётчик подписок здесь не меняется.
type UserService struct {
	repo  UserRepository
	cache Cache
	log   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, c Cache, log *slog.Logger) *UserService {
	return &UserService{repo: repo, cache: c, log: log}
}

// Create регистрирует пользователя и возвращает его UID.
func (s *UserService) Create(ctx context.Context, req models.DummyUser) (string, error) {
	const op = "services.CreateUser"

	id, err := s.repo.CreateUser(ctx, models.User{Username: req.Username, Email: req.Email})
	if err != nil {
		return "", classify(op, err)
	}

	s.log.Info("user created", slog.String("op", op), sl.UserUID(id))
	return id, nil
}

// Get возвращает пользователя по id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	const op = "services.GetUser"

	userUID, err := uid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, classify(op, err)
	}
	return u, nil
}

// Update меняет имя пользователя и, если передан, email.
// Если пользователя нет, возвращается models.ErrUserNotFound.
func (s *UserService) Update(ctx context.Context, userID string, req models.DummyUserUpdate) (int, error) {
	const op = "services.UpdateUser"

	userUID, err := uid.Parse(userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := s.repo.UpdateUser(ctx, userUID, req.Username, req.Email)
	if err != nil {
		return 0, classify(op, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}

	s.log.Info("user updated", slog.String("op", op), sl.UserUID(userUID))
	return n, nil
}

// Delete удаляет пользователя вместе с его подписками.
// Удалённые подписки меняют рейтинг, поэтому после удаления кеш рейтинга сбрасывается.
func (s *UserService) Delete(ctx context.Context, userID string) (int, error) {
	const op = "services.DeleteUser"

	userUID, err := uid.Parse(userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := s.repo.DeleteUser(ctx, userUID)
	if err != nil {
		return 0, classify(op, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}

	log := s.log.With(slog.String("op", op), sl.UserUID(userUID))
	if err := s.cache.Invalidate(ctx, cache.TopSubscriptionsKeys()...); err != nil {
		log.Warn("failed to invalidate top cache", sl.Err(err))
	}

	log.Info("user deleted")
	return n, nil
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrEmailTaken),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorage, err)
	}
}
