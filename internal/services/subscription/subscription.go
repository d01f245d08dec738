// Package services содержит управление жизненным циклом подписок
// и рейтинг сервисов по количеству подписчиков.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/uid"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const (
	// DefaultTopLimit используется, если размер рейтинга не задан.
	DefaultTopLimit = 3
	// MaxCachedTopLimit: рейтинги большего размера читаются из хранилища в обход кеша.
	MaxCachedTopLimit = cache.MaxCachedTopLimit
	// MaxDurationDays ограничивает длительность одной подписки (100 лет).
	MaxDurationDays = 36500
)

// SubscriptionRepository определяет операции хранилища, нужные для жизненного цикла подписки.
// Методы с параметром tx выполняются внутри транзакции, открытой WithTx.
type SubscriptionRepository interface {
	// WithTx выполняет fn в одной транзакции.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
	// LockUser блокирует строку пользователя до конца транзакции.
	LockUser(ctx context.Context, tx *sql.Tx, userUID string) (*models.User, error)
	// AdjustSubscriptionAmount изменяет счётчик подписок пользователя на delta.
	AdjustSubscriptionAmount(ctx context.Context, tx *sql.Tx, userUID string, delta int) error
	// FindByUserAndService возвращает подписку пользователя на сервис.
	FindByUserAndService(ctx context.Context, tx *sql.Tx, userUID, serviceName string) (*models.Subscription, error)
	// InsertSubscription добавляет строку подписки и возвращает её ID.
	InsertSubscription(ctx context.Context, tx *sql.Tx, sub models.Subscription) (int, error)
	// UpdateTimes переписывает период действия существующей подписки.
	UpdateTimes(ctx context.Context, tx *sql.Tx, userUID, serviceName string, start, end time.Time) (int, error)
	// DeleteByUserAndID удаляет подписку, только если она принадлежит пользователю.
	DeleteByUserAndID(ctx context.Context, tx *sql.Tx, userUID string, id int) (int, error)
	// ListByUser возвращает подписки пользователя в порядке создания.
	ListByUser(ctx context.Context, userUID string) ([]*models.Subscription, error)
	// CountGroupedByService возвращает limit сервисов с наибольшим числом подписок.
	CountGroupedByService(ctx context.Context, limit int) ([]models.TopSubscription, error)
}

// Cache описывает методы для кеширования рейтинга.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// EventPublisher отправляет события о зафиксированных изменениях подписок.
type EventPublisher interface {
	Publish(ctx context.Context, event models.SubscriptionEvent) error
}

// Recorder учитывает исходы операций.
type Recorder interface {
	ObserveOperation(operation, result string)
	ObserveTopCache(hit bool)
}

// SubscriptionService реализует оформление, продление и отмену подписок.
// Все изменения одного пользователя сериализуются блокировкой его строки.
type SubscriptionService struct {
	repo    SubscriptionRepository
	cache   Cache
	events  EventPublisher
	metrics Recorder
	log     *slog.Logger
	topTTL  time.Duration
	now     func() time.Time
}

// Option настраивает SubscriptionService.
type Option func(*SubscriptionService)

// WithEvents включает публикацию событий.
func WithEvents(p EventPublisher) Option {
	return func(s *SubscriptionService) { s.events = p }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *SubscriptionService) { s.now = now }
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, c Cache, rec Recorder, topTTL time.Duration,
	log *slog.Logger, opts ...Option) *SubscriptionService {
	s := &SubscriptionService{
		repo:    repo,
		cache:   c,
		metrics: rec,
		log:     log,
		topTTL:  topTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe оформляет подписку пользователя на сервис на durationDays дней.
// Если подписки нет, создаётся новая строка и счётчик пользователя увеличивается.
// Если подписка ещё действует, возвращается *models.ActiveSubscriptionError.
// Истёкшая подписка продлевается на месте, счётчик не меняется.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, serviceName string, durationDays int) (models.SubscribeResult, error) {
	const op = "services.Subscribe"

	userUID, err := uid.Parse(userID)
	if err != nil {
		return models.SubscribeResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if durationDays <= 0 || durationDays > MaxDurationDays {
		return models.SubscribeResult{}, fmt.Errorf("%s: %w: %d", op, models.ErrInvalidDuration, durationDays)
	}

	now := s.now().UTC()
	end := now.AddDate(0, 0, durationDays)
	if !end.After(now) {
		return models.SubscribeResult{}, fmt.Errorf("%s: %w: %d", op, models.ErrInvalidDuration, durationDays)
	}

	var result models.SubscribeResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		result = models.SubscribeResult{}

		if _, err := s.repo.LockUser(ctx, tx, userUID); err != nil {
			return err
		}

		existing, err := s.repo.FindByUserAndService(ctx, tx, userUID, serviceName)
		switch {
		case errors.Is(err, models.ErrSubscriptionNotFound):
			id, err := s.repo.InsertSubscription(ctx, tx, models.Subscription{
				UserUID:     userUID,
				ServiceName: serviceName,
				StartTime:   now,
				EndTime:     end,
			})
			if err != nil {
				return err
			}
			if err := s.repo.AdjustSubscriptionAmount(ctx, tx, userUID, 1); err != nil {
				return err
			}
			result = models.SubscribeResult{ID: id, RowsAffected: 1}
			return nil
		case err != nil:
			return err
		case existing.Active(now):
			return &models.ActiveSubscriptionError{ServiceName: serviceName, EndTime: existing.EndTime}
		}

		n, err := s.repo.UpdateTimes(ctx, tx, userUID, serviceName, now, end)
		if err != nil {
			return err
		}
		result = models.SubscribeResult{ID: existing.ID, RowsAffected: n, Renewed: true}
		return nil
	})
	if err != nil {
		s.observeFailure("subscribe", err)
		return models.SubscribeResult{}, classify(op, err)
	}

	log := s.log.With(slog.String("op", op), sl.UserUID(userUID), sl.SubscriptionID(result.ID), sl.Service(serviceName))
	event := models.SubscriptionEvent{
		UserUID:        userUID,
		SubscriptionID: result.ID,
		ServiceName:    serviceName,
		EndTime:        &end,
		OccurredAt:     now,
	}
	if result.Renewed {
		log.Info("subscription renewed")
		s.metrics.ObserveOperation("subscribe", metrics.ResultRenewed)
		event.Type = models.EventSubscriptionRenewed
	} else {
		log.Info("subscription created")
		s.metrics.ObserveOperation("subscribe", metrics.ResultCreated)
		s.invalidateTop(ctx, log)
		event.Type = models.EventSubscriptionCreated
	}
	s.publish(ctx, log, event)

	return result, nil
}

// List возвращает подписки пользователя в порядке создания.
// Существование пользователя не проверяется: для неизвестного id список пуст.
func (s *SubscriptionService) List(ctx context.Context, userID string) ([]*models.Subscription, error) {
	const op = "services.List"

	userUID, err := uid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subs, err := s.repo.ListByUser(ctx, userUID)
	if err != nil {
		return nil, classify(op, err)
	}
	return subs, nil
}

// Unsubscribe удаляет подписку пользователя и возвращает число удалённых строк.
// Счётчик уменьшается только если строка действительно была удалена.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID string, subscriptionID int) (int, error) {
	const op = "services.Unsubscribe"

	userUID, err := uid.Parse(userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var deleted int
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		deleted = 0

		if _, err := s.repo.LockUser(ctx, tx, userUID); err != nil {
			return err
		}
		n, err := s.repo.DeleteByUserAndID(ctx, tx, userUID, subscriptionID)
		if err != nil {
			return err
		}
		if n == 1 {
			if err := s.repo.AdjustSubscriptionAmount(ctx, tx, userUID, -1); err != nil {
				return err
			}
		}
		deleted = n
		return nil
	})
	if err != nil {
		s.observeFailure("unsubscribe", err)
		return 0, classify(op, err)
	}

	if deleted == 0 {
		s.metrics.ObserveOperation("unsubscribe", metrics.ResultNotFound)
		return 0, nil
	}

	log := s.log.With(slog.String("op", op), sl.UserUID(userUID), sl.SubscriptionID(subscriptionID))
	log.Info("subscription removed")
	s.metrics.ObserveOperation("unsubscribe", metrics.ResultRemoved)
	s.invalidateTop(ctx, log)
	s.publish(ctx, log, models.SubscriptionEvent{
		Type:           models.EventSubscriptionRemoved,
		UserUID:        userUID,
		SubscriptionID: subscriptionID,
		OccurredAt:     s.now().UTC(),
	})

	return deleted, nil
}

// Top возвращает n сервисов с наибольшим числом подписок.
// При равенстве счётчиков сервисы упорядочены по имени. n <= 0 означает DefaultTopLimit.
func (s *SubscriptionService) Top(ctx context.Context, n int) ([]models.TopSubscription, error) {
	const op = "services.Top"

	if n <= 0 {
		n = DefaultTopLimit
	}
	log := s.log.With(slog.String("op", op), slog.Int("limit", n))

	cacheable := n <= MaxCachedTopLimit
	key := cache.TopSubscriptionsKey(n)
	if cacheable {
		var cached []models.TopSubscription
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read top from cache", sl.Err(err))
		}
		s.metrics.ObserveTopCache(found)
		if found {
			return cached, nil
		}
	}

	top, err := s.repo.CountGroupedByService(ctx, n)
	if err != nil {
		return nil, classify(op, err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, top, s.topTTL); err != nil {
			log.Warn("failed to cache top", sl.Err(err))
		}
	}
	return top, nil
}

func (s *SubscriptionService) invalidateTop(ctx context.Context, log *slog.Logger) {
	if err := s.cache.Invalidate(ctx, cache.TopSubscriptionsKeys()...); err != nil {
		log.Warn("failed to invalidate top cache", sl.Err(err))
	}
}

func (s *SubscriptionService) publish(ctx context.Context, log *slog.Logger, event models.SubscriptionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn("failed to publish event", slog.String("type", event.Type), sl.Err(err))
	}
}

func (s *SubscriptionService) observeFailure(operation string, err error) {
	var active *models.ActiveSubscriptionError
	switch {
	case errors.As(err, &active):
		s.metrics.ObserveOperation(operation, metrics.ResultConflict)
	case errors.Is(err, models.ErrUserNotFound):
		s.metrics.ObserveOperation(operation, metrics.ResultNotFound)
	case errors.Is(err, models.ErrConcurrentUpdate):
		s.metrics.ObserveOperation(operation, metrics.ResultRetry)
	default:
		s.metrics.ObserveOperation(operation, metrics.ResultError)
	}
}

// classify оставляет бизнес-ошибки как есть, остальные помечает models.ErrStorage.
func classify(op string, err error) error {
	var active *models.ActiveSubscriptionError
	switch {
	case errors.As(err, &active),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrInvalidID),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorage, err)
	}
}
