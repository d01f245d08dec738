package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionColumns = `id, user_uid, service_name, start_time, end_time`

// FindByUserAndService возвращает подписку пользователя на сервис.
// Если строки нет, возвращается models.ErrSubscriptionNotFound.
func (s *Storage) FindByUserAndService(ctx context.Context, tx *sql.Tx, userUID, serviceName string) (*models.Subscription, error) {
	const op = "storage.FindByUserAndService"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1 AND service_name = $2`
	var sub models.Subscription
	err := s.executor(tx).QueryRowContext(ctx, query, userUID, serviceName).
		Scan(&sub.ID, &sub.UserUID, &sub.ServiceName, &sub.StartTime, &sub.EndTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return &sub, nil
}

// InsertSubscription вставляет новую строку подписки и возвращает её ID.
// Вторая строка для той же пары (пользователь, сервис) отклоняется ограничением
// уникальности и возвращается как models.ErrConcurrentUpdate.
func (s *Storage) InsertSubscription(ctx context.Context, tx *sql.Tx, sub models.Subscription) (int, error) {
	const op = "storage.InsertSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO subscriptions (user_uid, service_name, start_time, end_time)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.executor(tx).QueryRowContext(ctx, query,
		sub.UserUID, sub.ServiceName, sub.StartTime, sub.EndTime).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(err))
	}
	return newID, nil
}

// UpdateTimes переписывает период действия подписки пользователя на сервис.
// Возвращает количество изменённых строк.
func (s *Storage) UpdateTimes(ctx context.Context, tx *sql.Tx, userUID, serviceName string, start, end time.Time) (int, error) {
	const op = "storage.UpdateTimes"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `UPDATE subscriptions
			  SET start_time = $3, end_time = $4
			  WHERE user_uid = $1 AND service_name = $2`
	res, err := s.executor(tx).ExecContext(ctx, query, userUID, serviceName, start, end)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// DeleteByUserAndID удаляет подписку id, только если она принадлежит пользователю.
// Возвращает количество удалённых строк (0 или 1).
func (s *Storage) DeleteByUserAndID(ctx context.Context, tx *sql.Tx, userUID string, id int) (int, error) {
	const op = "storage.DeleteByUserAndID"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `DELETE FROM subscriptions WHERE id = $1 AND user_uid = $2`
	res, err := s.executor(tx).ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// ListByUser возвращает все подписки пользователя в порядке добавления.
func (s *Storage) ListByUser(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListByUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Subscription, 0)
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ServiceName, &item.StartTime, &item.EndTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountGroupedByService возвращает limit самых популярных сервисов.
// При равном количестве подписок сервисы упорядочены по названию.
func (s *Storage) CountGroupedByService(ctx context.Context, limit int) ([]models.TopSubscription, error) {
	const op = "storage.CountGroupedByService"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT service_name, COUNT(*) AS subscribers
			  FROM subscriptions
			  GROUP BY service_name
			  ORDER BY subscribers DESC, service_name ASC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.TopSubscription, 0, limit)
	for rows.Next() {
		var item models.TopSubscription
		if err := rows.Scan(&item.ServiceName, &item.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
