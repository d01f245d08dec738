package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const userColumns = `uid, username, email, registration_time, subscription_amount`

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	if err := ctxDone(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO users (username, email)
			  VALUES ($1, $2)
			  RETURNING uid`
	var newID string
	if err := s.DB.QueryRowContext(ctx, query, user.Username, user.Email).Scan(&newID); err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return "", fmt.Errorf("%s: %w", op, models.ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return scanUser(op, s.DB.QueryRowContext(ctx, query, userUID))
}

// LockUser читает пользователя внутри транзакции и блокирует его строку до её завершения.
// Так все изменения подписок одного пользователя выполняются строго по очереди.
func (s *Storage) LockUser(ctx context.Context, tx *sql.Tx, userUID string) (*models.User, error) {
	const op = "storage.LockUser"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1 FOR UPDATE`
	return scanUser(op, s.executor(tx).QueryRowContext(ctx, query, userUID))
}

// AdjustSubscriptionAmount изменяет счётчик подписок пользователя на delta.
// Изменение относительное, значение счётчика заранее не читается.
func (s *Storage) AdjustSubscriptionAmount(ctx context.Context, tx *sql.Tx, userUID string, delta int) error {
	const op = "storage.AdjustSubscriptionAmount"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET subscription_amount = subscription_amount + $2
			  WHERE uid = $1`
	res, err := s.executor(tx).ExecContext(ctx, query, userUID, delta)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}
	return nil
}

// UpdateUser меняет имя и, если передан, email пользователя.
// Возвращает количество изменённых строк.
func (s *Storage) UpdateUser(ctx context.Context, userUID, username string, email *string) (int, error) {
	const op = "storage.UpdateUser"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `UPDATE users
			  SET username = $2, email = COALESCE($3, email)
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID, username, email)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return 0, fmt.Errorf("%s: %w", op, models.ErrEmailTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// DeleteUser удаляет пользователя вместе с его подписками.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) (int, error) {
	const op = "storage.DeleteUser"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

func scanUser(op string, row *sql.Row) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UUID, &u.Username, &u.Email, &u.RegistrationTime, &u.SubscriptionAmount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return u, nil
}
