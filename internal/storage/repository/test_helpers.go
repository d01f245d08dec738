package repository

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
)

// NewTestDatabase поднимает PostgreSQL в контейнере, применяет миграции
// и возвращает готовое хранилище. Контейнер удаляется по завершении теста.
func NewTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, connStr)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB, migrationsPath(t)))
	return storage
}

func migrationsPath(t *testing.T) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с нулевым счётчиком и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, username, email string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (username, email) VALUES ($1, $2) RETURNING uid`,
		username, email).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateSubscription создает строку подписки и увеличивает счётчик владельца,
// сохраняя согласованность данных
func (f *TestDataFactory) CreateSubscription(t *testing.T, userUID, serviceName string, start, end time.Time) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions (user_uid, service_name, start_time, end_time)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		userUID, serviceName, start, end).Scan(&id)
	require.NoError(t, err)
	_, err = f.storage.DB.Exec(`UPDATE users SET subscription_amount = subscription_amount + 1 WHERE uid = $1`, userUID)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyCounterConsistent проверяет, что счётчик пользователя равен числу его подписок
func (v *TestVerification) VerifyCounterConsistent(t *testing.T, userUID string) int {
	var amount, rows int
	err := v.storage.DB.QueryRow(`
		SELECT u.subscription_amount, (SELECT COUNT(*) FROM subscriptions s WHERE s.user_uid = u.uid)
		FROM users u WHERE u.uid = $1`, userUID).Scan(&amount, &rows)
	require.NoError(t, err)
	require.Equal(t, rows, amount, "subscription_amount must equal the number of subscription rows")
	return amount
}

// CountSubscriptions возвращает число строк подписок пользователя на сервис
func (v *TestVerification) CountSubscriptions(t *testing.T, userUID, serviceName string) int {
	var count int
	err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM subscriptions WHERE user_uid = $1 AND service_name = $2`,
		userUID, serviceName).Scan(&count)
	require.NoError(t, err)
	return count
}

// VerifySubscriptionDeleted проверяет удаление подписки из БД
func (v *TestVerification) VerifySubscriptionDeleted(t *testing.T, subscriptionID int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE id = $1", subscriptionID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
