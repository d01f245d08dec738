package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	userservice "github.com/magabrotheeeer/subscription-tracker/internal/services/user"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

type integrationEnv struct {
	storage *repository.Storage
	factory *repository.TestDataFactory
	verify  *repository.TestVerification
	cache   *cache.Cache
	svc     *SubscriptionService
	now     time.Time
}

func setupIntegration(t *testing.T) *integrationEnv {
	storage := repository.NewTestDatabase(t)

	mr := miniredis.RunT(t)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	env := &integrationEnv{
		storage: storage,
		factory: repository.NewTestDataFactory(storage),
		verify:  repository.NewTestVerification(storage),
		cache:   c,
		now:     time.Now().UTC().Truncate(time.Microsecond),
	}
	env.svc = NewSubscriptionService(storage, c, metrics.New(prometheus.NewRegistry()), time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return env.now }))
	return env
}

func TestIntegration_SubscriptionLifecycle(t *testing.T) {
	env := setupIntegration(t)
	ctx := context.Background()

	t.Run("first subscription creates row and counter", func(t *testing.T) {
		u := env.factory.CreateUser(t, "Alice", "alice@example.com")

		res, err := env.svc.Subscribe(ctx, u, "Netflix", 30)
		require.NoError(t, err)
		assert.False(t, res.Renewed)

		subs, err := env.svc.List(ctx, u)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, res.ID, subs[0].ID)
		assert.True(t, subs[0].EndTime.Equal(subs[0].StartTime.UTC().AddDate(0, 0, 30)))
		assert.Equal(t, 1, env.verify.VerifyCounterConsistent(t, u))
	})

	t.Run("active subscription conflicts", func(t *testing.T) {
		u := env.factory.CreateUser(t, "Bob", "bob@example.com")
		end := env.now.AddDate(0, 0, 5)
		env.factory.CreateSubscription(t, u, "Netflix", env.now.AddDate(0, 0, -25), end)

		_, err := env.svc.Subscribe(ctx, u, "Netflix", 30)
		var active *models.ActiveSubscriptionError
		require.ErrorAs(t, err, &active)
		assert.True(t, active.EndTime.Equal(end))
		assert.Equal(t, 1, env.verify.CountSubscriptions(t, u, "Netflix"))
		assert.Equal(t, 1, env.verify.VerifyCounterConsistent(t, u))
	})

	t.Run("expired subscription is renewed in place", func(t *testing.T) {
		u := env.factory.CreateUser(t, "Carol", "carol@example.com")
		id := env.factory.CreateSubscription(t, u, "Netflix", env.now.AddDate(0, 0, -40), env.now.AddDate(0, 0, -10))

		res, err := env.svc.Subscribe(ctx, u, "Netflix", 30)
		require.NoError(t, err)
		assert.True(t, res.Renewed)
		assert.Equal(t, id, res.ID)

		subs, err := env.svc.List(ctx, u)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.True(t, subs[0].EndTime.Equal(env.now.AddDate(0, 0, 30)))
		assert.Equal(t, 1, env.verify.VerifyCounterConsistent(t, u))
	})

	t.Run("foreign subscription is not removed", func(t *testing.T) {
		owner := env.factory.CreateUser(t, "Dave", "dave@example.com")
		other := env.factory.CreateUser(t, "Eve", "eve@example.com")
		id := env.factory.CreateSubscription(t, owner, "HBO", env.now, env.now.AddDate(0, 0, 10))
		env.factory.CreateSubscription(t, other, "HBO", env.now, env.now.AddDate(0, 0, 10))

		n, err := env.svc.Unsubscribe(ctx, other, id)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 1, env.verify.VerifyCounterConsistent(t, other))
		assert.Equal(t, 1, env.verify.VerifyCounterConsistent(t, owner))

		n, err = env.svc.Unsubscribe(ctx, owner, id)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		env.verify.VerifySubscriptionDeleted(t, id)
		assert.Equal(t, 0, env.verify.VerifyCounterConsistent(t, owner))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.svc.Subscribe(ctx, "00000000-0000-0000-0000-000000000001", "Netflix", 30)
		assert.ErrorIs(t, err, models.ErrUserNotFound)

		_, err = env.svc.Unsubscribe(ctx, "00000000-0000-0000-0000-000000000001", 1)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestIntegration_TopTieOrder(t *testing.T) {
	env := setupIntegration(t)
	ctx := context.Background()

	counts := []struct {
		service string
		n       int
	}{
		{"Netflix", 5}, {"Spotify", 4}, {"HBO", 4}, {"Disney", 1},
	}
	users := make([]string, 5)
	for i := range users {
		users[i] = env.factory.CreateUser(t, "user", "user"+string(rune('a'+i))+"@example.com")
	}
	for _, c := range counts {
		for i := 0; i < c.n; i++ {
			_, err := env.svc.Subscribe(ctx, users[i], c.service, 30)
			require.NoError(t, err)
		}
	}

	top, err := env.svc.Top(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.TopSubscription{
		{ServiceName: "Netflix", Count: 5},
		{ServiceName: "HBO", Count: 4},
		{ServiceName: "Spotify", Count: 4},
	}, top)

	// Новая подписка сбрасывает закешированный рейтинг.
	for i := 0; i < 2; i++ {
		_, err := env.svc.Subscribe(ctx, env.factory.CreateUser(t, "late", "late"+string(rune('a'+i))+"@example.com"), "Disney", 30)
		require.NoError(t, err)
	}
	_, err = env.svc.Subscribe(ctx, users[4], "Spotify", 30)
	require.NoError(t, err)

	top, err = env.svc.Top(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.TopSubscription{
		{ServiceName: "Netflix", Count: 5},
		{ServiceName: "Spotify", Count: 5},
		{ServiceName: "HBO", Count: 4},
	}, top)
}

func TestIntegration_TopAfterUserDelete(t *testing.T) {
	env := setupIntegration(t)
	ctx := context.Background()
	users := userservice.NewUserService(env.storage, env.cache, slog.New(slog.NewTextHandler(io.Discard, nil)))

	alice := env.factory.CreateUser(t, "Alice", "alice@example.com")
	bob := env.factory.CreateUser(t, "Bob", "bob@example.com")
	for _, u := range []string{alice, bob} {
		_, err := env.svc.Subscribe(ctx, u, "Netflix", 30)
		require.NoError(t, err)
	}
	_, err := env.svc.Subscribe(ctx, alice, "Spotify", 30)
	require.NoError(t, err)

	top, err := env.svc.Top(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.TopSubscription{
		{ServiceName: "Netflix", Count: 2},
		{ServiceName: "Spotify", Count: 1},
	}, top)

	n, err := users.Delete(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	top, err = env.svc.Top(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.TopSubscription{
		{ServiceName: "Netflix", Count: 1},
	}, top)
}

func TestIntegration_ConcurrentSubscribe(t *testing.T) {
	env := setupIntegration(t)
	ctx := context.Background()
	u := env.factory.CreateUser(t, "Racer", "racer@example.com")

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Subscribe(ctx, u, "Netflix", 30)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	for _, err := range failures {
		var active *models.ActiveSubscriptionError
		assert.True(t, errors.As(err, &active) || errors.Is(err, models.ErrConcurrentUpdate), err)
	}
	assert.Equal(t, 1, env.verify.CountSubscriptions(t, u, "Netflix"))
	assert.Equal(t, 1, env.verify.VerifyCounterConsistent(t, u))
}
