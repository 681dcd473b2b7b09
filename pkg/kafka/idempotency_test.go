package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyStore(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryIdempotencyStore(time.Minute)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	seen, err := s.Seen(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Mark(ctx, "evt-1"))
	seen, _ = s.Seen(ctx, "evt-1")
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = s.Seen(ctx, "evt-1")
	assert.False(t, seen)
	assert.Equal(t, 0, s.Len())
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisIdempotencyStore(client, "wampin:idem:", time.Hour)
	ctx := context.Background()

	seen, err := s.Seen(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Mark(ctx, "evt-1"))
	seen, err = s.Seen(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, time.Hour, mr.TTL("wampin:idem:evt-1"))

	mr.FastForward(2 * time.Hour)
	seen, _ = s.Seen(ctx, "evt-1")
	assert.False(t, seen)
}

func TestRedisIdempotencyStore_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisIdempotencyStore(db, "p:", time.Minute)

	mock.ExpectExists("p:evt").SetErr(errBoom)
	_, err := s.Seen(context.Background(), "evt")
	assert.ErrorIs(t, err, errBoom)

	mock.ExpectSet("p:evt", 1, time.Minute).SetErr(errBoom)
	assert.ErrorIs(t, s.Mark(context.Background(), "evt"), errBoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotent(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	calls := 0
	h := Idempotent(store, func(context.Context, *Event) error {
		calls++
		if calls == 1 {
			return errBoom
		}
		return nil
	}, testLogger())
	ctx := context.Background()
	e := &Event{ID: "evt-1", Type: "review.created"}

	assert.ErrorIs(t, h(ctx, e), errBoom)
	assert.NoError(t, h(ctx, e))
	assert.ErrorIs(t, h(ctx, e), ErrDuplicate)
	assert.Equal(t, 2, calls)

	assert.NoError(t, h(ctx, &Event{Type: "review.created"}))
	assert.Equal(t, 3, calls)
}

func TestIdempotent_StoreFailureProcesses(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisIdempotencyStore(db, "p:", time.Minute)
	mock.ExpectExists("p:evt-1").SetErr(errBoom)
	mock.ExpectSet("p:evt-1", 1, time.Minute).SetVal("OK")

	called := false
	h := Idempotent(store, func(context.Context, *Event) error {
		called = true
		return nil
	}, testLogger())

	assert.NoError(t, h(context.Background(), &Event{ID: "evt-1", Type: "x"}))
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
