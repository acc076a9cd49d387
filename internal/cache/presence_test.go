package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

func newTestCache(t *testing.T) (*PresenceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewPresenceCache(client), mr
}

func TestPutAndGetMany(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	a, b, missing := uuid.New(), uuid.New(), uuid.New()
	floor := 3
	require.NoError(t, c.Put(ctx, domain.PresenceRecord{UserID: a, AtLibrary: true, Floor: &floor}))
	require.NoError(t, c.Put(ctx, domain.PresenceRecord{UserID: b, AtLibrary: false}))

	records, err := c.GetMany(ctx, []uuid.UUID{a, b, missing})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[a].AtLibrary)
	require.NotNil(t, records[a].Floor)
	assert.Equal(t, 3, *records[a].Floor)
	assert.False(t, records[b].AtLibrary)
	assert.NotContains(t, records, missing)
}

func TestGetManyEmptyInput(t *testing.T) {
	c, _ := newTestCache(t)

	records, err := c.GetMany(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, c.Put(ctx, domain.PresenceRecord{UserID: userID, AtLibrary: false}))
	mr.FastForward(presenceTTL + time.Second)

	records, err := c.GetMany(ctx, []uuid.UUID{userID})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, c.Put(ctx, domain.PresenceRecord{UserID: userID, AtLibrary: true, Floor: intp(1)}))
	require.NoError(t, c.Delete(ctx, userID))

	records, err := c.GetMany(ctx, []uuid.UUID{userID})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func intp(v int) *int { return &v }
