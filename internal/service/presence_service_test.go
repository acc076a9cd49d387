package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preston-Miller/LibraryProject/internal/cache"
	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

type fakePresenceRepo struct {
	records map[uuid.UUID]domain.PresenceRecord
	getErr  error
	listErr error
	lists   [][]uuid.UUID
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{records: make(map[uuid.UUID]domain.PresenceRecord)}
}

func (r *fakePresenceRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.PresenceRecord, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if rec, ok := r.records[userID]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (r *fakePresenceRepo) Upsert(_ context.Context, rec *domain.PresenceRecord) error {
	r.records[rec.UserID] = *rec
	return nil
}

func (r *fakePresenceRepo) ListByUserIDs(_ context.Context, userIDs []uuid.UUID) ([]domain.PresenceRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.lists = append(r.lists, userIDs)
	var out []domain.PresenceRecord
	for _, id := range userIDs {
		if rec, ok := r.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func floorPtr(v int) *int { return &v }

func TestLoadOwnDefaultsToAbsent(t *testing.T) {
	userID := uuid.New()

	t.Run("missing row", func(t *testing.T) {
		svc := NewPresenceService(newFakePresenceRepo(), nil, nil)
		rec := svc.LoadOwn(context.Background(), userID)
		assert.Equal(t, domain.AbsentRecord(userID), rec)
	})

	t.Run("store error", func(t *testing.T) {
		repo := newFakePresenceRepo()
		repo.getErr = errors.New("connection refused")
		svc := NewPresenceService(repo, nil, nil)
		rec := svc.LoadOwn(context.Background(), userID)
		assert.Equal(t, domain.AbsentRecord(userID), rec)
	})
}

func TestLoadOwnReturnsSavedStatus(t *testing.T) {
	userID := uuid.New()
	repo := newFakePresenceRepo()
	repo.records[userID] = domain.PresenceRecord{UserID: userID, AtLibrary: true, Floor: floorPtr(4), UpdatedAt: time.Now()}
	svc := NewPresenceService(repo, nil, nil)

	rec := svc.LoadOwn(context.Background(), userID)

	assert.True(t, rec.AtLibrary)
	floor, ok := rec.OnFloor()
	require.True(t, ok)
	assert.Equal(t, 4, floor)
}

func TestSaveOwnValidatesFloor(t *testing.T) {
	svc := NewPresenceService(newFakePresenceRepo(), nil, nil)
	userID := uuid.New()

	for _, floor := range []*int{nil, floorPtr(0), floorPtr(6)} {
		_, err := svc.SaveOwn(context.Background(), userID, true, floor)
		assert.ErrorIs(t, err, ErrInvalidFloor)
	}
}

func TestSaveOwnClearsFloorWhenAbsent(t *testing.T) {
	repo := newFakePresenceRepo()
	svc := NewPresenceService(repo, nil, nil)
	userID := uuid.New()

	// Stale floor from the client must not survive a leave.
	rec, err := svc.SaveOwn(context.Background(), userID, false, floorPtr(3))

	require.NoError(t, err)
	assert.False(t, rec.AtLibrary)
	assert.Nil(t, rec.Floor)
	assert.Nil(t, repo.records[userID].Floor)
}

func TestSaveOwnNotifiesWithOldAndNew(t *testing.T) {
	repo := newFakePresenceRepo()
	notifier := &fakeNotifier{}
	svc := NewPresenceService(repo, nil, notifier)
	userID := uuid.New()

	_, err := svc.SaveOwn(context.Background(), userID, true, floorPtr(2))
	require.NoError(t, err)
	_, err = svc.SaveOwn(context.Background(), userID, true, floorPtr(5))
	require.NoError(t, err)

	require.Len(t, notifier.presenceChanges, 2)

	first := notifier.presenceChanges[0]
	assert.Nil(t, first.old)
	require.NotNil(t, first.new)
	assert.Equal(t, 2, *first.new.Floor)

	second := notifier.presenceChanges[1]
	require.NotNil(t, second.old)
	assert.Equal(t, 2, *second.old.Floor)
	require.NotNil(t, second.new)
	assert.Equal(t, 5, *second.new.Floor)
}

func TestSnapshotFallsBackToStore(t *testing.T) {
	repo := newFakePresenceRepo()
	a, b := uuid.New(), uuid.New()
	repo.records[a] = domain.PresenceRecord{UserID: a, AtLibrary: true, Floor: floorPtr(1)}
	svc := NewPresenceService(repo, nil, nil)

	records, err := svc.Snapshot(context.Background(), []uuid.UUID{a, b})

	require.NoError(t, err)
	require.Contains(t, records, a)
	assert.NotContains(t, records, b)
}

func TestSnapshotServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	presenceCache := cache.NewPresenceCache(client)

	repo := newFakePresenceRepo()
	svc := NewPresenceService(repo, presenceCache, nil)
	a, b := uuid.New(), uuid.New()

	// Warm the cache for a, leave b in the store only.
	require.NoError(t, presenceCache.Put(context.Background(), domain.PresenceRecord{UserID: a, AtLibrary: true, Floor: floorPtr(2)}))
	repo.records[b] = domain.PresenceRecord{UserID: b, AtLibrary: true, Floor: floorPtr(3)}

	records, err := svc.Snapshot(context.Background(), []uuid.UUID{a, b})

	require.NoError(t, err)
	require.Contains(t, records, a)
	require.Contains(t, records, b)

	// Only the cache miss went to the store.
	require.Len(t, repo.lists, 1)
	assert.Equal(t, []uuid.UUID{b}, repo.lists[0])

	// And the miss was backfilled for the next reader.
	cached, err := presenceCache.GetMany(context.Background(), []uuid.UUID{b})
	require.NoError(t, err)
	assert.Contains(t, cached, b)
}
