package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

const (
	presenceKeyPrefix = "library_status:"
	presenceTTL       = 30 * time.Second
)

// PresenceCache holds short-lived snapshots of presence rows so session
// bootstraps don't hammer Postgres. It is a pure accelerator: a miss or a
// Redis error just means the caller reads the store instead.
type PresenceCache struct {
	client *redis.Client
}

func NewPresenceCache(client *redis.Client) *PresenceCache {
	return &PresenceCache{client: client}
}

func (c *PresenceCache) Put(ctx context.Context, rec domain.PresenceRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling presence record: %w", err)
	}
	return c.client.Set(ctx, presenceKey(rec.UserID), data, presenceTTL).Err()
}

// GetMany fetches cached records for the given users in one round trip.
// Users without a cached record are simply absent from the result.
func (c *PresenceCache) GetMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]domain.PresenceRecord, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID]domain.PresenceRecord{}, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = presenceKey(id)
	}

	results, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading presence cache: %w", err)
	}

	records := make(map[uuid.UUID]domain.PresenceRecord, len(userIDs))
	for i, result := range results {
		if result == nil {
			continue
		}
		data, ok := result.(string)
		if !ok {
			continue
		}
		var rec domain.PresenceRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		records[userIDs[i]] = rec
	}
	return records, nil
}

func (c *PresenceCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, presenceKey(userID)).Err()
}

func presenceKey(userID uuid.UUID) string {
	return presenceKeyPrefix + userID.String()
}
