package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/cache"
	"github.com/Preston-Miller/LibraryProject/internal/domain"
	"github.com/Preston-Miller/LibraryProject/internal/metrics"
	"github.com/Preston-Miller/LibraryProject/internal/repository"
)

var ErrInvalidFloor = errors.New("floor must be between 1 and 5")

// PresenceService owns reads and writes of library status rows. A user's own
// row is written only through SaveOwn; everyone else's rows are snapshot
// reads. The cache is optional and purely an accelerator.
type PresenceService struct {
	repo     repository.PresenceRepository
	cache    *cache.PresenceCache
	notifier Notifier
}

func NewPresenceService(repo repository.PresenceRepository, presenceCache *cache.PresenceCache, notifier Notifier) *PresenceService {
	return &PresenceService{
		repo:     repo,
		cache:    presenceCache,
		notifier: notifier,
	}
}

// LoadOwn returns the user's saved status. Fails soft: a store error or a
// missing row both come back as the absent default, never as an error.
func (s *PresenceService) LoadOwn(ctx context.Context, userID uuid.UUID) domain.PresenceRecord {
	rec, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Printf("presence: load for %s failed, defaulting to absent: %v", userID, err)
		return domain.AbsentRecord(userID)
	}
	if rec == nil {
		return domain.AbsentRecord(userID)
	}
	return *rec
}

// SaveOwn upserts the user's status. Floor is required and must be 1..5 when
// atLibrary is true, and is always cleared when atLibrary is false. Every
// successful save is broadcast so other sessions' trackers pick it up; the
// owning session updates its local state directly.
func (s *PresenceService) SaveOwn(ctx context.Context, userID uuid.UUID, atLibrary bool, floor *int) (domain.PresenceRecord, error) {
	if atLibrary {
		if floor == nil || !domain.ValidFloor(*floor) {
			return domain.PresenceRecord{}, ErrInvalidFloor
		}
	} else {
		floor = nil
	}

	// Prior record rides along on the change event, mirroring what a row
	// trigger would report. A read failure here only costs us the old side.
	old, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Printf("presence: reading prior status for %s: %v", userID, err)
		old = nil
	}

	rec := domain.PresenceRecord{
		UserID:    userID,
		AtLibrary: atLibrary,
		Floor:     floor,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Upsert(ctx, &rec); err != nil {
		metrics.IncPresenceSave("failed")
		return domain.PresenceRecord{}, fmt.Errorf("saving library status: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, rec); err != nil {
			log.Printf("presence: cache write for %s: %v", userID, err)
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyPresenceChanged(old, &rec)
	}
	metrics.IncPresenceSave("ok")
	return rec, nil
}

// Snapshot reads the current records for the given users, serving from the
// cache where possible and falling back to the store for the rest. Users
// with no stored row are simply absent from the result.
func (s *PresenceService) Snapshot(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]domain.PresenceRecord, error) {
	records := make(map[uuid.UUID]domain.PresenceRecord, len(userIDs))
	missing := userIDs

	if s.cache != nil {
		cached, err := s.cache.GetMany(ctx, userIDs)
		if err != nil {
			log.Printf("presence: cache read: %v", err)
		} else {
			missing = missing[:0:0]
			for _, id := range userIDs {
				if rec, ok := cached[id]; ok {
					records[id] = rec
				} else {
					missing = append(missing, id)
				}
			}
		}
	}

	if len(missing) > 0 {
		recs, err := s.repo.ListByUserIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("loading library status: %w", err)
		}
		for _, rec := range recs {
			records[rec.UserID] = rec
			if s.cache != nil {
				if err := s.cache.Put(ctx, rec); err != nil {
					log.Printf("presence: cache backfill for %s: %v", rec.UserID, err)
				}
			}
		}
	}

	return records, nil
}
