package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
	"github.com/Preston-Miller/LibraryProject/internal/repository"
	"github.com/Preston-Miller/LibraryProject/internal/roster"
)

// Session is the per-connection state handed to the realtime transport: the
// user's identity, their saved status (loaded before any save can happen on
// the session), and a tracker seeded with friends and their presence.
type Session struct {
	UserID    uuid.UUID
	Username  string
	OwnStatus domain.PresenceRecord
	Tracker   *roster.Tracker
}

type SessionService struct {
	userRepo    repository.UserRepository
	friendships *FriendshipService
	presence    *PresenceService
}

func NewSessionService(userRepo repository.UserRepository, friendships *FriendshipService, presence *PresenceService) *SessionService {
	return &SessionService{
		userRepo:    userRepo,
		friendships: friendships,
		presence:    presence,
	}
}

// StartSession bootstraps a session: own status, friend classification, one
// presence snapshot for the friend set, and a tracker built from them. Also
// used to rebuild wholesale after the friend set changes.
func (s *SessionService) StartSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	ownStatus := s.presence.LoadOwn(ctx, userID)

	overview, err := s.friendships.Overview(ctx, userID)
	if err != nil {
		return nil, err
	}

	friendIDs := make([]uuid.UUID, len(overview.Friends))
	for i, f := range overview.Friends {
		friendIDs[i] = f.ID
	}
	records, err := s.presence.Snapshot(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	return &Session{
		UserID:    userID,
		Username:  user.Username,
		OwnStatus: ownStatus,
		Tracker:   roster.NewTracker(userID, overview.Friends, records),
	}, nil
}

// SetOwnStatus persists a status toggle for the session's user.
func (s *SessionService) SetOwnStatus(ctx context.Context, userID uuid.UUID, atLibrary bool, floor *int) (domain.PresenceRecord, error) {
	return s.presence.SaveOwn(ctx, userID, atLibrary, floor)
}
