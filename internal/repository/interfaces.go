package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByUsername resolves a username case-insensitively.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
}

type FriendshipRepository interface {
	Create(ctx context.Context, edge *domain.FriendshipEdge) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FriendshipEdge, error)
	// GetBetween looks for an edge in either direction between the two users.
	GetBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.FriendshipEdge, error)
	// ListByUser returns every edge where userID is either endpoint.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.FriendshipEdge, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteBetween removes edges in both directions between the two users.
	DeleteBetween(ctx context.Context, userA, userB uuid.UUID) error
}

type PresenceRepository interface {
	// GetByUserID returns nil (not an error) when no row exists.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PresenceRecord, error)
	// Upsert inserts or replaces the record keyed by user_id.
	Upsert(ctx context.Context, rec *domain.PresenceRecord) error
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]domain.PresenceRecord, error)
}
