package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

type FriendshipRepo struct {
	pool *pgxpool.Pool
}

func NewFriendshipRepo(pool *pgxpool.Pool) *FriendshipRepo {
	return &FriendshipRepo{pool: pool}
}

func (r *FriendshipRepo) Create(ctx context.Context, edge *domain.FriendshipEdge) error {
	query := `
		INSERT INTO friendships (id, from_user_id, to_user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, edge.ID, edge.FromUserID, edge.ToUserID, edge.Status, edge.CreatedAt)
	return err
}

func (r *FriendshipRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FriendshipEdge, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friendships
		WHERE id = $1`
	return r.scanEdge(ctx, query, id)
}

func (r *FriendshipRepo) GetBetween(ctx context.Context, userA, userB uuid.UUID) (*domain.FriendshipEdge, error) {
	// Either direction; the pair should have at most one edge, but the
	// check-then-insert race can leave two, so take the oldest.
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friendships
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)
		ORDER BY created_at ASC
		LIMIT 1`
	return r.scanEdge(ctx, query, userA, userB)
}

func (r *FriendshipRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.FriendshipEdge, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friendships
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.FriendshipEdge
	for rows.Next() {
		var e domain.FriendshipEdge
		if err := rows.Scan(&e.ID, &e.FromUserID, &e.ToUserID, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (r *FriendshipRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE friendships SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *FriendshipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	return err
}

func (r *FriendshipRepo) DeleteBetween(ctx context.Context, userA, userB uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM friendships
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)`,
		userA, userB)
	return err
}

func (r *FriendshipRepo) scanEdge(ctx context.Context, query string, args ...any) (*domain.FriendshipEdge, error) {
	var e domain.FriendshipEdge
	err := r.pool.QueryRow(ctx, query, args...).Scan(&e.ID, &e.FromUserID, &e.ToUserID, &e.Status, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
