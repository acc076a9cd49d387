package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Preston-Miller/LibraryProject/internal/domain"
)

type PresenceRepo struct {
	pool *pgxpool.Pool
}

func NewPresenceRepo(pool *pgxpool.Pool) *PresenceRepo {
	return &PresenceRepo{pool: pool}
}

func (r *PresenceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PresenceRecord, error) {
	query := `
		SELECT user_id, at_library, floor, updated_at
		FROM library_status
		WHERE user_id = $1`
	var rec domain.PresenceRecord
	err := r.pool.QueryRow(ctx, query, userID).Scan(&rec.UserID, &rec.AtLibrary, &rec.Floor, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PresenceRepo) Upsert(ctx context.Context, rec *domain.PresenceRecord) error {
	query := `
		INSERT INTO library_status (user_id, at_library, floor, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET at_library = EXCLUDED.at_library,
		    floor = EXCLUDED.floor,
		    updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, query, rec.UserID, rec.AtLibrary, rec.Floor, rec.UpdatedAt)
	return err
}

func (r *PresenceRepo) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]domain.PresenceRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT user_id, at_library, floor, updated_at
		FROM library_status
		WHERE user_id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.PresenceRecord
	for rows.Next() {
		var rec domain.PresenceRecord
		if err := rows.Scan(&rec.UserID, &rec.AtLibrary, &rec.Floor, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
