package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AvailabilityRepository interface {
	// ReplaceWindow swaps the account's blocks for the given set, atomically.
	// Every stored block overlapping [windowStart, windowEnd) is removed
	// first, including blocks straddling a window edge, so a re-fetched
	// straddling interval is never stored twice. Blocks entirely outside the
	// window are untouched.
	ReplaceWindow(ctx context.Context, accountID uuid.UUID, windowStart, windowEnd time.Time, blocks []entity.AvailabilityBlock) error
	ListByUsers(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) ([]entity.AvailabilityBlock, error)
	GetSyncState(ctx context.Context, accountID uuid.UUID) (*entity.AvailabilitySyncState, error)
	RecordSuccess(ctx context.Context, accountID uuid.UUID, syncedAt time.Time) error
	RecordFailure(ctx context.Context, accountID uuid.UUID, cause string) error
}

type availabilityRepository struct {
	db database.IDatabase
}

func NewAvailabilityRepository(db database.IDatabase) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) ReplaceWindow(ctx context.Context, accountID uuid.UUID, windowStart, windowEnd time.Time, blocks []entity.AvailabilityBlock) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM availability_blocks
			WHERE account_id = $1 AND starts_at < $3 AND ends_at > $2`,
			accountID, windowStart, windowEnd)
		if err != nil {
			return err
		}

		for i := range blocks {
			b := &blocks[i]
			_, err = tx.ExecContext(ctx, `
				INSERT INTO availability_blocks (id, user_id, account_id, source_tag, starts_at, ends_at, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`,
				uuid.New(), b.UserID, b.AccountID, b.SourceTag, b.StartsAt, b.EndsAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *availabilityRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID, from, to time.Time) ([]entity.AvailabilityBlock, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, user_id, account_id, source_tag, starts_at, ends_at, created_at, updated_at
		FROM availability_blocks
		WHERE user_id IN (?) AND starts_at < ? AND ends_at > ?
		ORDER BY starts_at`, userIDs, to, from)
	if err != nil {
		return nil, err
	}

	var blocks []entity.AvailabilityBlock
	err = r.db.SelectContext(ctx, &blocks, r.db.SQLx().Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *availabilityRepository) GetSyncState(ctx context.Context, accountID uuid.UUID) (*entity.AvailabilitySyncState, error) {
	var state entity.AvailabilitySyncState
	err := r.db.GetContext(ctx, &state, `
		SELECT account_id, last_synced_at, last_error, failure_count, updated_at
		FROM availability_sync_states
		WHERE account_id = $1`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *availabilityRepository) RecordSuccess(ctx context.Context, accountID uuid.UUID, syncedAt time.Time) error {
	return r.db.ExecContext(ctx, `
		INSERT INTO availability_sync_states (account_id, last_synced_at, last_error, failure_count, updated_at)
		VALUES ($1, $2, NULL, 0, NOW())
		ON CONFLICT (account_id) DO UPDATE
		SET last_synced_at = EXCLUDED.last_synced_at,
		    last_error = NULL,
		    failure_count = 0,
		    updated_at = NOW()`,
		accountID, syncedAt)
}

func (r *availabilityRepository) RecordFailure(ctx context.Context, accountID uuid.UUID, cause string) error {
	return r.db.ExecContext(ctx, `
		INSERT INTO availability_sync_states (account_id, last_error, failure_count, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (account_id) DO UPDATE
		SET last_error = EXCLUDED.last_error,
		    failure_count = availability_sync_states.failure_count + 1,
		    updated_at = NOW()`,
		accountID, cause)
}
