package repository

import (
	"context"
	"database/sql"

	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CatalogRepository interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error)
	ListSelected(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error)
	GetPrimary(ctx context.Context, accountID uuid.UUID) (*entity.CalendarRef, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CalendarRef, error)
	Insert(ctx context.Context, ref *entity.CalendarRef) error
	UpdateMetadata(ctx context.Context, ref *entity.CalendarRef) error
	SetSelected(ctx context.Context, id uuid.UUID, selected bool) error
	DeleteMissing(ctx context.Context, accountID uuid.UUID, keepRemoteIDs []string) (int64, error)
}

type catalogRepository struct {
	db database.IDatabase
}

func NewCatalogRepository(db database.IDatabase) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error) {
	var refs []entity.CalendarRef
	query := `
		SELECT * FROM calendar_refs
		WHERE account_id = $1
		ORDER BY is_primary DESC, summary ASC
	`
	if err := r.db.SelectContext(ctx, &refs, query, accountID); err != nil {
		logger.Error("CatalogRepository:ListByAccount:Error", "error", err, "account_id", accountID)
		return nil, err
	}
	return refs, nil
}

func (r *catalogRepository) ListSelected(ctx context.Context, accountID uuid.UUID) ([]entity.CalendarRef, error) {
	var refs []entity.CalendarRef
	query := `
		SELECT * FROM calendar_refs
		WHERE account_id = $1 AND selected = true
	`
	if err := r.db.SelectContext(ctx, &refs, query, accountID); err != nil {
		logger.Error("CatalogRepository:ListSelected:Error", "error", err, "account_id", accountID)
		return nil, err
	}
	return refs, nil
}

func (r *catalogRepository) GetPrimary(ctx context.Context, accountID uuid.UUID) (*entity.CalendarRef, error) {
	var ref entity.CalendarRef
	query := `
		SELECT * FROM calendar_refs
		WHERE account_id = $1 AND is_primary = true
	`
	err := r.db.GetContext(ctx, &ref, query, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CatalogRepository:GetPrimary:Error", "error", err, "account_id", accountID)
		return nil, err
	}
	return &ref, nil
}

func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CalendarRef, error) {
	var ref entity.CalendarRef
	query := `SELECT * FROM calendar_refs WHERE id = $1`
	err := r.db.GetContext(ctx, &ref, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CatalogRepository:GetByID:Error", "error", err, "ref_id", id)
		return nil, err
	}
	return &ref, nil
}

func (r *catalogRepository) Insert(ctx context.Context, ref *entity.CalendarRef) error {
	query := `
		INSERT INTO calendar_refs
			(account_id, remote_id, summary, is_primary, selected, foreground_color, background_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		ref.AccountID, ref.RemoteID, ref.Summary, ref.IsPrimary, ref.Selected,
		ref.ForegroundColor, ref.BackgroundColor,
	).Scan(&ref.ID, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		logger.Error("CatalogRepository:Insert:Error", "error", err, "remote_id", ref.RemoteID)
	}
	return err
}

// UpdateMetadata refreshes provider-owned fields, leaving selected alone.
func (r *catalogRepository) UpdateMetadata(ctx context.Context, ref *entity.CalendarRef) error {
	query := `
		UPDATE calendar_refs
		SET summary = $1, is_primary = $2, foreground_color = $3, background_color = $4,
		    updated_at = NOW()
		WHERE id = $5
	`
	err := r.db.ExecContext(ctx, query,
		ref.Summary, ref.IsPrimary, ref.ForegroundColor, ref.BackgroundColor, ref.ID)
	if err != nil {
		logger.Error("CatalogRepository:UpdateMetadata:Error", "error", err, "ref_id", ref.ID)
	}
	return err
}

func (r *catalogRepository) SetSelected(ctx context.Context, id uuid.UUID, selected bool) error {
	query := `
		UPDATE calendar_refs
		SET selected = $1, updated_at = NOW()
		WHERE id = $2
	`
	if err := r.db.ExecContext(ctx, query, selected, id); err != nil {
		logger.Error("CatalogRepository:SetSelected:Error", "error", err, "ref_id", id)
		return err
	}
	return nil
}

// DeleteMissing removes rows whose remote calendar no longer exists in the
// provider's current list.
func (r *catalogRepository) DeleteMissing(ctx context.Context, accountID uuid.UUID, keepRemoteIDs []string) (int64, error) {
	query := `
		DELETE FROM calendar_refs
		WHERE account_id = $1 AND remote_id <> ALL($2)
	`
	res, err := r.db.SQLx().ExecContext(ctx, query, accountID, pq.Array(keepRemoteIDs))
	if err != nil {
		logger.Error("CatalogRepository:DeleteMissing:Error", "error", err, "account_id", accountID)
		return 0, err
	}
	return res.RowsAffected()
}
