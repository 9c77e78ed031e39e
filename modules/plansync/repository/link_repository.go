package repository

import (
	"context"
	"database/sql"
	goerrors "errors"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateLink surfaces the plan_id uniqueness constraint; a concurrent
// create racing this one already linked the plan.
var ErrDuplicateLink = goerrors.New("plan already has a sync link")

type LinkRepository interface {
	GetByPlanID(ctx context.Context, planID uuid.UUID) (*entity.PlanEventLink, error)
	Create(ctx context.Context, link *entity.PlanEventLink) error
	UpdateSyncState(ctx context.Context, id uuid.UUID, etag *string, syncedAt time.Time) error
	DeleteByPlanID(ctx context.Context, planID uuid.UUID) error
}

type linkRepository struct {
	db database.IDatabase
}

func NewLinkRepository(db database.IDatabase) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) GetByPlanID(ctx context.Context, planID uuid.UUID) (*entity.PlanEventLink, error) {
	var link entity.PlanEventLink
	query := `SELECT * FROM plan_event_links WHERE plan_id = $1`
	err := r.db.GetContext(ctx, &link, query, planID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("LinkRepository:GetByPlanID:Error", "error", err, "plan_id", planID)
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) Create(ctx context.Context, link *entity.PlanEventLink) error {
	query := `
		INSERT INTO plan_event_links
			(plan_id, account_id, remote_calendar_id, remote_event_id, etag, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		link.PlanID, link.AccountID, link.RemoteCalendarID, link.RemoteEventID,
		link.Etag, link.LastSyncedAt,
	).Scan(&link.ID, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if goerrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateLink
		}
		logger.Error("LinkRepository:Create:Error", "error", err, "plan_id", link.PlanID)
		return err
	}
	return nil
}

func (r *linkRepository) UpdateSyncState(ctx context.Context, id uuid.UUID, etag *string, syncedAt time.Time) error {
	query := `
		UPDATE plan_event_links
		SET etag = $1, last_synced_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	if err := r.db.ExecContext(ctx, query, etag, syncedAt, id); err != nil {
		logger.Error("LinkRepository:UpdateSyncState:Error", "error", err, "link_id", id)
		return err
	}
	return nil
}

func (r *linkRepository) DeleteByPlanID(ctx context.Context, planID uuid.UUID) error {
	query := `DELETE FROM plan_event_links WHERE plan_id = $1`
	if err := r.db.ExecContext(ctx, query, planID); err != nil {
		logger.Error("LinkRepository:DeleteByPlanID:Error", "error", err, "plan_id", planID)
		return err
	}
	return nil
}
