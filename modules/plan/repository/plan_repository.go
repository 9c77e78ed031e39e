package repository

import (
	"context"
	"database/sql"

	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/modules/plan/entity"

	"github.com/google/uuid"
)

// PlanRepository reads plan and shared-space data owned by the web layer.
// It is strictly read-only from this subsystem's perspective.
type PlanRepository interface {
	GetByID(ctx context.Context, planID uuid.UUID) (*entity.Plan, error)
	ListSpaceMembers(ctx context.Context, spaceID uuid.UUID) ([]entity.SpaceMember, error)
}

type planRepository struct {
	db database.IDatabase
}

func NewPlanRepository(db database.IDatabase) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetByID(ctx context.Context, planID uuid.UUID) (*entity.Plan, error) {
	var plan entity.Plan
	query := `
		SELECT id, space_id, creator_id, title, description, place_name, place_address,
		       starts_at, ends_at, anytime
		FROM plans
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &plan, query, planID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PlanRepository:GetByID:Error", "error", err, "plan_id", planID)
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListSpaceMembers(ctx context.Context, spaceID uuid.UUID) ([]entity.SpaceMember, error) {
	var members []entity.SpaceMember
	query := `
		SELECT m.user_id, u.email
		FROM space_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.space_id = $1
	`
	if err := r.db.SelectContext(ctx, &members, query, spaceID); err != nil {
		logger.Error("PlanRepository:ListSpaceMembers:Error", "error", err, "space_id", spaceID)
		return nil, err
	}
	return members, nil
}
