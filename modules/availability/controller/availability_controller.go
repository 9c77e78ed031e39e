package controller

import (
	"time"

	baseController "github.com/gekaluck/couple-moments-sub000/core/controller"
	appErrors "github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/core/queue"
	accountEntity "github.com/gekaluck/couple-moments-sub000/modules/account/entity"
	accountRepository "github.com/gekaluck/couple-moments-sub000/modules/account/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/dto"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/service"
	planRepository "github.com/gekaluck/couple-moments-sub000/modules/plan/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AvailabilityController struct {
	baseController.BaseController
	service  service.AvailabilityService
	accounts accountRepository.AccountRepository
	plans    planRepository.PlanRepository
	queue    *queue.Client
}

func NewAvailabilityController(
	svc service.AvailabilityService,
	accounts accountRepository.AccountRepository,
	plans planRepository.PlanRepository,
	q *queue.Client,
) *AvailabilityController {
	return &AvailabilityController{
		BaseController: baseController.NewBaseController(),
		service:        svc,
		accounts:       accounts,
		plans:          plans,
		queue:          q,
	}
}

// ListBlocks handles GET /availability. With space_id it returns busy blocks
// for every member of the space, which is how the planner view shades both
// partners' calendars at once. Without it, only the caller's own blocks.
func (ctrl *AvailabilityController) ListBlocks(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return ctrl.Unauthorized(appErrors.ErrUnauthorized, "missing user identity")
	}

	from, to, err := parseWindow(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return ctrl.BadRequest(appErrors.ErrInvalidInput, err.Error())
	}

	userIDs := []uuid.UUID{userID}
	if raw := c.QueryParam("space_id"); raw != "" {
		spaceID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return ctrl.BadRequest(appErrors.ErrInvalidInput, "invalid space id")
		}
		members, memberErr := ctrl.plans.ListSpaceMembers(c.Request().Context(), spaceID)
		if memberErr != nil {
			return ctrl.ErrorResponse(c, memberErr)
		}
		userIDs = userIDs[:0]
		for _, member := range members {
			userIDs = append(userIDs, member.UserID)
		}
	}

	blocks, err := ctrl.service.ListBlocks(c.Request().Context(), userIDs, from, to)
	if err != nil {
		return ctrl.ErrorResponse(c, err)
	}

	resp := dto.BlockListResponse{From: from, To: to, Blocks: make([]dto.BlockResponse, 0, len(blocks))}
	for _, block := range blocks {
		resp.Blocks = append(resp.Blocks, dto.ToBlockResponse(block))
	}
	return ctrl.SuccessResponse(c, resp, "availability blocks")
}

// TriggerSync handles POST /availability/sync: queues a re-mirror of the
// caller's connected account.
func (ctrl *AvailabilityController) TriggerSync(c echo.Context) error {
	account, err := ctrl.callerAccount(c)
	if err != nil {
		return err
	}
	if enqueueErr := ctrl.queue.EnqueueAvailabilitySync(account); enqueueErr != nil {
		return ctrl.ErrorResponse(c, enqueueErr)
	}
	return ctrl.SuccessResponse(c, nil, "availability sync queued")
}

// GetSyncState handles GET /availability/sync-state.
func (ctrl *AvailabilityController) GetSyncState(c echo.Context) error {
	account, err := ctrl.callerAccount(c)
	if err != nil {
		return err
	}

	state, stateErr := ctrl.service.SyncState(c.Request().Context(), account)
	if stateErr != nil {
		return ctrl.ErrorResponse(c, stateErr)
	}

	resp := dto.SyncStateResponse{AccountID: account}
	if state != nil {
		resp.LastSyncedAt = state.LastSyncedAt
		resp.LastError = state.LastError
		resp.FailureCount = state.FailureCount
	}
	return ctrl.SuccessResponse(c, resp, "availability sync state")
}

func (ctrl *AvailabilityController) callerAccount(c echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, ctrl.Unauthorized(appErrors.ErrUnauthorized, "missing user identity")
	}
	account, err := ctrl.accounts.GetActiveByUserAndProvider(c.Request().Context(), userID, accountEntity.ProviderGoogle)
	if err != nil {
		return uuid.Nil, ctrl.ErrorResponse(c, err)
	}
	if account == nil {
		return uuid.Nil, ctrl.NotFound(appErrors.ErrNotConnected, "no connected google account")
	}
	return account.ID, nil
}

// parseWindow reads the RFC3339 window bounds, defaulting to the next seven
// days when omitted.
func parseWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now
	to := now.AddDate(0, 0, 7)

	var err error
	if fromRaw != "" {
		if from, err = time.Parse(time.RFC3339, fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toRaw != "" {
		if to, err = time.Parse(time.RFC3339, toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
