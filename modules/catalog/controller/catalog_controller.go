package controller

import (
	"github.com/gekaluck/couple-moments-sub000/core/controller"
	"github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/core/queue"
	accountEntity "github.com/gekaluck/couple-moments-sub000/modules/account/entity"
	accountRepository "github.com/gekaluck/couple-moments-sub000/modules/account/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/dto"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CatalogController struct {
	controller.BaseController
	service  service.CatalogService
	accounts accountRepository.AccountRepository
	queue    *queue.Client
}

func NewCatalogController(svc service.CatalogService, accounts accountRepository.AccountRepository, q *queue.Client) *CatalogController {
	return &CatalogController{
		BaseController: controller.NewBaseController(),
		service:        svc,
		accounts:       accounts,
		queue:          q,
	}
}

func (c *CatalogController) accountIDForUser(ctx echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "invalid user", nil)
	}
	account, err := c.accounts.GetActiveByUserAndProvider(ctx.Request().Context(), userID, accountEntity.ProviderGoogle)
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.ErrInternalServer, "failed to load connected account", err)
	}
	if account == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrNotConnected, "no connected calendar account", nil)
	}
	return account.ID, nil
}

// ListCalendars returns the stored catalog for the user's account.
// GET /api/v1/private/calendars
func (c *CatalogController) ListCalendars(ctx echo.Context) error {
	accountID, err := c.accountIDForUser(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	refs, err := c.service.List(ctx.Request().Context(), accountID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, toListResponse(refs), "")
}

// Reconcile refreshes the catalog against the provider and returns it.
// POST /api/v1/private/calendars/reconcile
func (c *CatalogController) Reconcile(ctx echo.Context) error {
	accountID, err := c.accountIDForUser(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	refs, err := c.service.Reconcile(ctx.Request().Context(), accountID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, toListResponse(refs), "calendar catalog reconciled")
}

// SetSelected flips a calendar's availability opt-in and queues a re-sync.
// PATCH /api/v1/private/calendars/:id/selected
func (c *CatalogController) SetSelected(ctx echo.Context) error {
	accountID, err := c.accountIDForUser(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	refID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid calendar id")
	}

	var req dto.SetSelectedRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "invalid request body")
	}

	if err := c.service.SetSelected(ctx.Request().Context(), accountID, refID, req.Selected); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	// Selection changes what availability mirrors; refresh in the background.
	if c.queue != nil {
		_ = c.queue.EnqueueAvailabilitySync(accountID)
	}
	return c.SuccessResponse(ctx, nil, "calendar selection updated")
}

func toListResponse(refs []entity.CalendarRef) dto.CalendarListResponse {
	out := dto.CalendarListResponse{Calendars: make([]dto.CalendarResponse, 0, len(refs))}
	for _, ref := range refs {
		out.Calendars = append(out.Calendars, dto.CalendarResponse{
			ID:              ref.ID.String(),
			RemoteID:        ref.RemoteID,
			Summary:         ref.Summary,
			IsPrimary:       ref.IsPrimary,
			Selected:        ref.Selected,
			ForegroundColor: ref.ForegroundColor,
			BackgroundColor: ref.BackgroundColor,
		})
	}
	return out
}
