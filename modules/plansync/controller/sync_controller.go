package controller

import (
	baseController "github.com/gekaluck/couple-moments-sub000/core/controller"
	appErrors "github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/dto"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SyncController struct {
	baseController.BaseController
	service service.SyncService
}

func NewSyncController(svc service.SyncService) *SyncController {
	return &SyncController{
		BaseController: baseController.NewBaseController(),
		service:        svc,
	}
}

// CreateEvent handles POST /plans/:id/calendar-sync.
func (ctrl *SyncController) CreateEvent(c echo.Context) error {
	userID, planID, err := ctrl.identify(c)
	if err != nil {
		return err
	}
	result := ctrl.service.CreateEvent(c.Request().Context(), userID, planID)
	return ctrl.respond(c, result, "plan synced to external calendar")
}

// UpdateEvent handles PUT /plans/:id/calendar-sync.
func (ctrl *SyncController) UpdateEvent(c echo.Context) error {
	userID, planID, err := ctrl.identify(c)
	if err != nil {
		return err
	}
	result := ctrl.service.UpdateEvent(c.Request().Context(), userID, planID)
	return ctrl.respond(c, result, "external event updated")
}

// RemoveEvent handles DELETE /plans/:id/calendar-sync.
func (ctrl *SyncController) RemoveEvent(c echo.Context) error {
	_, planID, err := ctrl.identify(c)
	if err != nil {
		return err
	}
	result := ctrl.service.RemoveEvent(c.Request().Context(), planID)
	return ctrl.respond(c, result, "plan unsynced from external calendar")
}

func (ctrl *SyncController) identify(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, ctrl.Unauthorized(appErrors.ErrUnauthorized, "missing user identity")
	}
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, ctrl.BadRequest(appErrors.ErrInvalidInput, "invalid plan id")
	}
	return userID, planID, nil
}

// respond maps a sync result onto the response envelope. Failures reuse the
// shared error mapping so provider outages surface as 502 and state
// conflicts as 409/404.
func (ctrl *SyncController) respond(c echo.Context, result *dto.SyncResult, message string) error {
	if result.Success {
		return ctrl.SuccessResponse(c, result, message)
	}
	return ctrl.ErrorResponse(c, appErrors.NewAppError(result.Code, result.Error, nil))
}
