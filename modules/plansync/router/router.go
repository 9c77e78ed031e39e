package router

import (
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/controller"

	"github.com/labstack/echo/v4"
)

type SyncRouter struct {
	controller *controller.SyncController
}

func NewSyncRouter(controller *controller.SyncController) *SyncRouter {
	return &SyncRouter{controller: controller}
}

func (r *SyncRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	plans := v1.Group("/private/plans")
	plans.Use(mw.AuthMiddleware())

	plans.POST("/:id/calendar-sync", r.controller.CreateEvent)
	plans.PUT("/:id/calendar-sync", r.controller.UpdateEvent)
	plans.DELETE("/:id/calendar-sync", r.controller.RemoveEvent)
}
