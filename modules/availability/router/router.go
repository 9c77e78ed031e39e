package router

import (
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	controller *controller.AvailabilityController
}

func NewAvailabilityRouter(controller *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{controller: controller}
}

func (r *AvailabilityRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	availability := v1.Group("/private/availability")
	availability.Use(mw.AuthMiddleware())

	availability.GET("", r.controller.ListBlocks)
	availability.POST("/sync", r.controller.TriggerSync)
	availability.GET("/sync-state", r.controller.GetSyncState)
}
