package router

import (
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/controller"

	"github.com/labstack/echo/v4"
)

type CatalogRouter struct {
	controller *controller.CatalogController
}

func NewCatalogRouter(controller *controller.CatalogController) *CatalogRouter {
	return &CatalogRouter{controller: controller}
}

func (r *CatalogRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	calendars := v1.Group("/private/calendars")
	calendars.Use(mw.AuthMiddleware())

	calendars.GET("", r.controller.ListCalendars)
	calendars.POST("/reconcile", r.controller.Reconcile)
	calendars.PATCH("/:id/selected", r.controller.SetSelected)
}
