package router

import (
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/modules/account/controller"

	"github.com/labstack/echo/v4"
)

type AccountRouter struct {
	controller *controller.AccountController
}

func NewAccountRouter(controller *controller.AccountController) *AccountRouter {
	return &AccountRouter{controller: controller}
}

func (r *AccountRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	// The provider redirects here without our JWT; the state nonce is the
	// binding back to the initiating user.
	v1.GET("/accounts/connect/google/callback", r.controller.CompleteConnect)

	private := v1.Group("/private/accounts")
	private.Use(mw.AuthMiddleware())
	private.GET("", r.controller.ListAccounts)
	private.GET("/connect/google", r.controller.BeginConnect)
	private.DELETE("/:provider", r.controller.Disconnect)
}
