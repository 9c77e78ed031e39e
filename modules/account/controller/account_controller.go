package controller

import (
	"github.com/gekaluck/couple-moments-sub000/core/controller"
	"github.com/gekaluck/couple-moments-sub000/core/errors"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/modules/account/dto"
	"github.com/gekaluck/couple-moments-sub000/modules/account/entity"
	"github.com/gekaluck/couple-moments-sub000/modules/account/service"

	"github.com/labstack/echo/v4"
)

type AccountController struct {
	controller.BaseController
	service service.AccountService
}

func NewAccountController(svc service.AccountService) *AccountController {
	return &AccountController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// BeginConnect returns the provider consent URL for the current user.
// GET /api/v1/private/accounts/connect/google
func (c *AccountController) BeginConnect(ctx echo.Context) error {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "invalid user")
	}

	resp, err := c.service.BeginConnect(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, resp, "connect url issued")
}

// CompleteConnect handles the provider redirect with state + code.
// GET /api/v1/accounts/connect/google/callback?state=...&code=...
func (c *AccountController) CompleteConnect(ctx echo.Context) error {
	state := ctx.QueryParam("state")
	code := ctx.QueryParam("code")
	if state == "" || code == "" {
		return c.BadRequest(errors.ErrInvalidInput, "state and code are required")
	}

	account, err := c.service.CompleteConnect(ctx.Request().Context(), state, code)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, dto.AccountResponse{
		ID:           account.ID.String(),
		Provider:     account.Provider,
		AccountEmail: account.AccountEmail,
		Connected:    true,
		ConnectedAt:  account.CreatedAt,
	}, "calendar account connected")
}

// ListAccounts returns all provider accounts for the current user.
// GET /api/v1/private/accounts
func (c *AccountController) ListAccounts(ctx echo.Context) error {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "invalid user")
	}

	accounts, err := c.service.ListAccounts(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dto.AccountListResponse{Accounts: accounts}, "")
}

// Disconnect revokes the current user's provider account.
// DELETE /api/v1/private/accounts/:provider
func (c *AccountController) Disconnect(ctx echo.Context) error {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "invalid user")
	}

	provider := ctx.Param("provider")
	if provider != entity.ProviderGoogle {
		return c.BadRequest(errors.ErrInvalidInput, "unknown provider")
	}

	if err := c.service.Disconnect(ctx.Request().Context(), userID, provider); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, nil, "calendar account disconnected")
}
