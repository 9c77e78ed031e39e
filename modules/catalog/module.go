package catalog

import (
	"github.com/gekaluck/couple-moments-sub000/core/config"
	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/core/queue"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	accountRepository "github.com/gekaluck/couple-moments-sub000/modules/account/repository"
	accountService "github.com/gekaluck/couple-moments-sub000/modules/account/service"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/controller"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/router"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, v *vault.Vault, api *googlecal.Client, q *queue.Client, mw *middleware.Middleware) {
	cfg, _ := config.GetSafe()

	accountRepo := accountRepository.NewAccountRepository(db)
	refresher := accountService.NewGoogleRefresher(cfg.GoogleAPI.ClientID, cfg.GoogleAPI.ClientSecret)
	tokens := accountService.NewTokenService(accountRepo, v, refresher)

	repo := repository.NewCatalogRepository(db)
	svc := service.NewCatalogService(repo, tokens, api)
	ctrl := controller.NewCatalogController(svc, accountRepo, q)
	router.NewCatalogRouter(ctrl).Setup(e, mw)
}
