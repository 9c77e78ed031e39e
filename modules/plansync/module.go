package plansync

import (
	"github.com/gekaluck/couple-moments-sub000/core/config"
	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	accountRepository "github.com/gekaluck/couple-moments-sub000/modules/account/repository"
	accountService "github.com/gekaluck/couple-moments-sub000/modules/account/service"
	catalogRepository "github.com/gekaluck/couple-moments-sub000/modules/catalog/repository"
	planRepository "github.com/gekaluck/couple-moments-sub000/modules/plan/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/controller"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/router"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, v *vault.Vault, api *googlecal.Client, mw *middleware.Middleware) {
	cfg, _ := config.GetSafe()

	accountRepo := accountRepository.NewAccountRepository(db)
	refresher := accountService.NewGoogleRefresher(cfg.GoogleAPI.ClientID, cfg.GoogleAPI.ClientSecret)
	tokens := accountService.NewTokenService(accountRepo, v, refresher)

	svc := service.NewSyncService(
		repository.NewLinkRepository(db),
		planRepository.NewPlanRepository(db),
		service.NewAccountResolver(accountRepo),
		catalogRepository.NewCatalogRepository(db),
		tokens,
		api,
	)
	ctrl := controller.NewSyncController(svc)
	router.NewSyncRouter(ctrl).Setup(e, mw)
}
