package account

import (
	"github.com/gekaluck/couple-moments-sub000/core/cache"
	"github.com/gekaluck/couple-moments-sub000/core/config"
	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/core/queue"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	"github.com/gekaluck/couple-moments-sub000/modules/account/controller"
	"github.com/gekaluck/couple-moments-sub000/modules/account/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/account/router"
	"github.com/gekaluck/couple-moments-sub000/modules/account/service"
	catalogRepository "github.com/gekaluck/couple-moments-sub000/modules/catalog/repository"
	catalogService "github.com/gekaluck/couple-moments-sub000/modules/catalog/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, v *vault.Vault, api *googlecal.Client, q *queue.Client, mw *middleware.Middleware) {
	cfg, _ := config.GetSafe()

	repo := repository.NewAccountRepository(db)
	refresher := service.NewGoogleRefresher(cfg.GoogleAPI.ClientID, cfg.GoogleAPI.ClientSecret)
	tokens := service.NewTokenService(repo, v, refresher)

	catalogRepo := catalogRepository.NewCatalogRepository(db)
	catalogSvc := catalogService.NewCatalogService(catalogRepo, tokens, api)

	svc := service.NewAccountService(
		repo, v, c,
		cfg.GoogleAPI.ClientID, cfg.GoogleAPI.ClientSecret, cfg.GoogleAPI.RedirectURL,
		api, catalogSvc, q,
	)
	ctrl := controller.NewAccountController(svc)
	router.NewAccountRouter(ctrl).Setup(e, mw)
}
