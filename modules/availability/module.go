package availability

import (
	"github.com/gekaluck/couple-moments-sub000/core/config"
	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/core/queue"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	accountRepository "github.com/gekaluck/couple-moments-sub000/modules/account/repository"
	accountService "github.com/gekaluck/couple-moments-sub000/modules/account/service"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/controller"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/repository"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/router"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/service"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/worker"
	catalogRepository "github.com/gekaluck/couple-moments-sub000/modules/catalog/repository"
	planRepository "github.com/gekaluck/couple-moments-sub000/modules/plan/repository"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

// Init wires the availability module into both surfaces: HTTP routes on the
// echo instance and the sync task handler on the worker mux.
func Init(e *echo.Echo, db database.IDatabase, v *vault.Vault, api *googlecal.Client, q *queue.Client, mux *asynq.ServeMux, mw *middleware.Middleware) {
	cfg, _ := config.GetSafe()

	accountRepo := accountRepository.NewAccountRepository(db)
	refresher := accountService.NewGoogleRefresher(cfg.GoogleAPI.ClientID, cfg.GoogleAPI.ClientSecret)
	tokens := accountService.NewTokenService(accountRepo, v, refresher)

	svc := service.NewAvailabilityService(
		repository.NewAvailabilityRepository(db),
		accountRepo,
		catalogRepository.NewCatalogRepository(db),
		tokens,
		api,
	)

	ctrl := controller.NewAvailabilityController(svc, accountRepo, planRepository.NewPlanRepository(db), q)
	router.NewAvailabilityRouter(ctrl).Setup(e, mw)

	worker.NewWorker(svc).Register(mux)
}
