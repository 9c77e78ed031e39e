package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/cache"
	"github.com/gekaluck/couple-moments-sub000/core/config"
	"github.com/gekaluck/couple-moments-sub000/core/constants"
	"github.com/gekaluck/couple-moments-sub000/core/database"
	"github.com/gekaluck/couple-moments-sub000/core/googlecal"
	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/core/middleware"
	"github.com/gekaluck/couple-moments-sub000/core/queue"
	"github.com/gekaluck/couple-moments-sub000/core/vault"
	"github.com/gekaluck/couple-moments-sub000/modules/account"
	"github.com/gekaluck/couple-moments-sub000/modules/availability"
	"github.com/gekaluck/couple-moments-sub000/modules/catalog"
	"github.com/gekaluck/couple-moments-sub000/modules/plansync"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the whole service: HTTP API and the background sync worker share
// one process, one DB pool, and one provider client.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Server.Env, cfg.Server.Log)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
	})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}

	credentialVault, err := vault.New(cfg.Vault.MasterKey)
	if err != nil {
		return fmt.Errorf("init credential vault: %w", err)
	}

	api := googlecal.NewClient(constants.DefaultTimeout)

	queueRedis := queue.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	queueClient := queue.NewClient(queueRedis)
	defer queueClient.Close()

	workerServer, workerMux := queue.NewServer(queueRedis, constants.WorkerConcurrency)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())

	mw := middleware.NewMiddleware(cfg.JWT.Secret)

	account.Init(e, db, redisCache, credentialVault, api, queueClient, mw)
	catalog.Init(e, db, credentialVault, api, queueClient, mw)
	plansync.Init(e, db, credentialVault, api, mw)
	availability.Init(e, db, credentialVault, api, queueClient, workerMux, mw)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	errCh := make(chan error, 2)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("HTTP server starting", "addr", addr, "env", cfg.Server.Env)
		if startErr := e.Start(addr); startErr != nil && startErr != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", startErr)
		}
	}()

	go func() {
		logger.Info("Sync worker starting", "concurrency", constants.WorkerConcurrency)
		if runErr := workerServer.Run(workerMux); runErr != nil {
			errCh <- fmt.Errorf("sync worker: %w", runErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		logger.Error("Server component failed", "error", err)
	case sig := <-quit:
		logger.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	workerServer.Shutdown()
	if shutdownErr := e.Shutdown(ctx); shutdownErr != nil {
		logger.Error("HTTP shutdown error", "error", shutdownErr)
	}

	logger.Info("Server stopped")
	return err
}
