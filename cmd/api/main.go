package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-credit-inventory/internal/config"
	"go-credit-inventory/internal/handler"
	"go-credit-inventory/internal/logging"
	"go-credit-inventory/internal/repository"
	"go-credit-inventory/internal/service"
	"go-credit-inventory/internal/store"
	"go-credit-inventory/internal/ws"
	"go-credit-inventory/pkg/database"
	"go-credit-inventory/pkg/jwt"

	log "github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Env
	cfg, foundEnv, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if !foundEnv {
		log.Warn(".env file not found, using environment only")
	}

	// 2. Setup registry database
	db, err := database.ConnectRegistry(cfg.Database())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := repository.MigrateRegistry(db); err != nil {
		log.WithError(err).Fatal("failed to migrate registry")
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	profileRepo := repository.NewProfileRepo(db)
	stores := store.NewManager(database.NewOpener(cfg.Database(), db), profileRepo, wsHub)
	issuer := jwt.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	profileService := service.NewProfileService(profileRepo, stores, issuer, cfg.DefaultCurrencyRate)

	app := handler.NewApp(handler.Dependencies{
		Profiles: profileService,
		Stores:   stores,
		Issuer:   issuer,
		Hub:      wsHub,
	})

	// 5. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()
	log.WithFields(log.Fields{"port": cfg.Port, "driver": cfg.DBDriver}).Info("server started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	wsHub.Stop()
	if err := stores.CloseAll(); err != nil {
		log.WithError(err).Error("failed to close profile stores")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Server exited")
}
