package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kejani/config"
	"kejani/internal/database"
	"kejani/internal/router"
	"kejani/pkg/cloudinary"
	"kejani/pkg/logging"
)

func main() {
	logging.Init()
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logging.Logger.WithError(err).Fatal("database connect failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		logging.Logger.WithError(err).Fatal("migrate failed")
	}

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		logging.Logger.WithError(err).Fatal("cloudinary init failed")
	}

	engine := router.Setup(cfg, db, cloud)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logging.Logger.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.WithError(err).Fatal("server shutdown failed")
	}
	logging.Logger.Info("server stopped")
}
