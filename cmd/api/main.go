package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sk2andy/mattermost-buy-bot/api/routes"
	"github.com/sk2andy/mattermost-buy-bot/internal/buys"
	"github.com/sk2andy/mattermost-buy-bot/internal/interests"
	"github.com/sk2andy/mattermost-buy-bot/pkg/config"
	"github.com/sk2andy/mattermost-buy-bot/pkg/db"
	"github.com/sk2andy/mattermost-buy-bot/pkg/logger"
	"github.com/sk2andy/mattermost-buy-bot/pkg/mattermost"
	"github.com/sk2andy/mattermost-buy-bot/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	mmClient, err := mattermost.NewClient(context.Background(), cfg.Mattermost, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mattermost client", err)
		os.Exit(1)
	}

	buyRepo := buys.NewRepository(dbClient.DB())
	interestRepo := interests.NewRepository(dbClient.DB())

	buyService, err := buys.NewService(buyRepo, interestRepo, mmClient, cfg.Bot, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create buy service", err)
		os.Exit(1)
	}
	interestService, err := interests.NewService(interestRepo, buyRepo, mmClient, cfg.Bot, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create interest service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, buyService, interestService, prometheus.NewRegistry()),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
