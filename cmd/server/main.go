package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifeflow/blood-bank/internal/api"
	"github.com/lifeflow/blood-bank/internal/infrastructure/db/mongo"
	"github.com/lifeflow/blood-bank/internal/infrastructure/db/redis"
	"github.com/lifeflow/blood-bank/internal/pkg/config"
	"github.com/lifeflow/blood-bank/pkg/logger"
)

// @title        Blood Bank Donor Registry API
// @version      1.0
// @description  Donor registration, donation accumulation, and blood-type
// @description  compatibility search over the donor registry.
// @BasePath     /
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect mongodb")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	// The unique phone index is what makes concurrent registration races
	// resolve to at-most-one insert, so it must exist before serving.
	if err := mongo.NewDonorRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure donor indexes")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis")
		}
	}()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	e := api.NewRouter(db, rdb, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("donor registry listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server")
	}
	log.Info().Msg("server stopped")
}
