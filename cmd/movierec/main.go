package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/engine"
	"github.com/rushteam/movierec/loader"
	"github.com/rushteam/movierec/server"
	"github.com/rushteam/movierec/store"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "movierec").Logger()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	memory := store.NewMemory()
	config.RegisterSnapshotNodes(memory)

	var cache *store.Redis
	if cfg.Redis.Addr != "" {
		cache, err = store.NewRedis(
			cfg.Redis.Addr,
			cfg.Redis.DB,
			cfg.Redis.Key,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second,
		)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, snapshot cache disabled")
		} else {
			defer cache.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ld := loader.New(
		cfg.UpstreamURL,
		time.Duration(cfg.TimeoutSeconds)*time.Second,
		memory,
		cache,
		log.With().Str("component", "loader").Logger(),
	)
	if err := ld.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("initial refresh failed, serving degrades until next tick")
	}
	go ld.Run(ctx, time.Duration(cfg.RefreshSeconds)*time.Second)

	filters, err := config.BuildFilters(cfg.FilterExprs)
	if err != nil {
		log.Fatal().Err(err).Msg("compile filter rules")
	}

	eng := engine.New(memory,
		engine.WithTunables(cfg.Tunables.Tunables()),
		engine.WithFilters(filters...),
	)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(eng, memory, ld, log.With().Str("component", "server").Logger()).Handler(),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
