package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tatd3v/ballroom-calendar-client/internal/api"
	"github.com/tatd3v/ballroom-calendar-client/internal/cache"
	"github.com/tatd3v/ballroom-calendar-client/internal/config"
	cronrunner "github.com/tatd3v/ballroom-calendar-client/internal/cron"
	"github.com/tatd3v/ballroom-calendar-client/internal/feed"
	"github.com/tatd3v/ballroom-calendar-client/internal/logger"
	"github.com/tatd3v/ballroom-calendar-client/internal/server"
	"github.com/tatd3v/ballroom-calendar-client/internal/snapshot"
	"github.com/tatd3v/ballroom-calendar-client/internal/translate"
)

func main() {
	cfgPath := os.Getenv("BALLROOM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if raw := os.Getenv("BALLROOM_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	store, err := openStore(cfg.Cache)
	if err != nil {
		log.Fatal("cache store open failed", zap.Error(err))
	}

	client := &api.Client{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		HTTP:    &http.Client{Timeout: cfg.API.Timeout},
	}
	snap := &snapshot.Snapshot{Store: store}

	var tr *translate.Translator
	if cfg.Translate.Enabled {
		tr = &translate.Translator{
			BaseURL: cfg.Translate.BaseURL,
			HTTP:    &http.Client{Timeout: cfg.Translate.Timeout},
			Store:   store,
			Logger:  log,
			Workers: cfg.Translate.Workers,
		}
	}

	f := feed.New(client, snap, tr, log)
	if cfg.Feed.Limit > 0 {
		f.Limit = cfg.Feed.Limit
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot first for an instant view, then the network.
	f.Prime(rootCtx)
	f.LoadCities(rootCtx)
	if cfg.Feed.Lang != "" {
		f.SetLanguage(rootCtx, cfg.Feed.Lang)
	}
	f.Refresh(rootCtx)

	runner := cronrunner.New(log, rootCtx)
	if cfg.Cron.Enabled {
		if _, err := runner.Add(cfg.Cron.Refresh, func(ctx context.Context) {
			f.Refresh(ctx)
		}); err != nil {
			log.Fatal("cron schedule invalid", zap.String("spec", cfg.Cron.Refresh), zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	handler := &server.FeedHandler{Feed: f, Logger: log}
	handler.Register(engine)

	srv := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: engine}
	go func() {
		log.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
}

func openStore(cfg config.CacheConfig) (cache.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "redis":
		return cache.NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), nil
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		path := cfg.Path
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(home, ".ballroom-calendar", "state.json")
		}
		return cache.NewFileStore(path)
	}
}
