package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/openmusic/playlists-api/internal/api"
	"github.com/openmusic/playlists-api/internal/auth"
	"github.com/openmusic/playlists-api/internal/cache"
	"github.com/openmusic/playlists-api/internal/config"
	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
	"github.com/openmusic/playlists-api/internal/platform"
	"github.com/openmusic/playlists-api/internal/queue"
	"github.com/openmusic/playlists-api/internal/repository/postgres"
	"github.com/openmusic/playlists-api/internal/service/collaboration"
	"github.com/openmusic/playlists-api/internal/service/export"
	"github.com/openmusic/playlists-api/internal/service/playlist"
)

var log = logger.Component("server")

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	platform.ConfigureLogger(cfg.Log)
	if cfg.Auth.AccessTokenKey == "" {
		return errors.New("ACCESS_TOKEN_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := platform.OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to database")

	var store cache.Store = cache.NopStore{}
	redisClient, err := platform.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, running without cache", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
		log.Info("connected to redis")
	}

	awsCfg, err := platform.AWSConfig(ctx, cfg.Queue.Region, "", "")
	if err != nil {
		return err
	}
	publisher := queue.NewPublisher(
		sqs.NewFromConfig(awsCfg),
		map[string]string{domain.ExportQueue: cfg.Queue.ExportQueueURL},
		cfg.Queue.PublishTimeout(),
	)
	if cfg.Queue.ExportQueueURL == "" {
		log.Warn("no export queue configured, exports will fail with 503")
	}

	playlists := playlist.NewService(postgres.NewPlaylistRepo(db), nil, store, playlist.Options{
		SongsTTL:          cfg.Cache.SongsTTL(),
		InvalidateTimeout: cfg.Cache.InvalidateTimeout(),
		WriteTimeout:      cfg.Server.RequestTimeout(),
	})
	collabs := collaboration.NewService(postgres.NewCollaborationRepo(db), playlists)
	playlists.SetCollaboratorChecker(collabs)
	exports := export.NewService(playlists, publisher)

	h := api.NewHandlers(playlists, collabs, exports)
	h.AddHealthCheck("database", db.PingContext)
	if redisClient != nil {
		h.AddHealthCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	router := api.SetupRoutes(h, auth.NewVerifier(cfg.Auth), api.RouterOptions{
		RequestTimeout: cfg.Server.RequestTimeout(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
