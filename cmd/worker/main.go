package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/openmusic/playlists-api/internal/cache"
	"github.com/openmusic/playlists-api/internal/config"
	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/export"
	"github.com/openmusic/playlists-api/internal/pkg/distlock"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
	"github.com/openmusic/playlists-api/internal/platform"
	"github.com/openmusic/playlists-api/internal/queue"
	"github.com/openmusic/playlists-api/internal/repository/postgres"
	"github.com/openmusic/playlists-api/internal/service/playlist"
)

var log = logger.Component("worker")

// exportLockTTL bounds how long one delivery attempt may hold a message.
const exportLockTTL = 5 * time.Minute

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to YAML config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error("worker exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	platform.ConfigureLogger(cfg.Log)
	if cfg.Queue.ExportQueueURL == "" {
		return errors.New("SQS_EXPORT_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := platform.OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var store cache.Store = cache.NopStore{}
	redisClient, err := platform.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using advisory locks", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
	}

	queueCfg, err := platform.AWSConfig(ctx, cfg.Queue.Region, "", "")
	if err != nil {
		return err
	}
	mailCfg, err := platform.AWSConfig(ctx, cfg.Mail.Region, cfg.Mail.AccessKey, cfg.Mail.SecretKey)
	if err != nil {
		return err
	}

	playlists := playlist.NewService(postgres.NewPlaylistRepo(db), nil, store, playlist.Options{
		SongsTTL:          cfg.Cache.SongsTTL(),
		InvalidateTimeout: cfg.Cache.InvalidateTimeout(),
	})

	processor := export.NewProcessor(
		playlists,
		export.NewSESMailer(sesv2.NewFromConfig(mailCfg), cfg.Mail.FromEmail, cfg.Mail.FromName),
		distlock.NewFactory(redisClient, db, "export:", exportLockTTL),
		store,
	)

	consumer := queue.NewConsumer(sqs.NewFromConfig(queueCfg), queue.ConsumerConfig{
		QueueURL:    cfg.Queue.ExportQueueURL,
		Topic:       domain.ExportQueue,
		MaxMessages: cfg.Queue.MaxMessages,
		WaitSeconds: cfg.Queue.WaitTimeSeconds,
	}, processor)
	consumer.Start(ctx)

	<-ctx.Done()
	log.Info("shutting down")
	consumer.Stop()
	return nil
}
