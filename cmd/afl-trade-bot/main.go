package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pmurley/afl-trade-bot/internal/archive"
	"github.com/pmurley/afl-trade-bot/internal/bot"
	"github.com/pmurley/afl-trade-bot/internal/cache"
	"github.com/pmurley/afl-trade-bot/internal/config"
	"github.com/pmurley/afl-trade-bot/internal/playerdb"
	"github.com/pmurley/afl-trade-bot/internal/recommender"
	"github.com/pmurley/afl-trade-bot/internal/scheduler"
	"github.com/pmurley/afl-trade-bot/internal/server"
	"github.com/pmurley/afl-trade-bot/internal/service"
	"github.com/pmurley/afl-trade-bot/internal/storage"
	"github.com/pmurley/afl-trade-bot/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	log := logger.NewWithOptions(cfg.LogLevel, cfg.LogPretty, os.Stdout)

	teams, closeTeams, err := openTeamStore(cfg)
	if err != nil {
		log.Fatal("Failed to open team store:", err)
	}
	defer closeTeams()

	history, err := storage.NewHistoryStorage(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to open history log:", err)
	}

	poolCache := cache.New(cfg.CacheDuration)
	poolClient := playerdb.NewClient(cfg.PlayerPoolSource)

	svc := service.New(service.Options{
		Recommender:           recommender.New(cfg.Thresholds),
		Teams:                 teams,
		History:               history,
		Pool:                  poolCache,
		Loader:                poolClient,
		DefaultMaxRookiePrice: cfg.DefaultMaxRookiePrice,
		Logger:                log.With("component", "service"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if poolClient.Configured() {
		log.Info("Loading player pool from", poolClient.Source())
		if _, err := svc.ReloadPool(ctx); err != nil {
			log.Error("Failed to load initial player pool:", err)
		}
	} else {
		log.Info("No PLAYER_POOL_SOURCE set; recommendations search the submitted team")
	}

	sched := scheduler.New(log.Zerolog())
	if poolClient.Configured() {
		job := scheduler.NewPoolRefreshJob(poolClient, poolCache, log.Zerolog())
		if err := sched.AddJob(cfg.PoolRefreshSchedule, job); err != nil {
			log.Fatal("Invalid POOL_REFRESH_SCHEDULE:", err)
		}
	}
	if cfg.Archive.Enabled() {
		uploader, err := archive.NewS3Uploader(ctx, archive.Config{
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			log.Fatal("Failed to configure history archive:", err)
		}
		if err := sched.AddJob(cfg.Archive.Schedule, scheduler.NewArchiveJob(uploader, history)); err != nil {
			log.Fatal("Invalid ARCHIVE_SCHEDULE:", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:        cfg.HTTPPort,
		Log:         log.Zerolog(),
		Service:     svc,
		CORSOrigins: cfg.CORSOrigins,
		MCPAPIKey:   cfg.MCPAPIKey,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.DiscordToken != "" {
		b, err := bot.New(cfg, log.With("component", "discord"), svc)
		if err != nil {
			log.Fatal("Failed to create bot:", err)
		}
		if err := b.Start(); err != nil {
			log.Fatal("Failed to start bot:", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return b.Stop()
		})
	} else {
		log.Info("DISCORD_TOKEN not set; Discord bot disabled")
	}

	log.Info("AFL trade bot is running. Press CTRL+C to exit.")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Error during shutdown:", err)
	}
	log.Info("Shutting down...")
}

func openTeamStore(cfg *config.Config) (storage.TeamRepository, func(), error) {
	if cfg.TeamStore == "sqlite" {
		s, err := storage.NewSQLiteTeamStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}

	s, err := storage.NewJSONTeamStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}
