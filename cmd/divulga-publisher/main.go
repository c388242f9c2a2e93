package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"

	"github.com/getdivulga/divulga/pkg/cmd"
	"github.com/getdivulga/divulga/pkg/log"
	"github.com/getdivulga/divulga/pkg/otelhelper"
	"github.com/getdivulga/divulga/pkg/publisher"
)

func main() {
	command := &cli.Command{
		Name:                  "divulga-publisher",
		Usage:                 "Start the publishing engine that fires due schedules",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "publisher-id",
				Aliases: []string{"id"},
				Usage:   "Custom publisher ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("PUBLISHER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "platform",
				Usage:   "Platform connector to post through (facebook, log)",
				Value:   "log",
				Sources: cli.EnvVars("PLATFORM"),
			},
			&cli.StringFlag{
				Name:    "platform-config",
				Usage:   "Platform connector configuration as JSON",
				Value:   "{}",
				Sources: cli.EnvVars("PLATFORM_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "poll-cron",
				Usage:   "Cron expression for the due schedule poll cadence",
				Value:   publisher.DefaultPollCron,
				Sources: cli.EnvVars("POLL_CRON"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the multi-instance firing lock (optional)",
				Value:   "",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "lock-ttl",
				Usage:   "TTL for the firing lock",
				Value:   2 * time.Minute,
				Sources: cli.EnvVars("LOCK_TTL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			publisherID := command.String("publisher-id")
			if publisherID == "" {
				publisherID = fmt.Sprintf("publisher-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("divulga-publisher").With("publisher_id", publisherID)
			logger.Info("Initializing Divulga publisher")

			tracer, err := otelhelper.NewTracer(ctx, "divulga-publisher")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "divulga-publisher", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			var platformConfig map[string]any
			if err := json.Unmarshal([]byte(command.String("platform-config")), &platformConfig); err != nil {
				return fmt.Errorf("invalid platform-config JSON: %w", err)
			}

			registry := cmd.NewPlatformRegistry(logger)

			connector, err := registry.Create(command.String("platform"), platformConfig)
			if err != nil {
				return err
			}

			var locker *publisher.Locker

			if redisURL := command.String("redis-url"); redisURL != "" {
				opts, err := redis.ParseURL(redisURL)
				if err != nil {
					return fmt.Errorf("invalid redis URL: %w", err)
				}

				locker = publisher.NewLocker(redis.NewClient(opts))
			}

			engine, err := publisher.NewEngine(publisher.Config{
				ID:          publisherID,
				Logger:      logger,
				Persistence: persistence,
				Connector:   connector,
				EventBus:    eventBus,
				Tracer:      tracer,
				Locker:      locker,
				PollCron:    command.String("poll-cron"),
				LockTTL:     command.Duration("lock-ttl"),
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := engine.Run(runCtx); err != nil && runCtx.Err() == nil {
				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
