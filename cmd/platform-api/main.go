// Package main provides the BMad Platform API server implementation.
package main

import (
	"context"
	"os"

	"github.com/bmadhq/platform/pkg/catalog"
	"github.com/bmadhq/platform/pkg/cmd"
	"github.com/bmadhq/platform/pkg/framework"
	"github.com/bmadhq/platform/pkg/log"
	"github.com/bmadhq/platform/pkg/otelhelper"
	"github.com/bmadhq/platform/pkg/registry"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "platform-api",
		Usage:                 "Serve the SDLC framework catalog and workflow instances",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the shared catalog cache tier (empty disables it)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "framework-path",
				Usage:   "Path to the framework definition directory",
				Value:   "./bmad",
				Sources: cli.EnvVars("FRAMEWORK_PATH"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:     "jwt-secret",
				Usage:    "HMAC secret for bearer token validation",
				Required: true,
				Sources:  cli.EnvVars("JWT_SECRET"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OTLP trace export",
				Sources: cli.EnvVars("OTEL_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing BMad Platform API")

			if command.Bool("tracing") {
				if _, err := otelhelper.NewTracer(ctx, "platform-api"); err != nil {
					return err
				}
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			cache, err := cmd.NewCacheClient(command.String("redis-url"))
			if err != nil {
				return err
			}

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			loader := framework.NewLoader(logger, command.String("framework-path"))
			store := catalog.NewStore(logger, loader, cache)
			reg := registry.NewRegistry(logger, store)

			if _, err := store.Get(ctx); err != nil {
				logger.WarnContext(ctx, "Initial catalog load failed, serving will retry", "error", err)
			}

			api := NewAPI(
				logger,
				persistence,
				store,
				reg,
				eventBus,
				command.String("jwt-secret"),
			)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
