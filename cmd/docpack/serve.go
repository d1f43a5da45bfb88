package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/docpack/internal/db"
	"github.com/jonathan/docpack/internal/progress"
	"github.com/jonathan/docpack/internal/server"
	"github.com/jonathan/docpack/internal/server/ratelimit"
)

var (
	serveFlags       commonFlags
	servePort        int
	serveNoRateLimit bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that generates document packages on request, streams progress
over Server-Sent Events and, when a database is configured, stores and serves results.

When redis_addr is configured, progress snapshots are also published to redis_channel.`,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveNoRateLimit, "no-rate-limit", false, "Disable rate limiting of generation endpoints")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := serveFlags.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	a, err := buildApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	deps := server.Deps{
		Generator: a.orchestrator,
		Metrics:   a.metrics,
		Logger:    a.logger,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		deps.Store = database
	} else {
		a.logger.Warn("no database configured, packages will not be stored")
	}

	if cfg.RedisAddr != "" {
		rdb, err := progress.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		deps.Publisher = rdb
	}

	limits := ratelimit.DefaultConfig()
	limits.Enabled = !serveNoRateLimit

	srv, err := server.New(server.Config{
		Port:         cfg.Port,
		RedisChannel: cfg.RedisChannel,
		RateLimit:    limits,
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
