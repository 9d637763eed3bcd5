package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"schoolfees/internal/app"
	"schoolfees/internal/config"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "feesctl",
		Short:        "feesctl - operator tool for the school fees service",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(bootstrapAdminCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(issuesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is the connected runtime a command works against.
type env struct {
	cfg      *config.Config
	db       *sql.DB
	redis    *redis.Client
	services *app.Services
}

func (e *env) Close() {
	if e.services != nil {
		e.services.Telemetry.Close()
	}
	if e.redis != nil {
		_ = e.redis.Close()
	}
	_ = e.db.Close()
}

// connect opens the database and, when reachable, Redis. The CLI runs
// without New Relic.
func connect(ctx context.Context, withServices bool) (*env, error) {
	cfg := config.Load()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := app.NewDatabase(dialCtx, cfg.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	e := &env{cfg: cfg, db: db}

	if !withServices {
		return e, nil
	}

	redisClient, err := app.NewRedisClient(dialCtx, cfg.Redis, nil)
	if err != nil {
		log.Printf("redis unavailable, continuing without it: %v", err)
	} else {
		e.redis = redisClient
	}

	services, err := app.NewServices(db, e.redis, nil, cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.services = services

	return e, nil
}
