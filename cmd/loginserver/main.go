// loginserver is the account-facing entry point of the cluster. It owns the
// PostgreSQL account store and a persistent link to the world server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridgate/server/internal/config"
	"github.com/gridgate/server/internal/logging"
	"github.com/gridgate/server/internal/login"
	gonet "github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/persist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("GRIDGATE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(bootCtx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(bootCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	world, err := gonet.Dial(cfg.Login.WorldAddress,
		cfg.Network.InQueueSize, cfg.Network.OutQueueSize, cfg.Network.WriteTimeout.Std(), log)
	if err != nil {
		return fmt.Errorf("world link: %w", err)
	}

	srv, err := login.New(cfg, log, persist.NewAccountRepo(db), world)
	if err != nil {
		return fmt.Errorf("login server: %w", err)
	}
	return srv.Run(ctx)
}
