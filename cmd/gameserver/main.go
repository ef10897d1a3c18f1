// gameserver runs the authoritative simulation: zone grid, monster AI and
// combat, all behind a single game loop goroutine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridgate/server/internal/config"
	"github.com/gridgate/server/internal/game"
	"github.com/gridgate/server/internal/logging"
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

	srv, err := game.New(cfg, log)
	if err != nil {
		return fmt.Errorf("game server: %w", err)
	}
	return srv.Run(ctx)
}
