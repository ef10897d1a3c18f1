// gatewayserver is the client-facing relay. It refuses to boot without a
// live link to the game server; a gateway with nowhere to route is useless.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridgate/server/internal/config"
	"github.com/gridgate/server/internal/gateway"
	"github.com/gridgate/server/internal/logging"
	gonet "github.com/gridgate/server/internal/net"
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

	game, err := gonet.Dial(cfg.Gateway.GameAddress,
		cfg.Network.InQueueSize, cfg.Network.OutQueueSize, cfg.Network.WriteTimeout.Std(), log)
	if err != nil {
		return fmt.Errorf("game link: %w", err)
	}

	srv, err := gateway.New(cfg, log, game)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	return srv.Run(ctx)
}
