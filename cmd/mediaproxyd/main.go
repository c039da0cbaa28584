// Command mediaproxyd runs the proxy delivery control daemon in the
// foreground: it owns the job queue, probes engine capabilities, and serves
// the HTTP control API that the CLI and external engines talk to.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"mediaproxy/internal/config"
	"mediaproxy/internal/daemon"
	"mediaproxy/internal/logging"
	"mediaproxy/internal/queue"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return
	}
	defer store.Close()

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("mediaproxyd shutting down")
	d.Stop()
}
