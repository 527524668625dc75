// Command hub collects readings from rangers and serves the dashboard
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/hub"
	"github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "", "config file (YAML)")
	flag.Parse()

	cfg, err := hub.LoadConfig(*configFile)
	if err != nil {
		logrus.Fatalf("Loading config: %s", err)
	}

	log, err := sonar.NewLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("Setting up logging: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := hub.NewMemStore(cfg.DefaultThreshold)
	if cfg.Redis.Addr != "" {
		store, err = hub.NewRedisStore(ctx, cfg.Redis, cfg.DefaultThreshold)
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("Keeping devices in Redis at %s", cfg.Redis.Addr)
	}

	h, err := hub.New(cfg, store, log)
	if err != nil {
		log.Fatalf("Creating hub: %s", err)
	}

	err = sonar.NewRunner(h, log).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error(err)
	}
}
