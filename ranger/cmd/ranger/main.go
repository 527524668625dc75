// Command ranger runs a ranger on simulated hardware
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/ranger"
	"github.com/merliot/sonar/ranger/demo"
	"github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "", "config file (YAML)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "simulated sensor seed")
	flag.Parse()

	cfg, err := ranger.LoadConfig(*configFile)
	if err != nil {
		logrus.Fatalf("Loading config: %s", err)
	}

	log, err := sonar.NewLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("Setting up logging: %s", err)
	}

	r, err := ranger.New(cfg, demo.Hardware(*seed, log), log)
	if err != nil {
		log.Fatalf("Creating ranger: %s", err)
	}

	if cfg.MQTT.Broker != "" {
		mirror, err := ranger.NewMQTTMirror(cfg.MQTT, cfg.Id, log)
		if err != nil {
			log.Fatalf("Creating MQTT mirror: %s", err)
		}
		defer mirror.Close()
		r.SetMirror(mirror)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sonar.NewRunner(r, log).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error(err)
	}
}
