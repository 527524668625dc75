//go:build linux

// Command ranger-rpi runs a ranger on a Raspberry Pi with an HC-SR04 and an
// LED on GPIO
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/ranger"
	"github.com/merliot/sonar/ranger/rpi"
	"github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "/etc/sonar/ranger.yaml", "config file (YAML)")
	iface := flag.String("iface", "wlan0", "network interface to wait for")
	flag.Parse()

	cfg, err := ranger.LoadConfig(*configFile)
	if err != nil {
		logrus.Fatalf("Loading config: %s", err)
	}

	log, err := sonar.NewLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("Setting up logging: %s", err)
	}

	hw, err := rpi.Hardware(cfg.Pins, *iface)
	if err != nil {
		log.Fatal(err)
	}
	defer rpi.Close()

	r, err := ranger.New(cfg, hw, log)
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
