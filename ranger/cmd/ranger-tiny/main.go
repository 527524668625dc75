//go:build tinygo

// Command ranger-tiny runs a ranger on a TinyGo Wi-Fi board.  Settings are
// baked in at build time:
//
//	tinygo flash -target=nano-rp2040 -ldflags="-X main.ssid=... -X main.pass=... -X main.serverURL=... -X main.deviceId=..."
package main

import (
	"context"
	"machine"
	"time"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/ranger"
	"github.com/merliot/sonar/ranger/tiny"
	"github.com/sirupsen/logrus"
)

var (
	ssid      string
	pass      string
	serverURL string
	deviceId  = "esp32_1"
)

const (
	ledPin     = machine.LED
	triggerPin = machine.D10
	echoPin    = machine.D9
)

func main() {
	// wait a bit for serial
	time.Sleep(2 * time.Second)

	cfg := ranger.DefaultConfig()
	cfg.Id = deviceId
	cfg.SSID, cfg.Passphrase = ssid, pass
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	log := logrus.StandardLogger()

	r, err := ranger.New(cfg, tiny.Hardware(ledPin, triggerPin, echoPin, ssid, pass), log)
	if err != nil {
		println("Creating ranger:", err.Error())
		select {}
	}

	if err := sonar.NewRunner(r, log).Run(context.Background()); err != nil {
		println(err.Error())
	}
}
