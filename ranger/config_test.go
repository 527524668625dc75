package ranger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestDefaultConfig(t *testing.T) {
	c := qt.New(t)
	cfg := DefaultConfig()
	c.Assert(cfg.Validate(), qt.IsNil)
	c.Assert(cfg.Threshold, qt.Equals, 50.0)
	c.Assert(cfg.Interval, qt.Equals, 500*time.Millisecond)
	c.Assert(cfg.ParseMode, qt.Equals, ParseLegacy)
}

func TestLoadConfig(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "ranger.yaml")
	err := os.WriteFile(path, []byte(`
id: garage_1
server_url: http://192.168.1.10:5000/api/update
interval: 1s
parse_mode: strict
pins:
  led: 17
`), 0600)
	c.Assert(err, qt.IsNil)
	c.Setenv("SONAR_THRESHOLD", "42.5")
	c.Setenv("SONAR_SSID", "home")

	cfg, err := LoadConfig(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Id, qt.Equals, "garage_1")
	c.Assert(cfg.ServerURL, qt.Equals, "http://192.168.1.10:5000/api/update")
	c.Assert(cfg.Interval, qt.Equals, time.Second)
	c.Assert(cfg.ParseMode, qt.Equals, ParseStrict)
	c.Assert(cfg.Pins, qt.Equals, PinConfig{LED: 17, Trigger: 23, Echo: 18})
	c.Assert(cfg.Threshold, qt.Equals, 42.5)
	c.Assert(cfg.SSID, qt.Equals, "home")
	c.Assert(cfg.LinkPoll, qt.Equals, 500*time.Millisecond)
}

func TestLoadConfigBadEnv(t *testing.T) {
	c := qt.New(t)
	c.Setenv("SONAR_THRESHOLD", "fifty")
	_, err := LoadConfig("")
	c.Assert(err, qt.ErrorMatches, "SONAR_THRESHOLD: .*")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    string
	}{
		{"bad id", func(cfg *Config) { cfg.Id = "esp-32" }, `invalid device id .*`},
		{"empty id", func(cfg *Config) { cfg.Id = "" }, `invalid device id .*`},
		{"bad scheme", func(cfg *Config) { cfg.ServerURL = "ftp://x/y" }, `server url .*scheme.*`},
		{"zero interval", func(cfg *Config) { cfg.Interval = 0 }, `interval must be > 0`},
		{"zero poll", func(cfg *Config) { cfg.LinkPoll = 0 }, `link_poll must be > 0`},
		{"zero timeout", func(cfg *Config) { cfg.HTTPTimeout = 0 }, `http_timeout must be > 0`},
		{"parse mode", func(cfg *Config) { cfg.ParseMode = "lenient" }, `parse_mode .*`},
		{"mqtt topic", func(cfg *Config) { cfg.MQTT = MQTTConfig{Broker: "tcp://b:1883"} }, `mqtt topic .*`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			cfg := DefaultConfig()
			test.modify(&cfg)
			c.Assert(cfg.Validate(), qt.ErrorMatches, test.err)
		})
	}
}

func TestSampleConfig(t *testing.T) {
	c := qt.New(t)
	cfg, err := LoadConfig("../configs/ranger.yaml")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Name, qt.Equals, "hallway")
	c.Assert(cfg.HTTPTimeout, qt.Equals, 5*time.Second)
	c.Assert(cfg.Pins.LED, qt.Equals, 17)

	// ids the sample config warns about
	for _, id := range []string{"esp32-1", "kitchen.1"} {
		c.Setenv("SONAR_DEVICE_ID", id)
		_, err := LoadConfig("../configs/ranger.yaml")
		c.Assert(err, qt.ErrorMatches, `invalid device id .*`)
	}
}
