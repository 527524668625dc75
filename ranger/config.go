package ranger

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/merliot/sonar"
)

type ParseMode string

const (
	// ParseLegacy scans the response text for "threshold" and trusts
	// whatever number follows
	ParseLegacy ParseMode = "legacy"
	// ParseStrict decodes the response as JSON and ignores it unless the
	// threshold is a number
	ParseStrict ParseMode = "strict"
)

type PinConfig struct {
	LED     int `yaml:"led"`
	Trigger int `yaml:"trigger"`
	Echo    int `yaml:"echo"`
}

type MQTTConfig struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.  Empty turns the
	// mirror off.
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`
}

type Config struct {
	Id          string          `yaml:"id"`
	Model       string          `yaml:"model"`
	Name        string          `yaml:"name"`
	SSID        string          `yaml:"ssid"`
	Passphrase  string          `yaml:"passphrase"`
	ServerURL   string          `yaml:"server_url"`
	Threshold   float64         `yaml:"threshold"`
	Interval    time.Duration   `yaml:"interval"`
	LinkPoll    time.Duration   `yaml:"link_poll"`
	HTTPTimeout time.Duration   `yaml:"http_timeout"`
	ParseMode   ParseMode       `yaml:"parse_mode"`
	Pins        PinConfig       `yaml:"pins"`
	MQTT        MQTTConfig      `yaml:"mqtt"`
	Log         sonar.LogConfig `yaml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Id:          "esp32_1",
		Model:       "ranger",
		Name:        "ranger",
		ServerURL:   "http://localhost:5000/api/update",
		Threshold:   DefaultThreshold,
		Interval:    500 * time.Millisecond,
		LinkPoll:    500 * time.Millisecond,
		HTTPTimeout: 5 * time.Second,
		ParseMode:   ParseLegacy,
		Pins: PinConfig{
			LED:     2,
			Trigger: 23,
			Echo:    18,
		},
		MQTT: MQTTConfig{
			Topic: "sonar/readings",
		},
		Log: sonar.LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// LoadConfig returns the defaults, overlaid with the YAML file at path (if
// path is not empty), overlaid with SONAR_* environment variables
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := sonar.LoadYAML(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	c.Id = sonar.GetEnv("SONAR_DEVICE_ID", c.Id)
	c.SSID = sonar.GetEnv("SONAR_SSID", c.SSID)
	c.Passphrase = sonar.GetEnv("SONAR_PASS", c.Passphrase)
	c.ServerURL = sonar.GetEnv("SONAR_SERVER_URL", c.ServerURL)
	c.MQTT.Broker = sonar.GetEnv("SONAR_MQTT_BROKER", c.MQTT.Broker)
	c.Log.Level = sonar.GetEnv("SONAR_LOG_LEVEL", c.Log.Level)
	if v := sonar.GetEnv("SONAR_THRESHOLD", ""); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SONAR_THRESHOLD: %w", err)
		}
		c.Threshold = t
	}
	return nil
}

// Validate checks the config is usable.  The device id goes into the
// telemetry message unescaped, so it must be a valid id.
func (c Config) Validate() error {
	if !sonar.ValidId(c.Id) {
		return fmt.Errorf("invalid device id %q: use only [A-Za-z0-9_]", c.Id)
	}
	if !sonar.ValidId(c.Model) || !sonar.ValidId(c.Name) {
		return fmt.Errorf("invalid model %q or name %q", c.Model, c.Name)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server url %q: scheme must be http or https", c.ServerURL)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	if c.LinkPoll <= 0 {
		return fmt.Errorf("link_poll must be > 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be > 0")
	}
	switch c.ParseMode {
	case ParseLegacy, ParseStrict:
	default:
		return fmt.Errorf("parse_mode %q: want %q or %q", c.ParseMode, ParseLegacy, ParseStrict)
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt topic required with broker")
	}
	return nil
}
