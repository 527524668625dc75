package hub

import (
	"fmt"

	"github.com/merliot/sonar"
)

type RedisConfig struct {
	// Addr of the Redis server.  Empty keeps devices in memory.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type Config struct {
	Id               string          `yaml:"id"`
	Model            string          `yaml:"model"`
	Name             string          `yaml:"name"`
	Addr             string          `yaml:"addr"`
	TLSHost          string          `yaml:"tls_host"`
	User             string          `yaml:"user"`
	Passwd           string          `yaml:"passwd"`
	DefaultThreshold float64         `yaml:"default_threshold"`
	Presets          []float64       `yaml:"presets"`
	Templates        string          `yaml:"templates"`
	Redis            RedisConfig     `yaml:"redis"`
	Log              sonar.LogConfig `yaml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Id:               "hub",
		Model:            "hub",
		Name:             "hub",
		Addr:             ":5000",
		DefaultThreshold: 50.0,
		Presets:          []float64{10, 30, 50, 70},
		Redis: RedisConfig{
			Prefix: "sonar",
		},
		Log: sonar.LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// LoadConfig returns the defaults, overlaid with the YAML file at path (if
// path is not empty), overlaid with HUB_* environment variables
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := sonar.LoadYAML(path, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.Addr = sonar.GetEnv("HUB_ADDR", cfg.Addr)
	cfg.User = sonar.GetEnv("HUB_USER", cfg.User)
	cfg.Passwd = sonar.GetEnv("HUB_PASSWD", cfg.Passwd)
	cfg.Redis.Addr = sonar.GetEnv("HUB_REDIS_ADDR", cfg.Redis.Addr)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !sonar.ValidId(c.Id) || !sonar.ValidId(c.Model) || !sonar.ValidId(c.Name) {
		return fmt.Errorf("invalid id %q, model %q or name %q", c.Id, c.Model, c.Name)
	}
	if c.Addr == "" && c.TLSHost == "" {
		return fmt.Errorf("addr or tls_host required")
	}
	if c.User != "" && c.Passwd == "" {
		return fmt.Errorf("passwd required with user")
	}
	return nil
}
