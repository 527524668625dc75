package sonar

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
)

func TestNewLoggerLevel(t *testing.T) {
	c := qt.New(t)

	log, err := NewLogger(LogConfig{Level: "debug"})
	c.Assert(err, qt.IsNil)
	c.Assert(log.GetLevel(), qt.Equals, logrus.DebugLevel)

	log, err = NewLogger(LogConfig{Level: "chatty"})
	c.Assert(err, qt.IsNil)
	c.Assert(log.GetLevel(), qt.Equals, logrus.InfoLevel)
}

func TestNewLoggerFile(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "sonar.log")

	log, err := NewLogger(LogConfig{Output: "file", FilePath: path})
	c.Assert(err, qt.IsNil)
	log.Info("hello")

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, "hello")

	_, err = NewLogger(LogConfig{Output: "file"})
	c.Assert(err, qt.IsNotNil)
}

func TestLoadYAML(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "cfg.yaml")
	c.Assert(os.WriteFile(path, []byte("level: warn\n"), 0600), qt.IsNil)

	cfg := LogConfig{Level: "info", Format: "text"}
	c.Assert(LoadYAML(path, &cfg), qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, LogConfig{Level: "warn", Format: "text"})

	c.Assert(LoadYAML(filepath.Join(c.TempDir(), "missing.yaml"), &cfg), qt.ErrorMatches, "reading config .*")
}

func TestGetEnv(t *testing.T) {
	c := qt.New(t)
	c.Setenv("SONAR_TEST_ENV", "set")
	c.Assert(GetEnv("SONAR_TEST_ENV", "default"), qt.Equals, "set")
	c.Assert(GetEnv("SONAR_TEST_ENV_UNSET", "default"), qt.Equals, "default")
}
