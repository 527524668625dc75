package sonar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads the YAML file at path into v.  Fields missing from the file
// keep whatever value v already holds, so fill v with defaults first.
func LoadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
