package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Program is an allow-listed local program that commands may execute.
type Program struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of programs.yaml.
type ConfigFile struct {
	Programs []Program `yaml:"programs" json:"programs"`
}

// LoadPrograms reads a configuration file (YAML or JSON) and returns the programs by name.
// A missing file yields an empty allow-list.
func LoadPrograms(path string) (map[string]Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Program{}, nil
		}
		return nil, fmt.Errorf("failed to read programs config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	programs := make(map[string]Program, len(cfg.Programs))
	for _, p := range cfg.Programs {
		if p.Name == "" || p.Command == "" {
			continue
		}
		programs[p.Name] = p
	}
	return programs, nil
}
