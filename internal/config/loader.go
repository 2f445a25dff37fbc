package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "workloadgen.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "workloadgen.yml"

// ErrConfigExists is returned by WriteDefault when a config file is present.
var ErrConfigExists = errors.New("config file already exists")

// FindConfigFile finds the config file in the given directory.
// Returns empty string if not found.
func FindConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// FindProjectRoot walks up from the given directory to find a directory
// containing workloadgen.yaml or workloadgen.yml.
// Returns empty string if not found.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for {
		if FindConfigFile(dir) != "" {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes a config file holding the defaults into dir and returns
// its path. An existing config file is only replaced when force is set.
func WriteDefault(dir string, force bool) (string, error) {
	if existing := FindConfigFile(dir); existing != "" && !force {
		return existing, fmt.Errorf("%w: %s", ErrConfigExists, existing)
	}

	data, err := Marshal(Default())
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}
