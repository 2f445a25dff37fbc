// Package config provides the generation settings shared by the CLI and the
// engine, decoupled from flag and environment handling.
package config

import (
	"fmt"

	"github.com/leapstack-labs/workloadgen/internal/codegen"
)

// Config holds the settings of one generation run.
type Config struct {
	Input     string   `koanf:"input" yaml:"input"`
	Out       string   `koanf:"out" yaml:"out"`
	Target    string   `koanf:"target" yaml:"target"`
	HashWidth int      `koanf:"hash_width" yaml:"hash_width"`
	Go        GoConfig `koanf:"go" yaml:"go"`
}

// GoConfig holds settings that only apply to the go target.
type GoConfig struct {
	Package        string `koanf:"package" yaml:"package"`
	ExecutorImport string `koanf:"executor_import" yaml:"executor_import,omitempty"`
}

// Validate checks the settings after defaults have been applied.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.Out == "" {
		return fmt.Errorf("out is required")
	}
	target, err := codegen.ParseTarget(c.Target)
	if err != nil {
		return err
	}
	if c.HashWidth < DefaultHashWidth || c.HashWidth > MaxHashWidth || c.HashWidth%2 != 0 {
		return fmt.Errorf("hash_width must be an even number between %d and %d, got %d",
			DefaultHashWidth, MaxHashWidth, c.HashWidth)
	}
	if target == codegen.TargetGo {
		if _, err := codegen.New(c.CodegenOptions()); err != nil {
			return err
		}
	}
	return nil
}

// CodegenOptions converts the settings into generator options.
func (c *Config) CodegenOptions() codegen.Options {
	return codegen.Options{
		Target:         codegen.Target(c.Target),
		Package:        c.Go.Package,
		ExecutorImport: c.Go.ExecutorImport,
	}
}
