// Package config provides configuration management for the workloadgen CLI.
//
// It layers defaults, the workloadgen.yaml file, WORKLOADGEN_ environment
// variables and explicitly set flags on top of the shared generation settings
// from internal/config.
package config

import (
	sharedcfg "github.com/leapstack-labs/workloadgen/internal/config"
)

// GoConfig is an alias for the shared go target settings.
type GoConfig = sharedcfg.GoConfig

// Config holds all CLI configuration options. The generation settings are
// embedded and decoded from the top level of the config file.
type Config struct {
	sharedcfg.Config

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultInput     = sharedcfg.DefaultInput
	DefaultTarget    = sharedcfg.DefaultTarget
	DefaultGoPackage = sharedcfg.DefaultGoPackage
	DefaultHashWidth = sharedcfg.DefaultHashWidth
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// OutputModes lists the accepted values of the output setting.
var OutputModes = []string{"auto", "text", "markdown", "json"}
