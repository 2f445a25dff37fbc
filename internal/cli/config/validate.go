package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.OutputFormat != "" && !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("invalid configuration: output must be one of %s, got %q",
			strings.Join(OutputModes, ", "), c.OutputFormat)
	}
	return nil
}
