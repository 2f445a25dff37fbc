package config

import (
	"path"

	"github.com/leapstack-labs/workloadgen/internal/codegen"
	"github.com/leapstack-labs/workloadgen/internal/fixture"
)

// Default configuration values.
const (
	DefaultInput     = "bigquery-graph.json"
	DefaultOutDir    = "tests/bigquery/queries"
	DefaultOutStem   = "real_sql_workloads"
	DefaultTarget    = string(codegen.TargetRust)
	DefaultGoPackage = codegen.DefaultPackage
	DefaultHashWidth = fixture.DefaultHashWidth
	MaxHashWidth     = 32
)

// DefaultOut returns the default artifact path for a target.
func DefaultOut(target string) string {
	t, err := codegen.ParseTarget(target)
	if err != nil {
		t = codegen.TargetRust
	}
	return path.Join(DefaultOutDir, DefaultOutStem+t.Extension())
}

// Default returns a Config holding every default value.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields. The output path default depends on the
// target, so the target is defaulted first.
func (c *Config) ApplyDefaults() {
	if c == nil {
		return
	}
	if c.Input == "" {
		c.Input = DefaultInput
	}
	if c.Target == "" {
		c.Target = DefaultTarget
	}
	if c.Out == "" {
		c.Out = DefaultOut(c.Target)
	}
	if c.HashWidth == 0 {
		c.HashWidth = DefaultHashWidth
	}
	if c.Go.Package == "" {
		c.Go.Package = DefaultGoPackage
	}
}
