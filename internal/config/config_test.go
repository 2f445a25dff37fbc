package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yamlv3 "gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "bigquery-graph.json", cfg.Input)
	assert.Equal(t, "tests/bigquery/queries/real_sql_workloads.rs", cfg.Out)
	assert.Equal(t, "rust", cfg.Target)
	assert.Equal(t, 4, cfg.HashWidth)
	assert.Equal(t, "queries", cfg.Go.Package)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_OutFollowsTarget(t *testing.T) {
	cfg := &Config{Target: "go"}
	cfg.ApplyDefaults()
	assert.Equal(t, "tests/bigquery/queries/real_sql_workloads_test.go", cfg.Out)

	cfg = &Config{Target: "go", Out: "x.go"}
	cfg.ApplyDefaults()
	assert.Equal(t, "x.go", cfg.Out)

	var nilCfg *Config
	assert.NotPanics(t, func() { nilCfg.ApplyDefaults() })
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "go target", mutate: func(c *Config) { c.Target = "go" }},
		{name: "widest suffix", mutate: func(c *Config) { c.HashWidth = 32 }},
		{name: "missing input", mutate: func(c *Config) { c.Input = "" }, wantErr: "input is required"},
		{name: "missing out", mutate: func(c *Config) { c.Out = "" }, wantErr: "out is required"},
		{name: "unknown target", mutate: func(c *Config) { c.Target = "java" }, wantErr: `unsupported target "java"`},
		{name: "odd width", mutate: func(c *Config) { c.HashWidth = 5 }, wantErr: "hash_width must be an even number"},
		{name: "narrow width", mutate: func(c *Config) { c.HashWidth = 2 }, wantErr: "hash_width"},
		{name: "wide width", mutate: func(c *Config) { c.HashWidth = 34 }, wantErr: "hash_width"},
		{
			name:    "bad go package",
			mutate:  func(c *Config) { c.Target = "go"; c.Go.Package = "1pkg" },
			wantErr: "invalid go package name",
		},
		{
			name:   "bad go package ignored for rust",
			mutate: func(c *Config) { c.Go.Package = "1pkg" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCodegenOptions(t *testing.T) {
	cfg := Default()
	cfg.Target = "go"
	cfg.Go.ExecutorImport = "example.com/engine"

	opts := cfg.CodegenOptions()
	assert.Equal(t, "go", string(opts.Target))
	assert.Equal(t, "queries", opts.Package)
	assert.Equal(t, "example.com/engine", opts.ExecutorImport)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}\n"), 0o644))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, "", FindProjectRoot(t.TempDir()))
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefault(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "input: bigquery-graph.json\n" +
		"out: tests/bigquery/queries/real_sql_workloads.rs\n" +
		"target: rust\n" +
		"hash_width: 4\n" +
		"go:\n" +
		"  package: queries\n"
	assert.Equal(t, want, string(data))

	loaded := &Config{}
	require.NoError(t, yamlv3.Unmarshal(data, loaded))
	assert.Equal(t, Default(), loaded)

	_, err = WriteDefault(dir, false)
	assert.ErrorIs(t, err, ErrConfigExists)

	_, err = WriteDefault(dir, true)
	assert.NoError(t, err)
}
