// Package config loads pxdgen settings with Viper.
//
// Sources, lowest precedence first: built-in defaults, the system file
// /etc/pxdgen/pxdgen.toml, the user file <user config dir>/pxdgen/pxdgen.toml,
// the nearest pxdgen.toml found walking up from the working directory, and
// PXDGEN_* environment variables (PXDGEN_GENERATE_JOBS for generate.jobs).
package config

// Config represents the pxdgen configuration
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate" yaml:"generate" json:"generate"`
	Cache    CacheConfig    `mapstructure:"cache" toml:"cache" yaml:"cache" json:"cache"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch" yaml:"watch" json:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log" yaml:"log" json:"log"`
}

// GenerateConfig configures .pxd generation
type GenerateConfig struct {
	// OutputDir receives generated files when a target names no output.
	// Empty writes next to the input.
	OutputDir string `mapstructure:"output_dir" toml:"output_dir" yaml:"output_dir" json:"output_dir"`
	// StubCimportPrefix is the Python package holding stub .pxd files
	// (e.g., "mypkg.stubs"). Empty disables stub cimports.
	StubCimportPrefix string `mapstructure:"stub_cimport_prefix" toml:"stub_cimport_prefix" yaml:"stub_cimport_prefix" json:"stub_cimport_prefix"`
	// Jobs bounds concurrent targets; 0 means one per CPU.
	Jobs int `mapstructure:"jobs" toml:"jobs" yaml:"jobs" json:"jobs"`
	// Manifest is the default target manifest for batch runs.
	Manifest string `mapstructure:"manifest" toml:"manifest" yaml:"manifest" json:"manifest"`
}

// CacheConfig configures the generated-output cache
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	// Dir overrides the cache location (default: <user cache dir>/pxdgen)
	Dir string `mapstructure:"dir" toml:"dir" yaml:"dir" json:"dir"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
	// Exec is a shell-quoted command run after each regeneration
	Exec string `mapstructure:"exec" toml:"exec" yaml:"exec" json:"exec"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" yaml:"json" json:"json"`
}
