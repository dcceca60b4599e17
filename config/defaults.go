package config

import "github.com/spf13/viper"

// Default values
const (
	DefaultManifest   = "pxdgen.targets.toml"
	DefaultDebounceMS = 300
	ProjectFileName   = "pxdgen.toml"
	EnvPrefix         = "PXDGEN"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.output_dir", "")
	v.SetDefault("generate.stub_cimport_prefix", "")
	v.SetDefault("generate.jobs", 0)
	v.SetDefault("generate.manifest", DefaultManifest)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", "")

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
	v.SetDefault("watch.exec", "")

	v.SetDefault("log.json", false)
}
