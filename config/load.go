package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/pxdgen/errors"
)

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	// configSources records which file set each key, filled while merging
	configSources map[string]SourceInfo
)

// Load reads the pxdgen configuration using Viper
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return initViper()
}

// LoadWithViper loads and validates configuration from a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from one file on top of the defaults,
// ignoring every other source. The format follows the file extension.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config in %s", configPath)
	}
	return cfg, nil
}

// UseFile replaces the file sources with a single explicit file; defaults
// and environment variables still apply. Used by the --config flag.
func UseFile(configPath string) error {
	mu.Lock()
	defer mu.Unlock()

	v := newViper()
	sources := make(map[string]SourceInfo)
	if err := mergeFile(v, configPath, SourceFlag, sources); err != nil {
		return err
	}
	globalConfig = nil
	viperInstance = v
	configSources = sources
	return nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	configSources = nil
}

// initViper initializes Viper with configuration sources and defaults.
// Callers hold mu.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := newViper()
	configSources = mergeConfigFiles(v)
	viperInstance = v
	return v
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// findProjectConfig searches for pxdgen.toml by walking up the directory tree
// from dir. Returns "" if none is found.
func findProjectConfig(dir string) string {
	for {
		path := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type candidate struct {
	source ConfigSource
	path   string
}

// configPaths lists the candidate files in precedence order, lowest first.
func configPaths() []candidate {
	paths := []candidate{{SourceSystem, "/etc/pxdgen/" + ProjectFileName}}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, candidate{SourceUser, filepath.Join(dir, "pxdgen", ProjectFileName)})
	}
	if wd, err := os.Getwd(); err == nil {
		if project := findProjectConfig(wd); project != "" {
			paths = append(paths, candidate{SourceProject, project})
		}
	}
	return paths
}

// mergeConfigFiles merges every existing config file into v, in precedence
// order. Merged values stay below environment variables. Unreadable files
// are skipped.
func mergeConfigFiles(v *viper.Viper) map[string]SourceInfo {
	sources := make(map[string]SourceInfo)
	for _, c := range configPaths() {
		if _, err := os.Stat(c.path); err != nil {
			continue
		}
		_ = mergeFile(v, c.path, c.source, sources)
	}
	return sources
}

func mergeFile(v *viper.Viper, path string, source ConfigSource, sources map[string]SourceInfo) error {
	tmp := viper.New()
	tmp.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		tmp.SetConfigType("toml")
	}
	if err := tmp.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	settings := tmp.AllSettings()
	if err := v.MergeConfigMap(settings); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", path)
	}
	for _, key := range flattenKeys(settings, "") {
		sources[key] = SourceInfo{Source: source, Path: path}
	}
	return nil
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}
