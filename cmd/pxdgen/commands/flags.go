package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teranos/pxdgen/batch"
	"github.com/teranos/pxdgen/cache"
	"github.com/teranos/pxdgen/config"
	"github.com/teranos/pxdgen/logger"
	"github.com/teranos/pxdgen/version"
)

// runFlags are shared by the commands that render targets. Flags that are
// set override the configuration.
type runFlags struct {
	manifest   string
	outputDir  string
	stubPrefix string
	jobs       int
	noCache    bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.manifest, "manifest", "m", "", "Target manifest used when no inputs are given (default: generate.manifest)")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for generated files (default: next to each input)")
	fs.StringVar(&f.stubPrefix, "stub-prefix", "", "Python package holding stub .pxd files, e.g. mypkg.stubs")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "Targets rendered concurrently (0: one per CPU)")
	fs.BoolVar(&f.noCache, "no-cache", false, "Bypass the output cache")
}

func (f *runFlags) manifestPath(cfg *config.Config) string {
	if f.manifest != "" {
		return f.manifest
	}
	return cfg.Generate.Manifest
}

// runner builds a batch runner from the configuration and the flags that
// were set on cmd.
func (f *runFlags) runner(cmd *cobra.Command, cfg *config.Config) (*batch.Runner, error) {
	opts := batch.Options{
		Jobs:              cfg.Generate.Jobs,
		OutputDir:         cfg.Generate.OutputDir,
		StubCimportPrefix: cfg.Generate.StubCimportPrefix,
		Version:           version.Get().Version,
	}
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		opts.OutputDir = f.outputDir
	}
	if flags.Changed("stub-prefix") {
		opts.StubCimportPrefix = f.stubPrefix
	}
	if flags.Changed("jobs") {
		opts.Jobs = f.jobs
	}

	override := *cfg
	override.Generate.Jobs = opts.Jobs
	override.Generate.StubCimportPrefix = opts.StubCimportPrefix
	if err := override.Validate(); err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled && !f.noCache {
		c, err := cache.Open(cfg.Cache.Dir)
		if err != nil {
			logger.Warnw("output cache disabled", logger.FieldError, err)
		} else {
			opts.Cache = c
		}
	}
	return batch.NewRunner(opts), nil
}
