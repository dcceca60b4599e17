package config

import (
	"regexp"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/pxdgen/errors"
)

var dottedModule = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Jobs: 0 = one per CPU, negative = invalid
	if c.Generate.Jobs < 0 {
		return errors.Newf("generate.jobs must be >= 0, got %d", c.Generate.Jobs)
	}

	if p := c.Generate.StubCimportPrefix; p != "" && !dottedModule.MatchString(p) {
		return errors.WithHint(
			errors.Newf("generate.stub_cimport_prefix %q is not a dotted module path", p),
			"use a Python package path such as mypkg.stubs",
		)
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.Exec != "" {
		if _, err := shellquote.Split(c.Watch.Exec); err != nil {
			return errors.Wrapf(err, "watch.exec %q is not a valid command line", c.Watch.Exec)
		}
	}

	return nil
}
