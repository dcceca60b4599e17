package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/pxdgen/errors"
)

// Target is one IR file to render.
type Target struct {
	// Input is the IR file (.json, .yaml or .yml).
	Input string
	// Output is the .pxd path. Empty derives it from Input and the runner's
	// output directory.
	Output string
	// StubCimportPrefix overrides the runner's prefix when non-nil. A
	// pointer to "" disables stub cimports for this target.
	StubCimportPrefix *string
}

// Manifest is a pxdgen.targets.toml file:
//
//	output_dir = "gen"
//	stub_cimport_prefix = "mypkg.stubs"
//
//	[[target]]
//	input = "ir/node.json"
//	output = "gen/node.pxd"
type Manifest struct {
	Path    string
	Targets []Target
}

type manifestFile struct {
	OutputDir         string       `toml:"output_dir"`
	StubCimportPrefix *string      `toml:"stub_cimport_prefix"`
	Targets           []targetFile `toml:"target"`
}

type targetFile struct {
	Input             string  `toml:"input"`
	Output            string  `toml:"output"`
	StubCimportPrefix *string `toml:"stub_cimport_prefix"`
}

// LoadManifest reads a manifest and resolves its relative paths against the
// manifest's directory. Top-level settings fill in targets that omit them.
func LoadManifest(path string) (*Manifest, error) {
	var f manifestFile
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHintf(errors.Wrapf(err, "manifest %s not found", path),
				"create %s with [[target]] tables or pass IR files directly", filepath.Base(path))
		}
		return nil, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Newf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if len(f.Targets) == 0 {
		return nil, errors.Wrapf(errors.ErrNoTargets, "%s has no [[target]] tables", path)
	}

	root := filepath.Dir(path)
	outputDir := ""
	if f.OutputDir != "" {
		outputDir = resolve(root, f.OutputDir)
	}

	m := &Manifest{Path: path, Targets: make([]Target, 0, len(f.Targets))}
	for i, tf := range f.Targets {
		if strings.TrimSpace(tf.Input) == "" {
			return nil, errors.Newf("%s: target %d is missing input", path, i+1)
		}
		t := Target{
			Input:             resolve(root, tf.Input),
			StubCimportPrefix: tf.StubCimportPrefix,
		}
		switch {
		case tf.Output != "":
			t.Output = resolve(root, tf.Output)
		case outputDir != "":
			t.Output = OutputPath(t.Input, outputDir)
		}
		if t.StubCimportPrefix == nil {
			t.StubCimportPrefix = f.StubCimportPrefix
		}
		m.Targets = append(m.Targets, t)
	}
	return m, nil
}

func resolve(root, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// OutputPath derives the .pxd path for input: the input's base name with
// its extension replaced, in dir (or next to the input when dir is empty).
func OutputPath(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".pxd"
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}
