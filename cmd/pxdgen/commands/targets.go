package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/pxdgen/batch"
	"github.com/teranos/pxdgen/errors"
	"github.com/teranos/pxdgen/watch"
)

// collectTargets turns arguments into targets. Each argument is an IR file
// or a directory whose IR files are all taken (not recursively). With no
// arguments the manifest is read instead.
func collectTargets(args []string, manifest string) ([]batch.Target, error) {
	if len(args) == 0 {
		m, err := batch.LoadManifest(manifest)
		if err != nil {
			return nil, err
		}
		return m.Targets, nil
	}

	var targets []batch.Target
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read input %s", arg)
		}
		if !info.IsDir() {
			targets = append(targets, batch.Target{Input: arg})
			continue
		}
		files, err := irFilesIn(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			targets = append(targets, batch.Target{Input: f})
		}
	}
	if len(targets) == 0 {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrNoTargets, "no IR files in %s", strings.Join(args, ", ")),
			"IR files end in .json, .yaml or .yml")
	}
	return targets, nil
}

// irFilesIn lists the IR files directly inside dir, sorted, skipping
// hidden files.
func irFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !watch.IsIRFile(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// watchInputs returns what to watch: the arguments themselves, or the
// manifest's target inputs.
func watchInputs(args []string, targets []batch.Target) []string {
	if len(args) > 0 {
		return args
	}
	inputs := make([]string, len(targets))
	for i, t := range targets {
		inputs[i] = t.Input
	}
	return inputs
}

// selectChanged keeps the targets whose input is among changed, which holds
// absolute, cleaned paths.
func selectChanged(targets []batch.Target, changed []string) []batch.Target {
	set := make(map[string]bool, len(changed))
	for _, c := range changed {
		set[c] = true
	}
	var out []batch.Target
	for _, t := range targets {
		abs, err := filepath.Abs(t.Input)
		if err == nil && set[abs] {
			out = append(out, t)
		}
	}
	return out
}
