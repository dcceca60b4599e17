// Package watch regenerates output when IR inputs change on disk.
package watch

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/pxdgen/errors"
	"github.com/teranos/pxdgen/logger"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Callback receives the IR files that changed since the last call, sorted.
type Callback func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the inputs must stay quiet before Callback runs.
	Debounce time.Duration
	// Exec is a shell-quoted command run after every successful callback.
	Exec string
	// Stdout and Stderr receive the Exec command's output (default: the
	// process's own).
	Stdout io.Writer
	Stderr io.Writer
}

// Watcher watches IR files, and directories of IR files, for writes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	callback Callback
	debounce time.Duration
	exec     []string
	stdout   io.Writer
	stderr   io.Writer
	logger   *zap.SugaredLogger

	files map[string]bool // watched IR files
	dirs  map[string]bool // directories whose IR files are all watched
}

// IsIRFile reports whether path has an IR file extension.
func IsIRFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// New watches inputs, each an IR file or a directory. Files are watched
// through their parent directory so editors that replace files by rename
// keep being seen.
func New(inputs []string, cb Callback, opts Options) (*Watcher, error) {
	if len(inputs) == 0 {
		return nil, errors.ErrNoTargets
	}
	w := &Watcher{
		callback: cb,
		debounce: opts.Debounce,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		logger:   logger.ComponentLogger("watch"),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.stderr == nil {
		w.stderr = os.Stderr
	}
	if opts.Exec != "" {
		args, err := shellquote.Split(opts.Exec)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid exec command %q", opts.Exec)
		}
		w.exec = args
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w.fsw = fsw

	watched := make(map[string]bool)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", in)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "cannot watch %s", in)
		}
		dir := abs
		if info.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		watched[dir] = true
	}
	return w, nil
}

// Run delivers debounced changes to the callback until ctx is done or the
// watcher is closed. Callback and Exec failures are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = logger.WithComponent(ctx, "watch")
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugw("change detected", logger.FieldPath, event.Name, "op", event.Op.String())
			pending[filepath.Clean(event.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			w.dispatch(ctx, changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, changed []string) {
	start := time.Now()
	if err := w.callback(ctx, changed); err != nil {
		w.logger.Errorw("regeneration failed",
			logger.FieldCount, len(changed),
			logger.FieldError, err)
		return
	}
	w.logger.Infow("regenerated",
		logger.FieldCount, len(changed),
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if len(w.exec) > 0 {
		if err := w.runExec(ctx); err != nil {
			w.logger.Errorw("exec command failed", "command", strings.Join(w.exec, " "), logger.FieldError, err)
		}
	}
}

func (w *Watcher) runExec(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, w.exec[0], w.exec[1:]...)
	cmd.Stdout = w.stdout
	cmd.Stderr = w.stderr
	return cmd.Run()
}

// relevant keeps writes and creations of watched IR files. Chmod and
// removal never trigger regeneration.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] && IsIRFile(name) && !strings.HasPrefix(filepath.Base(name), ".")
}

// Close stops watching. Run returns once its event channel closes.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
