package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/pxdgen/batch"
	"github.com/teranos/pxdgen/config"
	"github.com/teranos/pxdgen/display"
	"github.com/teranos/pxdgen/watch"
)

var (
	watchFlags    runFlags
	watchExec     string
	watchDebounce time.Duration
)

// WatchCmd regenerates .pxd files when their IR changes
var WatchCmd = &cobra.Command{
	Use:   "watch [ir-file|dir ...]",
	Short: "Regenerate .pxd files whenever their IR changes",
	Long: `Generate every target once, then watch the inputs and regenerate the
targets whose IR file was written. New IR files in watched directories become
targets. Changes are debounced (watch.debounce_ms, default 300ms).

--exec runs a command after each successful regeneration, e.g. a Cython
build. It is split like a shell command line but not run through a shell.

Examples:
  pxdgen watch ir/ -o gen/
  pxdgen watch --exec "python setup.py build_ext --inplace"`,
	RunE: runWatch,
}

func init() {
	watchFlags.register(WatchCmd.Flags())
	WatchCmd.Flags().StringVar(&watchExec, "exec", "", "Command to run after each regeneration (default: watch.exec)")
	WatchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before regenerating (default: watch.debounce_ms)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	manifest := watchFlags.manifestPath(cfg)
	targets, err := collectTargets(args, manifest)
	if err != nil {
		return err
	}
	runner, err := watchFlags.runner(cmd, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	asJSON := display.ShouldOutputJSON(cmd)

	regenerate := func(ctx context.Context, targets []batch.Target) error {
		outcomes, err := runner.Run(ctx, targets)
		if err != nil {
			return err
		}
		if asJSON {
			return display.WriteJSON(out, outcomes)
		}
		return display.Outcomes(out, outcomes)
	}

	if err := regenerate(cmd.Context(), targets); err != nil {
		return err
	}

	opts := watch.Options{
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		Exec:     cfg.Watch.Exec,
		Stdout:   out,
		Stderr:   cmd.ErrOrStderr(),
	}
	if cmd.Flags().Changed("debounce") {
		opts.Debounce = watchDebounce
	}
	if cmd.Flags().Changed("exec") {
		opts.Exec = watchExec
	}

	inputs := watchInputs(args, targets)
	w, err := watch.New(inputs, func(ctx context.Context, changed []string) error {
		current, err := collectTargets(args, manifest)
		if err != nil {
			return err
		}
		selected := selectChanged(current, changed)
		if len(selected) == 0 {
			return nil
		}
		return regenerate(ctx, selected)
	}, opts)
	if err != nil {
		return err
	}
	defer w.Close()

	if !asJSON {
		fmt.Fprintln(out, pterm.Info.Sprintf("Watching %d input(s), press Ctrl+C to stop", len(inputs)))
	}
	return w.Run(cmd.Context())
}
