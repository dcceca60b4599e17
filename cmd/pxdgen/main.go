package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/pxdgen/cmd/pxdgen/commands"
	"github.com/teranos/pxdgen/config"
	"github.com/teranos/pxdgen/errors"
	"github.com/teranos/pxdgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pxdgen",
	Short: "Generate Cython .pxd declarations from C/C++ header IR",
	Long: `pxdgen turns parsed C/C++ header IR into Cython .pxd declaration files.

Declarations are emitted in declare-before-use order. Structs that refer to
each other through pointers are split into forward declarations and bodies.

Available commands:
  generate - Write .pxd files for IR files or manifest targets
  check    - Verify generated files are up to date
  watch    - Regenerate on IR changes
  config   - Inspect configuration
  cache    - Manage the output cache
  version  - Show version information

Examples:
  pxdgen generate ir/node.json        # Write ir/node.pxd
  pxdgen generate                     # Targets from pxdgen.targets.toml
  pxdgen check                        # CI: fail when .pxd files are stale`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")
		if err := commands.ApplyColor(color); err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			if err := config.UseFile(path); err != nil {
				return err
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(cfg.Log.JSON, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().String("config", "", "Use this config file instead of the system, user and project files")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().String("color", "auto", "Colorize output (auto|on|off)")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.CacheCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	pterm.Error.WithWriter(os.Stderr).Println(err.Error())
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintln(os.Stderr, "hint:", hint)
	}
	os.Exit(exitCode(err))
}

// exitCode follows the check command's contract: 1 for stale output, 2 for
// everything else.
func exitCode(err error) int {
	if errors.IsOutOfDateError(err) {
		return 1
	}
	return 2
}
