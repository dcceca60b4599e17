package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/pxdgen/config"
	"github.com/teranos/pxdgen/display"
	"github.com/teranos/pxdgen/errors"
)

var (
	generateFlags  runFlags
	generateStdout bool
)

// GenerateCmd renders IR files to .pxd files
var GenerateCmd = &cobra.Command{
	Use:     "generate [ir-file|dir ...]",
	Aliases: []string{"gen"},
	Short:   "Generate Cython .pxd files from header IR",
	Long: `Generate Cython .pxd declaration files from parsed header IR.

Inputs are IR files (.json, .yaml, .yml) or directories of IR files. Without
inputs the target manifest (pxdgen.targets.toml) is used:

  output_dir = "gen"
  stub_cimport_prefix = "mypkg.stubs"

  [[target]]
  input = "ir/node.json"
  output = "gen/node.pxd"   # optional

Declarations are ordered so every name is declared before use; scopes with
reference cycles are emitted in phases (forward declarations first).

Examples:
  pxdgen generate ir/node.json              # Write ir/node.pxd
  pxdgen generate ir/ -o gen/               # Every IR file in ir/
  pxdgen generate                           # Targets from pxdgen.targets.toml
  pxdgen generate ir/node.json --stdout     # Print instead of writing`,
	RunE: runGenerate,
}

func init() {
	generateFlags.register(GenerateCmd.Flags())
	GenerateCmd.Flags().BoolVar(&generateStdout, "stdout", false, "Print the output of a single input instead of writing it")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	targets, err := collectTargets(args, generateFlags.manifestPath(cfg))
	if err != nil {
		return err
	}
	runner, err := generateFlags.runner(cmd, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if generateStdout {
		if len(targets) != 1 {
			return errors.Newf("--stdout takes exactly one input, got %d", len(targets))
		}
		rd, err := runner.Render(cmd.Context(), targets[0])
		if err != nil {
			return err
		}
		_, err = out.Write(rd.Content)
		return err
	}

	outcomes, err := runner.Run(cmd.Context(), targets)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(out, outcomes)
	}
	return display.Outcomes(out, outcomes)
}
