package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/pxdgen/config"
	"github.com/teranos/pxdgen/display"
)

var checkFlags runFlags

// CheckCmd verifies that generated files match their IR
var CheckCmd = &cobra.Command{
	Use:   "check [ir-file|dir ...]",
	Short: "Check that generated .pxd files are up to date",
	Long: `Regenerate in memory and compare with the files on disk. Banner lines
(the "# Generated by pxdgen" header) are ignored, so a new pxdgen version
alone does not make files stale.

Exit codes:
  0 - Files are up to date
  1 - Files are out of date or missing
  2 - Error during check

Examples:
  pxdgen check                  # Check every manifest target
  pxdgen check ir/ -o gen/      # Check gen/*.pxd against ir/*`,
	RunE: runCheck,
}

func init() {
	checkFlags.register(CheckCmd.Flags())
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	targets, err := collectTargets(args, checkFlags.manifestPath(cfg))
	if err != nil {
		return err
	}
	runner, err := checkFlags.runner(cmd, cfg)
	if err != nil {
		return err
	}

	res, err := runner.Check(cmd.Context(), targets)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		if err := display.WriteJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else {
		display.Check(cmd.OutOrStdout(), res)
	}
	return res.Err()
}
