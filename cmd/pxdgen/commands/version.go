package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/pxdgen/display"
	"github.com/teranos/pxdgen/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show pxdgen version information",
	Long:  `Display version, build time, commit hash, platform and the IR versions this binary reads.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		out := cmd.OutOrStdout()

		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(out, info)
		}
		fmt.Fprintln(out, info.String())
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		fmt.Fprintf(out, "IR versions: %s\n", info.IRVersions)
		return nil
	},
}
