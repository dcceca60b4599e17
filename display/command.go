// Package display formats command results for people (pterm) and for
// programs (JSON).
package display

import (
	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether cmd should print JSON: its own --json
// flag when set explicitly, otherwise the root's persistent --json.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		on, _ := cmd.Flags().GetBool("json")
		return on
	}
	on, _ := cmd.Root().PersistentFlags().GetBool("json")
	return on
}
