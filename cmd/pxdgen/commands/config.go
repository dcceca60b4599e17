package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/pxdgen/config"
	"github.com/teranos/pxdgen/display"
	"github.com/teranos/pxdgen/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect pxdgen configuration",
	Long: `Display pxdgen configuration settings.

Configuration sources (later overrides earlier):
  1. Built-in defaults
  2. System config (/etc/pxdgen/pxdgen.toml)
  3. User config (<user config dir>/pxdgen/pxdgen.toml)
  4. Project config (nearest pxdgen.toml, searching up from the current directory)
  5. Environment variables (PXDGEN_* prefix, e.g. PXDGEN_GENERATE_JOBS)
  6. Command line flags

--config replaces sources 2-4 with a single file.

Examples:
  pxdgen config show                  # Show current configuration
  pxdgen config show --format yaml    # Show configuration in YAML format
  pxdgen config show --sources        # Show where each setting comes from
  pxdgen config get generate.jobs     # Get specific config value`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., generate.jobs, cache.dir)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var (
	configFormat  string
	configSources bool
)

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, yaml, json")
	configShowCmd.Flags().BoolVar(&configSources, "sources", false, "List every setting with the source that set it")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if configSources {
		settings := config.Introspect()
		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(out, settings)
		}
		data := pterm.TableData{{"Key", "Value", "Source", "From"}}
		for _, s := range settings {
			value := fmt.Sprintf("%v", s.Value)
			if len(value) > 50 {
				value = value[:47] + "..."
			}
			data = append(data, []string{s.Key, value, string(s.Source), s.SourcePath})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	format := configFormat
	if display.ShouldOutputJSON(cmd) {
		format = "json"
	}
	data, err := config.Marshal(cfg, format)
	if err != nil {
		return err
	}
	if format != "json" {
		fmt.Fprintln(out, "# pxdgen configuration")
	}
	_, err = out.Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !config.GetViper().IsSet(key) {
		return errors.WithHint(
			errors.Newf("configuration key %q not found", key),
			"run 'pxdgen config show --sources' to list keys")
	}
	fmt.Fprintln(cmd.OutOrStdout(), config.Get(key))
	return nil
}
