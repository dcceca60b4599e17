package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/pxdgen/cache"
	"github.com/teranos/pxdgen/config"
)

// CacheCmd manages the output cache
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the generated-output cache",
	Long: `pxdgen caches rendered output keyed by a digest of the IR file and the
options that affect rendering. The cache lives in $XDG_CACHE_HOME/pxdgen
unless cache.dir says otherwise; cache.enabled = false turns it off.`,
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Cleared %s", c.Dir()))
		return nil
	},
}

func init() {
	CacheCmd.AddCommand(cacheDirCmd)
	CacheCmd.AddCommand(cacheClearCmd)
}

func openCache() (*cache.Cache, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cache.Open(cfg.Cache.Dir)
}
