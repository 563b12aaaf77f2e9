package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays all configuration keys and their current values from the
config.toml file stored in the .praxisvoice/ directory. Secret values
are masked unless --reveal is given.

Examples:
  praxisvoice config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir, reveal)
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show secret values in clear text")

	return cmd
}

func runList(w io.Writer, configDir string, reveal bool) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "Using config file: %s\n\n", target)
	} else {
		fmt.Fprint(w, "No config file found. Using default config.\n\n")
	}

	keys := config.ValidConfigKeys()

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			fmt.Fprintf(w, "%-*s = <not set>\n", maxLen, key)
		} else {
			fmt.Fprintf(w, "%-*s = %q\n", maxLen, key, display(key, value, reveal))
		}
	}

	return nil
}
