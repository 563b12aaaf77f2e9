package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/pkg/cliui"
	"github.com/papercomputeco/praxisvoice/pkg/config"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file
stored in the .praxisvoice/ directory. Keys use dotted notation matching
the TOML section structure. Secret values are masked unless --reveal
is given.

Examples:
  praxisvoice config get voice.forward_number
  praxisvoice config get voice.token_secret --reveal`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd.OutOrStdout(), args[0], configDir, reveal)
		},
		ValidArgsFunction: completeKeys,
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show secret values in clear text")

	return cmd
}

func runGet(w io.Writer, key, configDir string, reveal bool) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	printTarget(w, cfger.GetTarget())

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.DimStyle.Render("<not set>"))
	} else {
		fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(display(key, value, reveal)))
	}

	return nil
}

func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}
