package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/pkg/cliui"
	"github.com/papercomputeco/praxisvoice/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .praxisvoice/ directory. Keys use dotted notation matching
the TOML section structure.

Examples:
  praxisvoice config set voice.forward_number +4930123456
  praxisvoice config set voice.public_url https://praxis.example.com
  praxisvoice config set eventstream.kafka_brokers kafka-1:9092,kafka-2:9092
  praxisvoice config set worker.num_workers 5`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runSet(w io.Writer, key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	printTarget(w, cfger.GetTarget())

	err = cfger.SetConfigValue(key, value)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(display(key, value, false)),
	)
	return nil
}
