// Package configcmder provides the config command for managing persistent
// praxisvoice configuration stored in the .praxisvoice/ directory.
package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/pkg/config"
)

const configLongDesc string = `Manage persistent praxisvoice configuration.

Configuration is stored as config.toml in the .praxisvoice/ directory and
provides default values for command flags. CLI flags and PRAXISVOICE_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  voice.listen, voice.public_url, voice.forward_number, voice.caller_id,
  voice.language, voice.voice, voice.token_secret,
  api.listen,
  storage.sqlite_path, storage.postgres_dsn, storage.sheets_spreadsheet_id,
  storage.sheets_credentials_file, storage.sheets_sheet,
  knowledge.path,
  eventstream.kafka_brokers, eventstream.kafka_topic,
  worker.num_workers, worker.queue_size, worker.upsert_timeout

Use subcommands to get, set, or list configuration values:
  praxisvoice config set <key> <value>    Set a configuration value
  praxisvoice config get <key>            Get a configuration value
  praxisvoice config list                 List all configuration values

Examples:
  praxisvoice config set voice.forward_number +4930123456
  praxisvoice config set storage.sqlite_path calls.db
  praxisvoice config get voice.forward_number
  praxisvoice config list`

const configShortDesc string = "Manage persistent praxisvoice configuration"

const secretMask = "********"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// display masks secret values unless reveal is set.
func display(key, value string, reveal bool) string {
	if value != "" && !reveal && config.IsSecretKey(key) {
		return secretMask
	}
	return value
}
