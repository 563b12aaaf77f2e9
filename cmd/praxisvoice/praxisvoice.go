// Package praxisvoicecmder
package praxisvoicecmder

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/praxisvoice/cmd/praxisvoice/config"
	kbcmder "github.com/papercomputeco/praxisvoice/cmd/praxisvoice/kb"
	servecmder "github.com/papercomputeco/praxisvoice/cmd/praxisvoice/serve"
	simulatecmder "github.com/papercomputeco/praxisvoice/cmd/praxisvoice/simulate"
	versioncmder "github.com/papercomputeco/praxisvoice/cmd/version"
)

const praxisvoiceLongDesc string = `Praxisvoice answers the phone line of a dental practice.

It classifies what callers say, forwards them to the front desk, takes
reschedule and cancellation requests and writes a log row per call.

Run services using:
  praxisvoice serve voice    Run the voice webhook server
  praxisvoice serve api      Run the inspection API server
  praxisvoice serve          Run both servers together

Try the dialog without a phone:
  praxisvoice simulate`

const praxisvoiceShortDesc string = "Praxisvoice - phone assistant for dental practices"

const defaultEnvFile = ".env"

func NewPraxisvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "praxisvoice",
		Short:         praxisvoiceShortDesc,
		Long:          praxisvoiceLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnvFile(envFile)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .praxisvoice/ config directory")
	cmd.PersistentFlags().String("env-file", "", "Load environment variables from this file (default: .env if present)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(simulatecmder.NewSimulateCmd())
	cmd.AddCommand(kbcmder.NewKBCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. An explicit path must exist; the default
// .env file is optional.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		return nil
	}

	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading env file %s: %w", defaultEnvFile, err)
	}
	return nil
}
