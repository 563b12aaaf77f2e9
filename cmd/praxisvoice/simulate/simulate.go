// Package simulatecmder provides the simulate command for talking to the
// dialog engine from the terminal instead of a phone.
package simulatecmder

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/praxisvoice/pkg/bootstrap"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/cliui"
	"github.com/papercomputeco/praxisvoice/pkg/config"
	"github.com/papercomputeco/praxisvoice/pkg/dotdir"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
)

type simulateCommander struct {
	forwardNumber string
	callerID      string
	sqlitePath    string
	postgresDSN   string
	sheetsID      string
	knowledgePath string

	caller string
	reset  bool
	debug  bool
	logger *slog.Logger
}

// FlagKeys are the registered flags of the command.
var FlagKeys = []string{
	config.FlagForwardNumber,
	config.FlagCallerID,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagSheetsID,
	config.FlagKnowledge,
}

const simulateLongDesc string = `Simulate a phone call against the dialog engine.

Every line read from stdin is one caller turn. The practice's answers are
printed as they would be spoken. Transfers are acknowledged without dialing
anyone. The call log is written to the configured store (in-memory by
default) and printed when the call ends.

An interrupted simulation is saved in the .praxisvoice/ directory and
resumed by the next run. Use --reset to start a new call.

Examples:
  praxisvoice simulate
  praxisvoice simulate --forward-number +4930123456
  echo "Wann haben Sie geöffnet?" | praxisvoice simulate --reset`

const simulateShortDesc string = "Simulate a phone call in the terminal"

const defaultCaller = "+49 30 0000000"

func NewSimulateCmd() *cobra.Command {
	cmder := &simulateCommander{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: simulateShortDesc,
		Long:  simulateLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cfg, err := config.Resolve(cmd, config.Flags, FlagKeys)
			if err != nil {
				return err
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd, cfg, configDir)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagForwardNumber, &cmder.forwardNumber)
	config.AddStringFlag(cmd, config.Flags, config.FlagCallerID, &cmder.callerID)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagSheetsID, &cmder.sheetsID)
	config.AddStringFlag(cmd, config.Flags, config.FlagKnowledge, &cmder.knowledgePath)
	cmd.Flags().StringVar(&cmder.caller, "caller", defaultCaller, "Caller number of the simulated call")
	cmd.Flags().BoolVar(&cmder.reset, "reset", false, "Discard a saved simulation and start a new call")

	return cmd
}

func (c *simulateCommander) run(cmd *cobra.Command, cfg *config.Config, configDir string) error {
	level := logger.WithDebug(c.debug)
	c.logger = logger.New(level, logger.WithPretty(true), logger.WithWriter(cmd.ErrOrStderr()))

	engine, _, err := bootstrap.Engine(cfg, c.logger)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	var store calllog.Store
	open := func() error {
		store, err = bootstrap.Store(cmd.Context(), cfg.Storage, c.logger)
		return err
	}
	if interactive {
		err = cliui.Step(cmd.ErrOrStderr(), "Anrufprotokoll öffnen", open)
	} else {
		err = open()
	}
	if err != nil {
		return err
	}
	defer store.Close()

	sim := &simulator{
		engine:      engine,
		store:       store,
		sessions:    dotdir.NewManager(),
		configDir:   configDir,
		caller:      c.caller,
		in:          in,
		out:         cmd.OutOrStdout(),
		interactive: interactive,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       func() string { return "SIM-" + uuid.NewString() },
	}

	return sim.run(cmd.Context(), c.reset)
}
