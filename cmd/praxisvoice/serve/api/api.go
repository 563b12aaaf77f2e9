// Package apicmder provides the inspection API server cobra command.
package apicmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/api"
	"github.com/papercomputeco/praxisvoice/pkg/bootstrap"
	"github.com/papercomputeco/praxisvoice/pkg/config"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
)

type apiCommander struct {
	listen        string
	sqlitePath    string
	postgresDSN   string
	sheetsID      string
	knowledgePath string
	forwardNumber string
	callerID      string
	noMCP         bool

	debug  bool
	logger *slog.Logger
}

// FlagKeys are the registered flags of the command.
var FlagKeys = []string{
	config.FlagAPIListenStandalone,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagSheetsID,
	config.FlagKnowledge,
	config.FlagForwardNumber,
	config.FlagCallerID,
}

const apiLongDesc string = `Run the praxisvoice API server for inspecting call logs and trying the
dialog engine without a phone call. The same tools are served to MCP
clients on /mcp.`

const apiShortDesc string = "Run the praxisvoice API server"

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cmder.run(ctx, cfg)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListenStandalone, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagSheetsID, &cmder.sheetsID)
	config.AddStringFlag(cmd, config.Flags, config.FlagKnowledge, &cmder.knowledgePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagForwardNumber, &cmder.forwardNumber)
	config.AddStringFlag(cmd, config.Flags, config.FlagCallerID, &cmder.callerID)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the /mcp endpoint")

	return cmd
}

func (c *apiCommander) run(ctx context.Context, cfg *config.Config) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithService("praxisvoice-api"),
	)

	engine, _, err := bootstrap.Engine(cfg, c.logger)
	if err != nil {
		return err
	}

	store, err := bootstrap.Store(ctx, cfg.Storage, c.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	apiConfig := bootstrap.APIConfig(cfg)
	apiConfig.DisableMCP = c.noMCP

	server, err := api.NewServer(apiConfig, engine, store, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.logger.Info("shutting down API server")
		return server.Shutdown()
	}
}
