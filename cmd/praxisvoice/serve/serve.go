// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/praxisvoice/api"
	apicmder "github.com/papercomputeco/praxisvoice/cmd/praxisvoice/serve/api"
	voicecmder "github.com/papercomputeco/praxisvoice/cmd/praxisvoice/serve/voice"
	"github.com/papercomputeco/praxisvoice/pkg/bootstrap"
	"github.com/papercomputeco/praxisvoice/pkg/config"
	"github.com/papercomputeco/praxisvoice/voice"
)

type ServeCommander struct {
	voiceListen   string
	apiListen     string
	publicURL     string
	forwardNumber string
	callerID      string
	tokenSecret   string
	sqlitePath    string
	postgresDSN   string
	sheetsID      string
	knowledgePath string
	kafkaBrokers  string
	kafkaTopic    string
	workers       uint
	queueSize     uint

	debug  bool
	logger *slog.Logger
}

// FlagKeys are the registered flags of the command.
var FlagKeys = []string{
	config.FlagVoiceListen,
	config.FlagAPIListen,
	config.FlagPublicURL,
	config.FlagForwardNumber,
	config.FlagCallerID,
	config.FlagTokenSecret,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagSheetsID,
	config.FlagKnowledge,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagWorkers,
	config.FlagQueueSize,
}

const serveLongDesc string = `Run praxisvoice services.

Use subcommands to run individual services or all services together:
  praxisvoice serve          Run both the voice server and the API server
  praxisvoice serve voice    Run just the voice webhook server
  praxisvoice serve api      Run just the API server

Both servers share one dialog engine and one call log store. Logs are
printed to the terminal and, when a .praxisvoice directory exists, written
as JSON to serve.log inside it.`

const serveShortDesc string = "Run praxisvoice services"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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
			logFile, err := openServeLog(configDir)
			if err != nil {
				return err
			}
			if logFile != nil {
				defer logFile.Close()
			}
			cmder.logger = newServeLogger(cmder.debug, cmd.ErrOrStderr(), logFile)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cmder.run(ctx, cfg)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagVoiceListen, &cmder.voiceListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.apiListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublicURL, &cmder.publicURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagForwardNumber, &cmder.forwardNumber)
	config.AddStringFlag(cmd, config.Flags, config.FlagCallerID, &cmder.callerID)
	config.AddStringFlag(cmd, config.Flags, config.FlagTokenSecret, &cmder.tokenSecret)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagSheetsID, &cmder.sheetsID)
	config.AddStringFlag(cmd, config.Flags, config.FlagKnowledge, &cmder.knowledgePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &cmder.workers)
	config.AddUintFlag(cmd, config.Flags, config.FlagQueueSize, &cmder.queueSize)

	cmd.AddCommand(voicecmder.NewVoiceCmd())
	cmd.AddCommand(apicmder.NewAPICmd())

	return cmd
}

func (c *ServeCommander) run(ctx context.Context, cfg *config.Config) error {
	engine, _, err := bootstrap.Engine(cfg, c.logger)
	if err != nil {
		return err
	}

	// Create shared store
	store, err := bootstrap.Store(ctx, cfg.Storage, c.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := bootstrap.Publisher(cfg.EventStream, c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	voiceServer, err := voice.New(bootstrap.VoiceConfig(cfg), engine, store, publisher, c.logger)
	if err != nil {
		return fmt.Errorf("creating voice server: %w", err)
	}

	apiServer, err := api.NewServer(bootstrap.APIConfig(cfg), engine, store, c.logger)
	if err != nil {
		voiceServer.Close()
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := voiceServer.Run(); err != nil {
			return fmt.Errorf("voice server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := apiServer.Run(); err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	})

	// Either a signal or a failing server stops both.
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down")

		if err := apiServer.Shutdown(); err != nil {
			c.logger.Error("API server shutdown failed", "error", err)
		}
		if err := voiceServer.Close(); err != nil {
			c.logger.Error("voice server shutdown failed", "error", err)
		}
		return nil
	})

	return g.Wait()
}
