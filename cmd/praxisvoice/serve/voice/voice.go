// Package voicecmder provides the voice webhook server cobra command.
package voicecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/pkg/bootstrap"
	"github.com/papercomputeco/praxisvoice/pkg/config"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
	"github.com/papercomputeco/praxisvoice/voice"
)

type voiceCommander struct {
	listen        string
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
	config.FlagVoiceListenStandalone,
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

const voiceLongDesc string = `Run the voice webhook server.

The voice platform posts every turn of a phone call to the server and
receives TwiML describing what to say and do next. Call logs are written
to the configured store in the background.`

const voiceShortDesc string = "Run the voice webhook server"

func NewVoiceCmd() *cobra.Command {
	cmder := &voiceCommander{}

	cmd := &cobra.Command{
		Use:   "voice",
		Short: voiceShortDesc,
		Long:  voiceLongDesc,
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

	config.AddStringFlag(cmd, config.Flags, config.FlagVoiceListenStandalone, &cmder.listen)
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

	return cmd
}

func (c *voiceCommander) run(ctx context.Context, cfg *config.Config) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithService("praxisvoice-voice"),
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

	publisher, err := bootstrap.Publisher(cfg.EventStream, c.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	server, err := voice.New(bootstrap.VoiceConfig(cfg), engine, store, publisher, c.logger)
	if err != nil {
		return fmt.Errorf("creating voice server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case err := <-errChan:
		server.Close()
		if err != nil {
			return fmt.Errorf("voice server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.logger.Info("shutting down voice server")
		return server.Close()
	}
}
