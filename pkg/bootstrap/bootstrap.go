// Package bootstrap builds the long-lived collaborators of praxisvoice
// commands from the resolved configuration: the dialog engine, the call-log
// store and the turn event publisher.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/praxisvoice/api"
	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/inmemory"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/postgres"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/sheets"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/sqlite"
	"github.com/papercomputeco/praxisvoice/pkg/config"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream/kafka"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream/nop"
	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
	"github.com/papercomputeco/praxisvoice/voice"
)

// Engine loads the knowledge base and builds the dialog engine.
func Engine(cfg *config.Config, logger *slog.Logger) (*callflow.Engine, *knowledge.Base, error) {
	kb, err := knowledge.Load(cfg.Knowledge.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	if cfg.Knowledge.Path != "" {
		logger.Info("using knowledge base file", "path", cfg.Knowledge.Path)
	}
	if cfg.Voice.ForwardNumber == "" {
		logger.Warn("no forward number configured, transfers are refused")
	}

	engine := callflow.NewEngine(kb, callflow.Config{
		ForwardTarget: cfg.Voice.ForwardNumber,
		CallerID:      cfg.Voice.CallerID,
	})
	return engine, kb, nil
}

// Store opens the configured call-log store. The first configured backend
// wins in the order postgres, sheets, sqlite; without any the store is in
// memory.
func Store(ctx context.Context, c config.StorageConfig, logger *slog.Logger) (calllog.Store, error) {
	switch {
	case c.PostgresDSN != "":
		store, err := postgres.NewStore(ctx, c.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL store: %w", err)
		}
		logger.Info("using PostgreSQL call log")
		return store, nil

	case c.SheetsSpreadsheetID != "":
		store, err := sheets.NewStore(ctx, sheets.Config{
			SpreadsheetID:   c.SheetsSpreadsheetID,
			CredentialsFile: c.SheetsCredentialsFile,
			Sheet:           c.SheetsSheet,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Sheets store: %w", err)
		}
		logger.Info("using Google Sheets call log", "spreadsheet", c.SheetsSpreadsheetID)
		return store, nil

	case c.SQLitePath != "":
		store, err := sqlite.NewStore(ctx, c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		logger.Info("using SQLite call log", "path", c.SQLitePath)
		return store, nil
	}

	logger.Info("using in-memory call log")
	return inmemory.NewStore(), nil
}

// Publisher creates the turn event publisher. Publishing is disabled
// without brokers.
func Publisher(c config.EventStreamConfig, logger *slog.Logger) (eventstream.Publisher, error) {
	brokers := c.KafkaBrokerList()
	if len(brokers) == 0 {
		logger.Debug("turn event publishing disabled")
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   c.KafkaTopic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	logger.Info("publishing turn events to Kafka",
		"brokers", brokers,
		"topic", c.KafkaTopic,
	)
	return publisher, nil
}

// VoiceConfig maps the resolved configuration onto the voice server.
func VoiceConfig(cfg *config.Config) voice.Config {
	return voice.Config{
		ListenAddr:    cfg.Voice.Listen,
		PublicURL:     cfg.Voice.PublicURL,
		TokenSecret:   cfg.Voice.TokenSecret,
		Language:      cfg.Voice.Language,
		Voice:         cfg.Voice.Voice,
		NumWorkers:    cfg.Worker.NumWorkers,
		QueueSize:     cfg.Worker.QueueSize,
		UpsertTimeout: cfg.Worker.Timeout(),
	}
}

// APIConfig maps the resolved configuration onto the inspection API server.
func APIConfig(cfg *config.Config) api.Config {
	return api.Config{ListenAddr: cfg.API.Listen}
}
