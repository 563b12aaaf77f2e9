package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/bootstrap"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/inmemory"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/sqlite"
	"github.com/papercomputeco/praxisvoice/pkg/config"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream/kafka"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream/nop"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
)

var _ = Describe("Bootstrap", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Store", func() {
		It("defaults to the in-memory store", func() {
			store, err := bootstrap.Store(ctx, config.StorageConfig{}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(store).To(BeAssignableToTypeOf(&inmemory.Store{}))
		})

		It("opens a SQLite store for a configured path", func() {
			path := filepath.Join(GinkgoT().TempDir(), "calls.db")
			store, err := bootstrap.Store(ctx, config.StorageConfig{SQLitePath: path}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			Expect(store).To(BeAssignableToTypeOf(&sqlite.Store{}))
			_, err = os.Stat(path)
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails for unreadable Sheets credentials", func() {
			_, err := bootstrap.Store(ctx, config.StorageConfig{
				SheetsSpreadsheetID:   "sheet-id",
				SheetsCredentialsFile: filepath.Join(GinkgoT().TempDir(), "missing.json"),
			}, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("Google Sheets")))
		})
	})

	Describe("Publisher", func() {
		It("is disabled without brokers", func() {
			publisher, err := bootstrap.Publisher(config.EventStreamConfig{}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher).To(BeAssignableToTypeOf(&nop.Publisher{}))
		})

		It("publishes to Kafka with brokers", func() {
			publisher, err := bootstrap.Publisher(config.EventStreamConfig{
				KafkaBrokers: "localhost:9092",
				KafkaTopic:   "praxisvoice.turns",
			}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			defer publisher.Close()
			Expect(publisher).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		})
	})

	Describe("Engine", func() {
		It("uses the built-in knowledge base by default", func() {
			engine, kb, err := bootstrap.Engine(config.NewDefaultConfig(), logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(engine).NotTo(BeNil())
			Expect(kb.FAQ).NotTo(BeEmpty())
		})

		It("fails for a missing knowledge base file", func() {
			cfg := config.NewDefaultConfig()
			cfg.Knowledge.Path = filepath.Join(GinkgoT().TempDir(), "missing.toml")
			_, _, err := bootstrap.Engine(cfg, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("knowledge base")))
		})
	})
})

var _ = Describe("Server configs", func() {
	It("maps voice and worker settings", func() {
		cfg := config.NewDefaultConfig()
		cfg.Voice.PublicURL = "https://praxis.example"
		cfg.Voice.TokenSecret = "geheim"
		cfg.Worker.NumWorkers = 7
		cfg.Worker.UpsertTimeout = "2s"

		vc := bootstrap.VoiceConfig(cfg)
		Expect(vc.ListenAddr).To(Equal(cfg.Voice.Listen))
		Expect(vc.PublicURL).To(Equal("https://praxis.example"))
		Expect(vc.TokenSecret).To(Equal("geheim"))
		Expect(vc.Language).To(Equal(cfg.Voice.Language))
		Expect(vc.NumWorkers).To(Equal(uint(7)))
		Expect(vc.UpsertTimeout).To(Equal(2 * time.Second))
	})

	It("maps the API listen address", func() {
		cfg := config.NewDefaultConfig()
		cfg.API.Listen = ":9999"
		Expect(bootstrap.APIConfig(cfg).ListenAddr).To(Equal(":9999"))
	})
})
