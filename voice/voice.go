package voice

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/continuation"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
	"github.com/papercomputeco/praxisvoice/voice/twiml"
	"github.com/papercomputeco/praxisvoice/voice/worker"
)

// Webhook paths.
const (
	PathIncoming     = "/voice/incoming"
	PathHandleGather = "/voice/handle-gather"
	PathAfterForward = "/voice/after-forward"
	PathComplete     = "/voice/complete"
)

// serviceName is the event source of published turn events.
const serviceName = "praxisvoice"

// Server answers the webhook turns of phone calls.
type Server struct {
	config   Config
	engine   *callflow.Engine
	renderer *twiml.Renderer
	codec    *continuation.Codec
	pool     *worker.Pool
	logger   *slog.Logger
	app      *fiber.App

	now   func() time.Time
	newID func() string
}

// New creates a new voice webhook server. Call-log patches are persisted to
// store and turn events published to publisher off the request path.
func New(config Config, engine *callflow.Engine, store calllog.Store, publisher eventstream.Publisher, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("dialog engine is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	wp, err := worker.NewPool(&worker.Config{
		Store:      store,
		Publisher:  publisher,
		NumWorkers: config.NumWorkers,
		QueueSize:  config.QueueSize,
		Timeout:    config.UpsertTimeout,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	// Request values outlive the handler in the worker pool.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	s := &Server{
		config:   config,
		engine:   engine,
		renderer: twiml.NewRenderer(twiml.Config{Language: config.Language, Voice: config.Voice}),
		codec:    continuation.NewCodec(config.TokenSecret),
		pool:     wp,
		logger:   logger,
		app:      app,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}

	app.Post(PathIncoming, s.handleIncoming)
	app.Post(PathHandleGather, s.handleGather)
	app.Post(PathAfterForward, s.handleAfterForward)
	app.Post(PathComplete, s.handleComplete)

	for _, path := range []string{PathIncoming, PathHandleGather, PathAfterForward, PathComplete} {
		app.Get(path, s.handleNotice)
	}

	return s, nil
}

// Run starts the voice server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting voice webhook server",
		"listen", s.config.ListenAddr,
		"public_url", s.config.PublicURL,
		"signed_tokens", s.codec.Signed(),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the voice server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting voice webhook server", "listen", listener.Addr().String())
	return s.app.Listener(listener)
}

// Close stops accepting turns and drains the pending call-log writes.
func (s *Server) Close() error {
	err := s.app.Shutdown()
	s.pool.Close()
	return err
}

func (s *Server) baseURL(c *fiber.Ctx) string {
	if s.config.PublicURL != "" {
		return strings.TrimRight(s.config.PublicURL, "/")
	}
	return c.BaseURL()
}
