// Package monitor exposes a running actor system over HTTP: its Prometheus
// metrics, a WebSockets stream of lifecycle events and a small
// password-protected admin endpoint.
package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/informalsystems/go-actor/pkg/actor"
	"github.com/informalsystems/go-actor/pkg/mailbox"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBindAddr is where the monitor listens if no address is configured.
const DefaultBindAddr = "localhost:26680"

const serverShutdownTimeout = 10 * time.Second

// Config holds the monitor server's settings.
type Config struct {
	BindAddr          string `json:"bind_addr" yaml:"bind_addr"`                     // The host:port on which to listen.
	AdminUsername     string `json:"admin_username" yaml:"admin_username"`           // Leave empty to disable the /admin endpoint.
	AdminPasswordHash string `json:"admin_password_hash" yaml:"admin_password_hash"` // bcrypt hash of the admin password.
	SubscriberBufSize int    `json:"subscriber_buf_size" yaml:"subscriber_buf_size"` // Events buffered per /events client before dropping.
}

// DefaultConfig returns a config with the default bind address and the admin
// endpoint disabled.
func DefaultConfig() Config {
	return Config{
		BindAddr:          DefaultBindAddr,
		SubscriberBufSize: defaultSubscriberBufSize,
	}
}

// Server serves the monitoring endpoints for a single actor system.
type Server struct {
	cfg    Config
	sys    *actor.System
	logger logging.Logger

	svr        *http.Server
	started    bool
	svrStopped chan struct{} // Closed once the HTTP server has shut down.

	hub *eventHub // nil if no lifecycle events were supplied
}

// ServerOption configures optional parts of the Server.
type ServerOption func(s *Server)

// WithEvents streams the lifecycle events queued in events to /events
// clients. The queue must be the one given to actor.WithLifecycleEvents; the
// server takes ownership of it and closes it on Stop.
func WithEvents(events mailbox.Mailbox[actor.LifecycleEvent]) ServerOption {
	return func(s *Server) {
		s.hub = newEventHub(events, s.cfg.SubscriberBufSize, s.logger)
	}
}

// WithLogger overrides the server's logger.
func WithLogger(l logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

func NewServer(sys *actor.System, cfg Config, opts ...ServerOption) *Server {
	if len(cfg.BindAddr) == 0 {
		cfg.BindAddr = DefaultBindAddr
	}
	if cfg.SubscriberBufSize <= 0 {
		cfg.SubscriberBufSize = defaultSubscriberBufSize
	}
	s := &Server{
		cfg:        cfg,
		sys:        sys,
		logger:     logging.NewLogrusLogger("monitor", "system", sys.Name()),
		svrStopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub != nil {
		// WithLogger may have come after WithEvents
		s.hub.logger = s.logger
	}
	s.svr = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the server's request multiplexer. It is exposed so that the
// endpoints can be mounted elsewhere or tested without listening.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.sys.Gatherer(), promhttp.HandlerOpts{}))
	if s.hub != nil {
		mux.HandleFunc("/events", s.hub.newWebSocketHandler())
	}
	if len(s.cfg.AdminUsername) > 0 {
		mux.HandleFunc("/admin", MakeAdminHandler(s.cfg.AdminUsername, s.cfg.AdminPasswordHash, s.sys, s.logger))
	}
	return mux
}

// Start runs the HTTP server and the event fan-out in the background. It must
// be called at most once.
func (s *Server) Start() {
	s.started = true
	if s.hub != nil {
		go s.hub.run()
	}
	go s.runServer()
}

func (s *Server) runServer() {
	defer close(s.svrStopped)

	s.logger.Info("Starting monitor server", "addr", s.cfg.BindAddr)
	if err := s.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Monitor server shut down", "err", err)
		return
	}
	s.logger.Info("Monitor server shut down")
}

// Stop shuts the HTTP server down gracefully, disconnects all event
// subscribers and waits for the server to stop, or for ctx to expire.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, serverShutdownTimeout)
	defer cancel()

	if s.hub != nil {
		s.hub.stop()
	}
	if err := s.svr.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to gracefully shut down monitor server", "err", err)
		return err
	}
	if !s.started {
		return nil
	}
	select {
	case <-s.svrStopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
