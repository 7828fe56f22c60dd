// Package server implements the telechat server: the session state
// machine, channel registry, broadcast engine and the TCP front end.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/kelseyhightower/envconfig"

	"github.com/NicolasHaas/telechat/pkg/credentials"
	"github.com/NicolasHaas/telechat/pkg/model"
	"github.com/NicolasHaas/telechat/pkg/protocol"
)

// EnvPrefix is the prefix of environment overrides, e.g. TELECHAT_LISTEN_ADDR.
const EnvPrefix = "TELECHAT"

// Config holds server configuration.
type Config struct {
	ListenAddr    string `envconfig:"LISTEN_ADDR"`   // TCP bind address (e.g. ":2323")
	MetricsAddr   string `envconfig:"METRICS_ADDR"`  // HTTP bind address for /metrics (empty = disabled)
	ChannelsFile  string `envconfig:"CHANNELS_FILE"` // YAML file defining channels to create on startup
	Credentials   string `envconfig:"CREDENTIALS"`   // credential backend: memory or sqlite
	MaxLineLength int    `envconfig:"MAX_LINE"`      // longest accepted input line in bytes
	OutboxSize    int    `envconfig:"OUTBOX_SIZE"`   // frames queued per connection before dropping
	LogLevel      string `envconfig:"LOG_LEVEL"`     // debug, info, warn, error
	LogFormat     string `envconfig:"LOG_FORMAT"`    // text or json

	// CLI-only actions (run and exit)
	ExportChannels bool `ignored:"true"` // print effective channels as YAML and exit
	ShowVersion    bool `ignored:"true"` // print version and exit
}

// Dependencies holds external dependencies for the server.
// Server assumes ownership of Credentials and will Close() it on shutdown.
type Dependencies struct {
	Credentials credentials.Store
	Channels    []model.Channel // nil means model.DefaultChannels()
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:    ":2323",
		MetricsAddr:   ":2324",
		Credentials:   credentials.BackendMemory,
		MaxLineLength: protocol.DefaultMaxFrame,
		OutboxSize:    DefaultOutboxSize,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// LoadEnv overlays TELECHAT_* environment variables onto cfg. Unset
// variables leave the existing values alone.
func LoadEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("server: env: %w", err)
	}
	return nil
}

// Server is the main telechat server.
type Server struct {
	cfg         Config
	sessions    *SessionManager
	registry    *Registry
	broadcaster *Broadcaster
	metrics     *Metrics
	creds       credentials.Store
	listener    net.Listener
	ctx         context.Context
	cancel      context.CancelFunc

	listenMu     sync.Mutex
	shutdownOnce sync.Once
}

// New creates a new Server instance.
func New(cfg Config, deps Dependencies) (*Server, error) {
	if deps.Credentials == nil {
		return nil, fmt.Errorf("server: missing credentials dependency")
	}
	channels := deps.Channels
	if channels == nil {
		channels = model.DefaultChannels()
	}
	registry, err := NewRegistry(channels)
	if err != nil {
		return nil, fmt.Errorf("server: channels: %w", err)
	}

	metrics := NewMetrics()
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:         cfg,
		sessions:    NewSessionManager(),
		registry:    registry,
		broadcaster: NewBroadcaster(registry, metrics),
		metrics:     metrics,
		creds:       deps.Credentials,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (s *Server) sessionDeps() SessionDeps {
	return SessionDeps{
		Registry:    s.registry,
		Broadcaster: s.broadcaster,
		Credentials: s.creds,
		Metrics:     s.metrics,
	}
}

// Registry returns the channel registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
