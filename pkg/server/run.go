package server

import (
	"context"
	"log/slog"
	"time"
)

// Run starts the listeners and blocks until ctx is cancelled, then shuts
// the server down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		s.Shutdown()
		return err
	}

	slog.Info("telechat server running",
		"listen", s.cfg.ListenAddr,
		"channels", s.registry.Channels(),
		"credentials", s.cfg.Credentials,
	)

	// Start Prometheus metrics HTTP endpoint
	s.StartMetricsHTTP()

	// Start periodic metrics logging (every 60s)
	s.metrics.StartPeriodicLog(60*time.Second, s.ctx.Done())

	select {
	case <-ctx.Done():
	case <-s.ctx.Done():
	}

	slog.Info("shutting down...")
	s.Shutdown()
	return nil
}

// Shutdown gracefully stops the server. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.cancel()
		s.listenMu.Lock()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.listenMu.Unlock()
		s.sessions.CloseAll()
		if err := s.creds.Close(); err != nil {
			slog.Error("close credentials", "err", err)
		}
	})
}
