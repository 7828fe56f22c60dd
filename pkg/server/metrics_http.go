package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPHandler returns the router serving /metrics, /metrics.json, /healthz,
// /channels and /channels/{name}/history.
func (s *Server) HTTPHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/metrics", s.handleMetrics)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/metrics.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.metrics.JSON()))
	})
	r.Get("/channels", s.handleChannelsJSON)
	r.Get("/channels/{name}/history", s.handleChannelHistory)
	return r
}

// StartMetricsHTTP starts the HTTP endpoint in the background. It shuts
// down when the server context is cancelled.
//
// Bind address is :2324 by default, see Config.MetricsAddr.
func (s *Server) StartMetricsHTTP() {
	addr := s.cfg.MetricsAddr
	if addr == "" {
		return // metrics endpoint disabled
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		_ = srv.Close()
	}()
}

func (s *Server) handleChannelsJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.Snapshot()); err != nil {
		slog.Error("encode channels", "err", err)
	}
}

func (s *Server) handleChannelHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.registry.ReplayHistory(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(history); err != nil {
		slog.Error("encode history", "err", err)
	}
}

// handleMetrics writes all metrics in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.metrics
	uptime := time.Since(m.startTime).Seconds()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Write errors to http.ResponseWriter are non-actionable; suppress errcheck.
	write := func(name, help, mtype string, value int64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
	}

	_, _ = fmt.Fprintf(w, "# HELP telechat_uptime_seconds Server uptime in seconds.\n")
	_, _ = fmt.Fprintf(w, "# TYPE telechat_uptime_seconds gauge\n")
	_, _ = fmt.Fprintf(w, "telechat_uptime_seconds %f\n", uptime)

	write("telechat_connections_active", "Current open connections.", "gauge",
		m.ActiveConnections.Load())
	write("telechat_connections_total", "Lifetime TCP connections accepted.", "counter",
		m.TotalConnections.Load())
	write("telechat_disconnects_total", "Connections closed.", "counter",
		m.TotalDisconnects.Load())
	write("telechat_oversized_frames_total", "Input lines discarded for length.", "counter",
		m.OversizedFrames.Load())

	write("telechat_registrations_total", "Users registered on first login.", "counter",
		m.Registrations.Load())
	write("telechat_logins_total", "Logins with a matching password.", "counter",
		m.SuccessfulLogins.Load())
	write("telechat_logins_failed_total", "Logins with a wrong password.", "counter",
		m.FailedLogins.Load())

	write("telechat_joins_total", "Successful channel joins.", "counter",
		m.Joins.Load())
	write("telechat_joins_rejected_total", "Joins refused because the channel was full.", "counter",
		m.JoinsRejected.Load())

	write("telechat_chat_messages_total", "Chat lines broadcast.", "counter",
		m.ChatMessagesSent.Load())
	write("telechat_broadcast_lines_total", "Lines broadcast, notices included.", "counter",
		m.BroadcastLines.Load())
	write("telechat_deliveries_total", "Per-recipient deliveries attempted.", "counter",
		m.Deliveries.Load())
	write("telechat_dropped_frames_total", "Frames dropped by a full or dead outbox.", "counter",
		m.DroppedFrames.Load())
	write("telechat_unknown_commands_total", "Unrecognised slash commands.", "counter",
		m.UnknownCommands.Load())

	_, _ = fmt.Fprintf(w, "# HELP telechat_channel_members Current members per channel.\n")
	_, _ = fmt.Fprintf(w, "# TYPE telechat_channel_members gauge\n")
	for _, info := range s.registry.Snapshot() {
		_, _ = fmt.Fprintf(w, "telechat_channel_members{channel=%q} %d\n", info.Name, info.Members)
	}
}
