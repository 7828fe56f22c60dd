package server

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks server runtime statistics.
// All counters use atomic operations for lock-free concurrent access.
type Metrics struct {
	startTime time.Time

	// Connection counters
	TotalConnections  atomic.Int64 // lifetime TCP connections accepted
	ActiveConnections atomic.Int64 // current open connections
	TotalDisconnects  atomic.Int64 // connections closed, by either side
	OversizedFrames   atomic.Int64 // input lines discarded for length

	// Login counters
	Registrations    atomic.Int64 // first logins that created a user
	SuccessfulLogins atomic.Int64 // logins with a matching password
	FailedLogins     atomic.Int64 // logins with a wrong password

	// Channel counters
	Joins         atomic.Int64 // successful /join
	JoinsRejected atomic.Int64 // /join refused because the channel was full

	// Traffic counters
	ChatMessagesSent atomic.Int64 // chat lines broadcast
	BroadcastLines   atomic.Int64 // all lines broadcast, notices included
	Deliveries       atomic.Int64 // per-recipient deliveries attempted
	DroppedFrames    atomic.Int64 // frames dropped by a full or dead outbox
	UnknownCommands  atomic.Int64 // unrecognised slash commands
}

// NewMetrics creates a new Metrics instance with the start time set to now.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	TotalDisconnects  int64 `json:"total_disconnects"`
	OversizedFrames   int64 `json:"oversized_frames"`

	Registrations    int64 `json:"registrations"`
	SuccessfulLogins int64 `json:"successful_logins"`
	FailedLogins     int64 `json:"failed_logins"`

	Joins         int64 `json:"joins"`
	JoinsRejected int64 `json:"joins_rejected"`

	ChatMessagesSent int64 `json:"chat_messages_sent"`
	BroadcastLines   int64 `json:"broadcast_lines"`
	Deliveries       int64 `json:"deliveries"`
	DroppedFrames    int64 `json:"dropped_frames"`
	UnknownCommands  int64 `json:"unknown_commands"`
}

// Snapshot returns a read-consistent snapshot of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	uptime := time.Since(m.startTime)
	return MetricsSnapshot{
		Uptime:            uptime.Truncate(time.Second).String(),
		UptimeSeconds:     int64(uptime.Seconds()),
		ActiveConnections: m.ActiveConnections.Load(),
		TotalConnections:  m.TotalConnections.Load(),
		TotalDisconnects:  m.TotalDisconnects.Load(),
		OversizedFrames:   m.OversizedFrames.Load(),
		Registrations:     m.Registrations.Load(),
		SuccessfulLogins:  m.SuccessfulLogins.Load(),
		FailedLogins:      m.FailedLogins.Load(),
		Joins:             m.Joins.Load(),
		JoinsRejected:     m.JoinsRejected.Load(),
		ChatMessagesSent:  m.ChatMessagesSent.Load(),
		BroadcastLines:    m.BroadcastLines.Load(),
		Deliveries:        m.Deliveries.Load(),
		DroppedFrames:     m.DroppedFrames.Load(),
		UnknownCommands:   m.UnknownCommands.Load(),
	}
}

// JSON returns the metrics snapshot as a JSON string.
func (m *Metrics) JSON() string {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// LogSummary writes a periodic metrics summary to the logger.
func (m *Metrics) LogSummary() {
	s := m.Snapshot()
	slog.Info("metrics",
		"uptime", s.Uptime,
		"connections", s.ActiveConnections,
		"total_connections", s.TotalConnections,
		"chat_msgs", s.ChatMessagesSent,
		"broadcasts", s.BroadcastLines,
		"dropped_frames", s.DroppedFrames,
	)
}

// StartPeriodicLog starts a goroutine that logs metrics every interval.
// It stops when the done channel is closed.
func (m *Metrics) StartPeriodicLog(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.LogSummary()
			}
		}
	}()
}
