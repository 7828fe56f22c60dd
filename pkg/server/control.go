package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/NicolasHaas/telechat/pkg/protocol"
)

// Listen binds the TCP listener and starts accepting connections.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listenMu.Lock()
	s.listener = ln
	s.listenMu.Unlock()

	slog.Info("telnet listening", "addr", ln.Addr().String())

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				slog.Error("accept error", "err", err)
				continue
			}
			go s.ServeConn(conn)
		}
	}()

	return nil
}

// ServeConn runs one connection's session until the peer goes away or the
// session asks to be closed. It blocks until the writer has finished.
func (s *Server) ServeConn(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.metrics.TotalConnections.Add(1)
	s.metrics.ActiveConnections.Add(1)

	out := NewOutbox(conn, s.cfg.OutboxSize, func() { s.metrics.DroppedFrames.Add(1) })
	sess := NewSession(s.sessionDeps(), out, remote)
	s.sessions.Add(sess)
	sess.log.Debug("new connection")

	defer func() {
		sess.Disconnect()
		s.sessions.Remove(sess.ID())
		_ = out.Close()
		<-out.Done()
		s.metrics.ActiveConnections.Add(-1)
		s.metrics.TotalDisconnects.Add(1)
		sess.log.Debug("connection closed")
	}()

	sess.Start()

	// The writer closes conn once the session closes its outbox, which
	// ends the read loop below.
	fr := protocol.NewFrameReader(conn, s.cfg.MaxLineLength)
	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			if errors.Is(err, protocol.ErrFrameTooLong) {
				s.metrics.OversizedFrames.Add(1)
				sess.log.Debug("input line too long, discarded")
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				sess.log.Debug("read failed", "err", err)
			}
			return
		}
		sess.HandleFrame(frame)
	}
}
