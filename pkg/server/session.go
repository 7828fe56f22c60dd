package server

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/NicolasHaas/telechat/pkg/credentials"
	"github.com/NicolasHaas/telechat/pkg/lineedit"
	"github.com/NicolasHaas/telechat/pkg/model"
)

// SessionDeps are the shared objects a session works against.
type SessionDeps struct {
	Registry    *Registry
	Broadcaster *Broadcaster
	Credentials credentials.Store
	Metrics     *Metrics // optional
}

// Session is the per-connection state machine. Its own goroutine drives
// it through HandleFrame/HandleLine; other goroutines only call Deliver.
//
// Lock order is channel mutex, then session mutex. A session never calls
// into a channel while holding mu.
type Session struct {
	id     string
	remote string
	deps   SessionDeps
	out    Sink
	log    *slog.Logger

	mu       sync.Mutex
	state    model.State
	base     model.State // state to return to from a viewing state
	username string
	channel  *Channel
	closed   bool
}

// NewSession creates a session in the Connected state writing to out.
func NewSession(deps SessionDeps, out Sink, remote string) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		remote: remote,
		deps:   deps,
		out:    out,
		log:    slog.With("session", id, "remote", remote),
		state:  model.StateConnected,
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// State returns the current screen state.
func (s *Session) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Username returns the logged-in name, or "".
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// ChannelName returns the current channel name, or "".
func (s *Session) ChannelName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == nil {
		return ""
	}
	return s.channel.Name()
}

func (s *Session) snapshot() (model.State, string, *Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.username, s.channel
}

// baseState is the state commands are checked against: the underlying
// state while a listing is shown.
func (s *Session) baseState() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Viewing() {
		return s.base
	}
	return s.state
}

// Start draws the greeting screen.
func (s *Session) Start() {
	s.out.Send(renderMenu(""))
}

// HandleFrame applies backspace edits to a framed chunk and handles the
// resulting line.
func (s *Session) HandleFrame(raw []byte) {
	s.HandleLine(lineedit.Decode(raw))
}

// HandleLine interprets one logical input line.
func (s *Session) HandleLine(line string) {
	if s.State().Viewing() {
		s.returnFromView()
		return
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	in := model.ParseInput(line)
	if err := model.Check(s.baseState(), in.Cmd); err != nil {
		switch err {
		case model.ErrNoop:
		case model.ErrUnknownCommand:
			s.log.Info("unknown command", "command", in.Name)
			if s.deps.Metrics != nil {
				s.deps.Metrics.UnknownCommands.Add(1)
			}
			s.fail(err)
		default:
			s.fail(err)
		}
		return
	}

	switch in.Cmd {
	case model.CmdLogin:
		s.handleLogin(in)
	case model.CmdJoin:
		s.handleJoin(in)
	case model.CmdLeave:
		s.handleLeave()
	case model.CmdUsers:
		s.handleUsers()
	case model.CmdChannels:
		s.handleChannels()
	case model.CmdSay:
		s.handleSay(in)
	}
}

// Deliver renders a channel line on this session's terminal. Lines from a
// channel the session is no longer in, and lines arriving while a listing
// is on screen, are skipped; the latter come back through history replay.
func (s *Session) Deliver(channel, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.channel == nil || s.channel.Name() != channel {
		return
	}
	if s.state != model.StateJoined {
		return
	}
	s.out.Send(renderUpdate(line, channel, s.username))
}

// notify shows a local message: with the cursor dance when joined so the
// channel view survives, plainly otherwise. Never recorded in history.
func (s *Session) notify(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == model.StateJoined && s.channel != nil {
		s.out.Send(renderUpdate(text, s.channel.Name(), s.username))
		return
	}
	s.out.Send(renderPlain(text))
}

func (s *Session) fail(err error) {
	s.notify(model.UserMessage(err))
}

// show switches to a listing state and draws it.
func (s *Session) show(state model.State, frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = s.state
	s.state = state
	s.out.Send(frame)
}

// returnFromView restores the state a listing was opened from and redraws
// its screen.
func (s *Session) returnFromView() {
	s.mu.Lock()
	s.state = s.base
	base, username, ch := s.state, s.username, s.channel
	if base != model.StateJoined || ch == nil {
		s.out.Send(renderMenu(username))
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.redrawChannel(ch)
}

// redrawChannel draws the channel screen with history taken under the
// channel lock, so it lines up with what broadcasts deliver afterwards.
func (s *Session) redrawChannel(ch *Channel) {
	ch.Replay(func(history []string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.channel != ch {
			return
		}
		s.out.Send(renderChannelScreen(ch.Name(), s.username, history))
	})
}

// Disconnect runs leave cleanup after the connection went away. Safe to
// call more than once.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	username, ch := s.username, s.channel
	s.channel = nil
	s.mu.Unlock()

	if ch != nil && s.deps.Registry.Leave(ch.Name(), username, s) {
		s.deps.Broadcaster.Broadcast(ch, notice("User %s disconnected.", username))
		s.log.Info("user disconnected from channel", "user", username, "channel", ch.Name())
	}
}

// Close asks the transport to close the connection after flushing.
func (s *Session) Close() {
	_ = s.out.Close()
}
