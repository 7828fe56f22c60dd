package server

import (
	"errors"
	"fmt"

	"github.com/NicolasHaas/telechat/pkg/credentials"
	"github.com/NicolasHaas/telechat/pkg/model"
)

func (s *Session) handleLogin(in model.Input) {
	creds := model.Credentials{Username: in.Arg(0), Password: in.Arg(1)}
	if err := creds.Validate(); err != nil {
		s.fail(err)
		return
	}

	res, err := s.deps.Credentials.Authenticate(creds.Username, creds.Password)
	if err != nil {
		s.log.Error("authenticate", "user", creds.Username, "err", err)
		s.fail(err)
		return
	}

	m := s.deps.Metrics
	var msg string
	switch res {
	case credentials.Rejected:
		if m != nil {
			m.FailedLogins.Add(1)
		}
		s.log.Info("login rejected", "user", creds.Username)
		s.fail(model.ErrInvalidCredentials)
		return
	case credentials.Registered:
		if m != nil {
			m.Registrations.Add(1)
		}
		msg = "Registered successfully"
	default:
		if m != nil {
			m.SuccessfulLogins.Add(1)
		}
		msg = "Login successful"
	}

	s.mu.Lock()
	s.username = creds.Username
	s.state = model.Next(s.state, model.CmdLogin)
	s.out.Send(renderMenu(s.username) + renderPlain(msg))
	s.mu.Unlock()

	s.log.Info("client logged in", "user", creds.Username, "result", res)
}

func (s *Session) handleJoin(in model.Input) {
	name := in.Arg(0)
	ch, err := s.deps.Registry.lookup(name)
	if err != nil {
		s.fail(err)
		return
	}

	_, username, prev := s.snapshot()
	if prev == ch {
		s.redrawChannel(ch)
		return
	}

	// Switching channels leaves the old one silently, before the new join.
	if prev != nil {
		s.deps.Registry.Leave(prev.Name(), username, s)
	}

	err = s.deps.Registry.Join(ch.Name(), username, s, func(history []string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.channel = ch
		s.state = model.Next(s.state, model.CmdJoin)
		s.out.Send(renderChannelScreen(ch.Name(), username, history))
	})
	if err != nil {
		if errors.Is(err, model.ErrChannelFull) && s.deps.Metrics != nil {
			s.deps.Metrics.JoinsRejected.Add(1)
		}
		s.log.Info("join rejected", "user", username, "channel", name, "err", err)
		if prev != nil {
			s.restoreChannel(prev, username)
		}
		s.fail(err)
		return
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.Joins.Add(1)
	}
	s.log.Info("user joined channel", "user", username, "channel", ch.Name())
	if err := s.deps.Broadcaster.BroadcastTo(ch.Name(), notice("User %s joined the channel.", username)); err != nil {
		s.log.Error("broadcast join notice", "channel", ch.Name(), "err", err)
	}
}

// restoreChannel puts the session back into prev after a failed switch and
// redraws it, catching up on lines missed in between. If prev filled up or
// the name was taken meanwhile, the session drops back to the lobby.
func (s *Session) restoreChannel(prev *Channel, username string) {
	err := s.deps.Registry.Join(prev.Name(), username, s, func(history []string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.out.Send(renderChannelScreen(prev.Name(), username, history))
	})
	if err == nil {
		return
	}

	s.log.Warn("could not return to previous channel", "user", username, "channel", prev.Name(), "err", err)
	s.mu.Lock()
	s.channel = nil
	s.state = model.StateLoggedIn
	s.out.Send(renderMenu(username))
	s.mu.Unlock()
}

// handleLeave ends the session: leaving a channel closes the connection.
func (s *Session) handleLeave() {
	s.mu.Lock()
	username, ch := s.username, s.channel
	s.channel = nil
	s.state = model.Next(s.state, model.CmdLeave)
	s.mu.Unlock()

	if ch == nil {
		return
	}
	if s.deps.Registry.Leave(ch.Name(), username, s) {
		s.deps.Broadcaster.Broadcast(ch, notice("User %s left the channel.", username))
	}
	s.log.Info("user left channel", "user", username, "channel", ch.Name())

	s.notify(fmt.Sprintf("You just left channel %s.", ch.Name()))
	s.Close()
}

func (s *Session) handleUsers() {
	_, _, ch := s.snapshot()
	if ch == nil {
		s.fail(model.ErrNotInChannel)
		return
	}
	members, err := s.deps.Registry.Members(ch.Name())
	if err != nil {
		s.fail(err)
		return
	}
	s.show(model.StateViewingUsers,
		renderListing(fmt.Sprintf("Users in %s (%d/%d):", ch.Name(), len(members), ch.Capacity()), members))
}

func (s *Session) handleChannels() {
	infos := s.deps.Registry.Snapshot()
	items := make([]string, 0, len(infos))
	for _, info := range infos {
		items = append(items, fmt.Sprintf("%s (%d/%d)", info.Name, info.Members, info.Capacity))
	}
	s.show(model.StateViewingChannels, renderListing("Channels:", items))
}

func (s *Session) handleSay(in model.Input) {
	_, username, ch := s.snapshot()
	if ch == nil {
		s.fail(model.ErrNotInChannel)
		return
	}

	text := model.SanitizeText(in.Text)
	if text == "" {
		return
	}
	if err := model.ValidateMessage(text); err != nil {
		s.fail(err)
		return
	}

	if err := s.deps.Broadcaster.BroadcastTo(ch.Name(), username+": "+text); err != nil {
		s.fail(err)
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.ChatMessagesSent.Add(1)
	}
}
