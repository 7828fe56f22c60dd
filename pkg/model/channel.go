package model

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ChannelDefaultMaxUsers = 10
	ChannelDefaultHistory  = 10

	MaxChannelNameLength = 64
	MaxChannelUsers      = 256
	MaxChannelHistory    = 1000
)

// DefaultChannelNames are provisioned when no channels file is given.
var DefaultChannelNames = []string{"public", "movies"}

var ErrChannelNameEmpty = errors.New("channel name must not be empty")
var ErrChannelNameTooLong = errors.New("channel name too long")
var ErrChannelNameInvalid = errors.New("channel name must not contain spaces or control characters")
var ErrChannelMaxUsers = errors.New("channel max users out of range")
var ErrChannelHistory = errors.New("channel history size out of range")

// Channel describes a provisioned chat channel. Runtime membership lives in
// the server's registry, not here.
type Channel struct {
	Name     string `json:"name"`
	MaxUsers int    `json:"max_users"`
	History  int    `json:"history"`
}

// NewChannel returns a channel config with the default capacity and history size.
func NewChannel(name string) Channel {
	return Channel{
		Name:     name,
		MaxUsers: ChannelDefaultMaxUsers,
		History:  ChannelDefaultHistory,
	}
}

// DefaultChannels returns the channels created when nothing else is configured.
func DefaultChannels() []Channel {
	chans := make([]Channel, 0, len(DefaultChannelNames))
	for _, name := range DefaultChannelNames {
		chans = append(chans, NewChannel(name))
	}
	return chans
}

// Validate checks the channel config. Channel names are single command
// tokens, so whitespace is rejected.
func (ch Channel) Validate() error {
	if strings.TrimSpace(ch.Name) == "" {
		return ErrChannelNameEmpty
	} else if utf8.RuneCountInString(ch.Name) > MaxChannelNameLength {
		return ErrChannelNameTooLong
	}
	for _, r := range ch.Name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrChannelNameInvalid
		}
	}

	if ch.MaxUsers < 1 || ch.MaxUsers > MaxChannelUsers {
		return ErrChannelMaxUsers
	}
	if ch.History < 0 || ch.History > MaxChannelHistory {
		return ErrChannelHistory
	}
	return nil
}
