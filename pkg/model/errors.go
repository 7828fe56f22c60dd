package model

import "errors"

// User-facing errors. None of them ends the session.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCredentials   = errors.New("empty credentials")
	ErrUsernameInvalid    = errors.New("username contains control characters")
	ErrUnknownChannel     = errors.New("unknown channel")
	ErrChannelFull        = errors.New("channel full")
	ErrNotInChannel       = errors.New("not in a channel")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrAlreadyLoggedIn    = errors.New("already logged in")
	ErrUsernameInUse      = errors.New("username already in channel")
	ErrMessageTooLong     = errors.New("message too long")

	// ErrNoop marks a command that is accepted but does nothing in the
	// current state (e.g. /leave outside a channel).
	ErrNoop = errors.New("no effect in current state")
)

// UserMessage renders err as the line shown to the offending connection.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect password!"
	case errors.Is(err, ErrEmptyCredentials):
		return "Login/password cannot be empty!"
	case errors.Is(err, ErrUsernameInvalid):
		return "Username cannot contain control characters."
	case errors.Is(err, ErrUnknownChannel):
		return "Channel is not listed, check /channels."
	case errors.Is(err, ErrChannelFull):
		return "Too many users in the channel."
	case errors.Is(err, ErrNotInChannel):
		return "You are not in a channel."
	case errors.Is(err, ErrNotLoggedIn):
		return "You must /login first."
	case errors.Is(err, ErrUnknownCommand):
		return "Unknown command."
	case errors.Is(err, ErrAlreadyLoggedIn):
		return "You are already logged in."
	case errors.Is(err, ErrUsernameInUse):
		return "Someone with your name is already in that channel."
	case errors.Is(err, ErrMessageTooLong):
		return "Message is too long."
	default:
		return "Internal error, try again."
	}
}
