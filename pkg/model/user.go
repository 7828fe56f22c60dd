package model

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageLength bounds a single chat line, in runes.
const MaxMessageLength = 2000

// Credentials are the two tokens of a /login command.
type Credentials struct {
	Username string
	Password string
}

// Validate requires both tokens to be present and the username to be free
// of control characters, since it is echoed onto other members' terminals.
// Passwords are compared as plain text.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return ErrEmptyCredentials
	}
	for _, r := range c.Username {
		if unicode.IsControl(r) {
			return ErrUsernameInvalid
		}
	}
	return nil
}

// SanitizeText strips control characters from user-supplied text so a
// message cannot carry its own escape sequences onto other terminals.
// Newlines collapse to spaces.
func SanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// ValidateMessage checks a sanitized chat line.
func ValidateMessage(text string) error {
	if n := utf8.RuneCountInString(text); n > MaxMessageLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrMessageTooLong, n, MaxMessageLength)
	}
	return nil
}
