package server

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/NicolasHaas/telechat/pkg/protocol"
	"github.com/NicolasHaas/telechat/pkg/version"
)

// Screen layout while joined:
//
//	line 1   Channel: <name>
//	line 2   <username>: <what the user is typing>
//	line 3+  channel traffic; the saved cursor marks where the next line goes

const commandHelp = "Commands:" + protocol.CRLF +
	"/login <name> <password>" + protocol.CRLF +
	"/join <channel>" + protocol.CRLF +
	"/leave" + protocol.CRLF +
	"/users" + protocol.CRLF +
	"/channels" + protocol.CRLF

func header(channel string) string {
	return "Channel: " + channel + protocol.CRLF
}

func prompt(username string) string {
	return username + ": "
}

// renderUpdate is the cursor dance run on every member's terminal for a
// channel line: back to the traffic area, write, remember the new spot,
// then redraw header and prompt.
func renderUpdate(line, channel, username string) string {
	var b strings.Builder
	b.WriteString(protocol.LoadCursor)
	b.WriteString(line)
	b.WriteString(protocol.CRLF)
	b.WriteString(protocol.SaveCursor)
	b.WriteString(protocol.CursorHome)
	b.WriteString(header(channel))
	b.WriteString(protocol.ClearLine)
	b.WriteString(prompt(username))
	return b.String()
}

// renderChannelScreen draws a fresh channel view with the replayed history
// and leaves the cursor after the prompt.
func renderChannelScreen(channel, username string, history []string) string {
	var b strings.Builder
	b.WriteString(protocol.ClearScreen)
	b.WriteString(protocol.CursorHome)
	b.WriteString(header(channel))
	b.WriteString(protocol.ClearLine)
	b.WriteString(prompt(username))
	b.WriteString(protocol.CRLF)
	for _, line := range history {
		b.WriteString(line)
		b.WriteString(protocol.CRLF)
	}
	b.WriteString(protocol.SaveCursor)
	b.WriteString(protocol.MoveTo(2, utf8.RuneCountInString(prompt(username))+1))
	return b.String()
}

// renderMenu draws the lobby screen shown before joining a channel.
func renderMenu(username string) string {
	var b strings.Builder
	b.WriteString(protocol.ClearScreen)
	b.WriteString(protocol.CursorHome)
	if username == "" {
		b.WriteString("Hi, stranger!" + protocol.CRLF)
	} else {
		b.WriteString(fmt.Sprintf("Logged in as %s.", username) + protocol.CRLF)
	}
	b.WriteString(commandHelp)
	b.WriteString("(" + version.Banner() + ")" + protocol.CRLF)
	b.WriteString(protocol.CRLF)
	return b.String()
}

// renderListing draws a full-screen list; any input returns from it.
func renderListing(title string, items []string) string {
	var b strings.Builder
	b.WriteString(protocol.ClearScreen)
	b.WriteString(protocol.CursorHome)
	b.WriteString(title + protocol.CRLF)
	for _, item := range items {
		b.WriteString(item + protocol.CRLF)
	}
	b.WriteString(protocol.CRLF)
	b.WriteString("Press Enter to return." + protocol.CRLF)
	return b.String()
}

func renderPlain(text string) string {
	return text + protocol.CRLF
}

func notice(format string, args ...any) string {
	return protocol.Italic(fmt.Sprintf(format, args...))
}
