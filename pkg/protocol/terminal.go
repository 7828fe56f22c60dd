// Package protocol defines the terminal control sequences the server
// renders with and the line framing of the inbound byte stream.
package protocol

import "fmt"

// VT100/ANSI control sequences understood by common telnet clients.
const (
	ESC = "\x1b"

	SaveCursor   = ESC + "[s"
	LoadCursor   = ESC + "[u"
	CursorHome   = ESC + "[H"
	ClearLine    = ESC + "[2K"
	ClearScreen  = ESC + "[2J"
	ItalicOn     = ESC + "[3m"
	ItalicOff    = ESC + "[23m"
	moveToFormat = ESC + "[%d;%dH"

	CRLF = "\r\n"
)

// MoveTo positions the cursor at a 1-based line and column.
func MoveTo(line, col int) string {
	return fmt.Sprintf(moveToFormat, line, col)
}

// Italic wraps s in italic on/off sequences.
func Italic(s string) string {
	return ItalicOn + s + ItalicOff
}
