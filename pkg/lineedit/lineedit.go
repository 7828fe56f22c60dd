// Package lineedit turns a framed chunk of raw terminal input into the
// logical line the user meant, applying backspaces the client sent as
// control bytes instead of editing locally.
package lineedit

import "unicode/utf8"

const (
	Backspace = '\b'   // ^H
	Delete    = '\x7f' // DEL, sent by most terminals for the backspace key
)

// Decode applies backspace edits to raw and returns the resulting line.
// Every call starts from an empty buffer; a backspace on an empty buffer
// is ignored.
func Decode(raw []byte) string {
	buf := make([]rune, 0, len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		raw = raw[size:]

		if r == Backspace || r == Delete {
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
			continue
		}
		buf = append(buf, r)
	}
	return string(buf)
}
