package protocol

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readAll(t *testing.T, fr *FrameReader) ([]string, error) {
	t.Helper()
	var frames []string
	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			return frames, err
		}
		frames = append(frames, string(frame))
	}
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lf", "one\ntwo\n", []string{"one", "two"}},
		{"crlf", "one\r\ntwo\r\n", []string{"one", "two"}},
		{"cr nul", "one\r\x00\ntwo\n", []string{"one", "two"}},
		{"empty lines kept", "\n\nx\n", []string{"", "", "x"}},
		{"unterminated tail", "one\ntail", []string{"one", "tail"}},
		{"backspaces preserved", "ab\b\bc\n", []string{"ab\b\bc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAll(t, NewFrameReader(strings.NewReader(tt.in), 0))
			if !errors.Is(err, io.EOF) {
				t.Fatalf("ReadFrame: expected io.EOF at end, got %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("frames mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadFrameTooLong(t *testing.T) {
	in := strings.Repeat("x", 20) + "\nok\n"
	fr := NewFrameReader(strings.NewReader(in), 10)

	if _, err := fr.ReadFrame(); !errors.Is(err, ErrFrameTooLong) {
		t.Fatalf("first ReadFrame: got %v, want ErrFrameTooLong", err)
	}
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("second ReadFrame: unexpected error: %v", err)
	}
	if string(frame) != "ok" {
		t.Fatalf("second ReadFrame = %q, want %q", frame, "ok")
	}
}

// Lines longer than the bufio buffer but within the limit are reassembled.
func TestReadFrameLongerThanBuffer(t *testing.T) {
	line := strings.Repeat("y", 6000)
	fr := NewFrameReader(strings.NewReader(line+"\n"), 0)
	frame, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: unexpected error: %v", err)
	}
	if string(frame) != line {
		t.Fatalf("ReadFrame returned %d bytes, want %d", len(frame), len(line))
	}
}

func TestMoveTo(t *testing.T) {
	if got, want := MoveTo(2, 8), "\x1b[2;8H"; got != want {
		t.Errorf("MoveTo(2, 8) = %q, want %q", got, want)
	}
	if got, want := Italic("hi"), "\x1b[3mhi\x1b[23m"; got != want {
		t.Errorf("Italic(hi) = %q, want %q", got, want)
	}
}
