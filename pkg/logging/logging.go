// Package logging configures the process-wide slog logger for telechat.
//
// Every component logs through the default logger with key/value
// attributes ("session", "user", "channel", "err"), so Setup is the only
// place handlers are chosen:
//
//	logging.Setup(logging.Options{Level: "debug", Format: "json"})
//	slog.Info("user joined channel", "user", name, "channel", ch)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Handler formats accepted by Options.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Options controls how logging is configured.
type Options struct {
	Level  string    // debug, info, warn, error; empty means info
	Format string    // text or json; empty means text
	Output io.Writer // nil means os.Stdout
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseLevel maps a level name to slog.Level. Unknown names give info;
// use Validate to reject them instead.
func ParseLevel(level string) slog.Level {
	if l, ok := levels[normalize(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Validate returns an error if the level string is not recognized.
func Validate(level string) error {
	name := normalize(level)
	if _, ok := levels[name]; ok || name == "" {
		return nil
	}
	return fmt.Errorf("unknown log level %q (valid: %s)", level, LevelNames())
}

// ValidateFormat returns an error if the format string is not recognized.
func ValidateFormat(format string) error {
	switch normalize(format) {
	case FormatText, FormatJSON, "":
		return nil
	default:
		return fmt.Errorf("unknown log format %q (valid: %s)", format, Formats())
	}
}

// LevelNames lists the level names for --help text.
func LevelNames() string {
	return "debug, info, warn, error"
}

// Formats lists the handler formats for --help text.
func Formats() string {
	return FormatText + ", " + FormatJSON
}

// NewHandler builds the slog handler described by opts. Debug level adds
// source positions.
func NewHandler(opts Options) (slog.Handler, error) {
	if err := Validate(opts.Level); err != nil {
		return nil, err
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}

	if normalize(opts.Format) == FormatJSON {
		return slog.NewJSONHandler(out, hopts), nil
	}
	return slog.NewTextHandler(out, hopts), nil
}

// Setup installs the handler from opts as the slog default. Call it once
// at the top of main.
func Setup(opts Options) error {
	h, err := NewHandler(opts)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(h))
	return nil
}
