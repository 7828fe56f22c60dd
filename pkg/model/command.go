package model

import "strings"

// CommandPrefix starts every slash command.
const CommandPrefix = "/"

// Command identifies what an input line asks for.
type Command int

const (
	CmdSay Command = iota // free text, broadcast to the channel
	CmdLogin
	CmdJoin
	CmdLeave
	CmdUsers
	CmdChannels
	CmdUnknown
)

var commandNames = map[string]Command{
	"/login":    CmdLogin,
	"/join":     CmdJoin,
	"/leave":    CmdLeave,
	"/users":    CmdUsers,
	"/channels": CmdChannels,
}

func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	if c == CmdSay {
		return "say"
	}
	return "unknown"
}

// Input is a parsed logical line.
type Input struct {
	Cmd  Command
	Name string   // the command token as typed, e.g. "/join"
	Args []string // tokens after the command
	Text string   // trimmed line, used for CmdSay
}

// ParseInput classifies a trimmed, non-empty logical line. Command tokens
// are case-sensitive and space-separated.
func ParseInput(line string) Input {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, CommandPrefix) {
		return Input{Cmd: CmdSay, Text: line}
	}
	tokens := strings.Fields(line)
	cmd, ok := commandNames[tokens[0]]
	if !ok {
		cmd = CmdUnknown
	}
	return Input{Cmd: cmd, Name: tokens[0], Args: tokens[1:], Text: line}
}

// Arg returns the i-th argument or "".
func (in Input) Arg(i int) string {
	if i < len(in.Args) {
		return in.Args[i]
	}
	return ""
}
