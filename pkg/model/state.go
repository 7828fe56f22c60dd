package model

// State is a session's screen state.
type State int

const (
	StateConnected State = iota // connection open, not logged in
	StateLoggedIn               // authenticated, no channel
	StateJoined                 // member of a channel
	StateViewingUsers           // showing the member list; next input returns
	StateViewingChannels        // showing the channel list; next input returns
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateLoggedIn:
		return "logged_in"
	case StateJoined:
		return "joined"
	case StateViewingUsers:
		return "viewing_users"
	case StateViewingChannels:
		return "viewing_channels"
	default:
		return "unknown"
	}
}

// Viewing reports whether s is one of the transient listing states.
func (s State) Viewing() bool {
	return s == StateViewingUsers || s == StateViewingChannels
}

// commandTable lists, per base state, the error returned for each command.
// A nil entry means the command is allowed.
var commandTable = map[State]map[Command]error{
	StateConnected: {
		CmdLogin:    nil,
		CmdJoin:     ErrNotLoggedIn,
		CmdLeave:    ErrNoop,
		CmdUsers:    ErrNotInChannel,
		CmdChannels: nil,
		CmdSay:      ErrNotInChannel,
		CmdUnknown:  ErrUnknownCommand,
	},
	StateLoggedIn: {
		CmdLogin:    ErrAlreadyLoggedIn,
		CmdJoin:     nil,
		CmdLeave:    ErrNoop,
		CmdUsers:    ErrNotInChannel,
		CmdChannels: nil,
		CmdSay:      ErrNotInChannel,
		CmdUnknown:  ErrUnknownCommand,
	},
	StateJoined: {
		CmdLogin:    ErrAlreadyLoggedIn,
		CmdJoin:     nil,
		CmdLeave:    nil,
		CmdUsers:    nil,
		CmdChannels: nil,
		CmdSay:      nil,
		CmdUnknown:  ErrUnknownCommand,
	},
}

// Check reports whether cmd may run in state. Viewing states accept no
// commands: the next input only returns to the base state.
func Check(state State, cmd Command) error {
	if state.Viewing() {
		return ErrNoop
	}
	perms, ok := commandTable[state]
	if !ok {
		return ErrUnknownCommand
	}
	err, ok := perms[cmd]
	if !ok {
		return ErrUnknownCommand
	}
	return err
}

// Next returns the state after cmd succeeded in state.
func Next(state State, cmd Command) State {
	switch cmd {
	case CmdLogin:
		return StateLoggedIn
	case CmdJoin:
		return StateJoined
	case CmdUsers:
		return StateViewingUsers
	case CmdChannels:
		return StateViewingChannels
	case CmdLeave:
		return StateLoggedIn
	default:
		return state
	}
}
