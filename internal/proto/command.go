package proto

import (
	"strings"
	"unicode"
)

// CommandPrefix marks a line as a command rather than chat text.
const CommandPrefix = "#"

// Command names. Matching is case-sensitive.
const (
	CmdSetName     = "#setMyName"
	CmdSendPrivate = "#sendPrivate"
	CmdJoin        = "#join"
	CmdLeave       = "#leave"
	CmdGroups      = "#groups"
	CmdHelp        = "#help"
)

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandChat is a bare line broadcast to the sender's rooms.
	CommandChat CommandKind = iota
	// CommandSetName claims or changes the display name.
	CommandSetName
	// CommandSendPrivate delivers text to one named participant.
	CommandSendPrivate
	// CommandJoin subscribes the client to a room.
	CommandJoin
	// CommandLeave unsubscribes the client from a room.
	CommandLeave
	// CommandGroups lists the caller's rooms.
	CommandGroups
	// CommandHelp lists commands.
	CommandHelp
	// CommandUnknown is a prefixed line naming no known command.
	CommandUnknown
)

// Command represents an action requested by a client.
type Command struct {
	Kind   CommandKind
	Name   string // CommandSetName
	Target string // CommandSendPrivate
	Room   string // CommandJoin, CommandLeave
	Text   string // CommandChat, CommandSendPrivate
}

// UsageError reports a malformed command. Its message is the usage line
// sent back to the client.
type UsageError struct {
	Kind  CommandKind
	Usage string
}

func (e *UsageError) Error() string {
	return e.Usage
}

// IsCommand reports whether line starts with the command prefix.
func IsCommand(line string) bool {
	return strings.HasPrefix(line, CommandPrefix)
}

// ValidName reports whether s can be used as a display name: non-empty
// and free of whitespace.
func ValidName(s string) bool {
	return s != "" && !strings.ContainsFunc(s, unicode.IsSpace)
}

// Parse turns a trimmed, non-empty line into a Command. Lines without the
// command prefix are chat. On a usage error the returned Command still
// carries the recognized Kind.
func Parse(line string) (Command, error) {
	if !IsCommand(line) {
		return Command{Kind: CommandChat, Text: line}, nil
	}

	name, rest := cutToken(line)
	switch name {
	case CmdSetName:
		cmd := Command{Kind: CommandSetName}
		arg := strings.TrimSpace(rest)
		if !ValidName(arg) {
			return cmd, &UsageError{Kind: cmd.Kind, Usage: UsageSetName}
		}
		cmd.Name = arg
		return cmd, nil

	case CmdSendPrivate:
		cmd := Command{Kind: CommandSendPrivate}
		target, body := cutToken(rest)
		if target == "" || body == "" {
			return cmd, &UsageError{Kind: cmd.Kind, Usage: UsageSendPrivate}
		}
		cmd.Target = target
		cmd.Text = body
		return cmd, nil

	case CmdJoin, CmdLeave:
		cmd := Command{Kind: CommandJoin}
		usage := UsageJoin
		if name == CmdLeave {
			cmd.Kind = CommandLeave
			usage = UsageLeave
		}
		room := strings.TrimSpace(rest)
		if room == "" || strings.ContainsFunc(room, unicode.IsSpace) {
			return cmd, &UsageError{Kind: cmd.Kind, Usage: usage}
		}
		cmd.Room = room
		return cmd, nil

	case CmdGroups, CmdHelp:
		cmd := Command{Kind: CommandGroups}
		usage := UsageGroups
		if name == CmdHelp {
			cmd.Kind = CommandHelp
			usage = UsageHelp
		}
		if strings.TrimSpace(rest) != "" {
			return cmd, &UsageError{Kind: cmd.Kind, Usage: usage}
		}
		return cmd, nil
	}

	return Command{Kind: CommandUnknown, Text: line}, nil
}

// cutToken splits off the first whitespace-delimited token. rest keeps its
// inner whitespace but loses the separator run.
func cutToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
