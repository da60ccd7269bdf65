package proto

import (
	"fmt"
	"strings"
)

// LineTerminator ends every outbound line on stream transports.
const LineTerminator = "\r\n"

// Usage lines for malformed commands.
const (
	UsageSetName     = "Usage: #setMyName <name> (no spaces)"
	UsageSendPrivate = "Usage: #sendPrivate <name> <message>"
	UsageJoin        = "Usage: #join <room>"
	UsageLeave       = "Usage: #leave <room>"
	UsageGroups      = "Usage: #groups"
	UsageHelp        = "Usage: #help"
)

// Fixed diagnostics.
const (
	MsgInvalidName    = "Invalid name. Use '#setMyName <name>' and do not use spaces."
	MsgUnknownCommand = "Unknown command. Type #help."
	MsgHelp           = "Commands: #setMyName <name>, #sendPrivate <name> <msg>, #join <room>, #leave <room>, #groups, #help"
)

// FormatChat renders a room broadcast line.
func FormatChat(name, text string) string {
	return fmt.Sprintf("[%s] >> %s", name, text)
}

// FormatPrivate renders a private message line.
func FormatPrivate(sender, text string) string {
	return fmt.Sprintf("[private][%s] >> %s", sender, text)
}

// FormatAnnouncement renders a server-originated line sent to everyone.
func FormatAnnouncement(text string) string {
	return FormatChat("server", text)
}

// FormatRoomList joins room names with commas.
func FormatRoomList(rooms []string) string {
	return strings.Join(rooms, ",")
}

// Banner is written to a client before anything else.
func Banner(connID, defaultRoom string) []string {
	return []string{
		"",
		"You are connected from " + connID,
		"Welcome to IM server.",
		"Enter your name (no spaces), or type '#setMyName <name>'",
		fmt.Sprintf("You are in room '%s' by default. Type #help for help.", defaultRoom),
	}
}

func NameSet(name string) string {
	return fmt.Sprintf("Name set to '%s'. You can now chat.", name)
}

func NameTakenRetry(name string) string {
	return fmt.Sprintf("Name '%s' is already taken. Try another.", name)
}

func NameChanged(name string) string {
	return fmt.Sprintf("Name changed to '%s'.", name)
}

func NameTaken(name string) string {
	return fmt.Sprintf("Name '%s' is already taken.", name)
}

func UserNotFound(name string) string {
	return fmt.Sprintf("User '%s' not found.", name)
}

func JoinedRoom(room string) string {
	return fmt.Sprintf("Joined room '%s'.", room)
}

func LeftRoom(room string) string {
	return fmt.Sprintf("Left room '%s'.", room)
}
