package asset

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Command is the last instruction the server gave an asset.
type Command int

const (
	CommandNone Command = iota
	CommandContinue
	CommandGoto
	CommandRTL
	CommandCircle
	CommandAbandonSearch
	CommandMissionComplete
	CommandUnknown
)

var actionCodes = map[string]Command{
	"GOTO": CommandGoto,
	"RON":  CommandContinue,
	"RTL":  CommandRTL,
	"CIR":  CommandCircle,
	"AS":   CommandAbandonSearch,
	"MC":   CommandMissionComplete,
}

// ParseAction maps a server action code to a Command.
func ParseAction(code string) Command {
	if c, ok := actionCodes[code]; ok {
		return c
	}
	return CommandUnknown
}

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandContinue:
		return "continue"
	case CommandGoto:
		return "goto"
	case CommandRTL:
		return "return to launch"
	case CommandCircle:
		return "circle"
	case CommandAbandonSearch:
		return "abandon search"
	case CommandMissionComplete:
		return "mission complete"
	default:
		return "unknown"
	}
}

// commandUpdate is the decoded outcome of a position report.
type commandUpdate struct {
	command  Command
	lat, lon float64
	// changed is false when the reply carried no action at all
	changed bool
}

func decodeCommandJSON(body []byte) commandUpdate {
	if !gjson.ValidBytes(body) {
		return commandUpdate{command: CommandUnknown, changed: true}
	}
	root := gjson.ParseBytes(body)
	action := root.Get("action")
	if !action.Exists() {
		return commandUpdate{}
	}
	u := commandUpdate{command: ParseAction(action.String()), changed: true}
	if u.command == CommandGoto {
		u.lat = root.Get("latitude").Float()
		u.lon = root.Get("longitude").Float()
	}
	return u
}

func decodeCommandText(body []byte) commandUpdate {
	if strings.TrimSpace(string(body)) == "Continue" {
		return commandUpdate{command: CommandContinue, changed: true}
	}
	return commandUpdate{command: CommandNone, changed: true}
}
