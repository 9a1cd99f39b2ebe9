package chat

import "strings"

type commandKind int

const (
	cmdVoice commandKind = iota
	cmdText
	cmdSession
	cmdQuit
)

// parseCommand classifies a line typed at the idle prompt. Only a bare
// "t", "t=..." or "t ..." selects typed text, so a line like "to the
// store" is not mistaken for the text command with "o the store".
func parseCommand(line string) (commandKind, string) {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)
	switch {
	case lower == "q":
		return cmdQuit, ""
	case lower == "s":
		return cmdSession, ""
	case lower == "t", strings.HasPrefix(lower, "t="), strings.HasPrefix(lower, "t "):
		rest := strings.TrimSpace(line[1:])
		rest = strings.TrimPrefix(rest, "=")
		return cmdText, strings.TrimSpace(rest)
	default:
		return cmdVoice, ""
	}
}
