package core

import "strings"

// CommandKind enumerates the closed set of protocol commands.
type CommandKind int

const (
	// CommandUnknown is any verb outside the protocol. Dropped silently.
	CommandUnknown CommandKind = iota
	CommandNick
	CommandCreate
	CommandJoin
	CommandPart
	CommandMsg
	CommandPrivMsg
	CommandWho
	CommandList
	CommandTopic
	CommandKick
	CommandBan
	CommandUnban
	CommandMute
	CommandUnmute
	CommandWhoAmI
	CommandQuit
)

// Command is a parsed protocol line. Only the fields relevant to the
// kind are populated.
type Command struct {
	Kind     CommandKind
	Nick     string
	Room     string
	Password string
	Text     string
	Reason   string
}

// ParseLine tokenizes one trimmed protocol line into a typed command.
// The first token is the verb, matched case-sensitively; the rest are
// positional arguments separated by single spaces. A missing required
// argument yields a malformed-command error with a usage hint.
func ParseLine(line string) (Command, *CoreError) {
	parts := strings.Split(line, " ")
	verb, args := parts[0], parts[1:]

	switch verb {
	case "NICK":
		// Emptiness is a distinct protocol error, checked by the handler.
		return Command{Kind: CommandNick, Nick: arg(args, 0)}, nil
	case "CREATE":
		if arg(args, 0) == "" {
			return Command{}, malformed("CREATE <room> [password]")
		}
		return Command{Kind: CommandCreate, Room: args[0], Password: arg(args, 1)}, nil
	case "JOIN":
		if arg(args, 0) == "" {
			return Command{}, malformed("JOIN <room> [password]")
		}
		return Command{Kind: CommandJoin, Room: args[0], Password: arg(args, 1)}, nil
	case "PART":
		if arg(args, 0) == "" {
			return Command{}, malformed("PART <room>")
		}
		return Command{Kind: CommandPart, Room: args[0]}, nil
	case "MSG":
		if len(args) < 2 {
			return Command{}, malformed("MSG <room> <message>")
		}
		return Command{Kind: CommandMsg, Room: args[0], Text: rest(args, 1)}, nil
	case "PMSG":
		if len(args) < 2 {
			return Command{}, malformed("PMSG <nick> <message>")
		}
		return Command{Kind: CommandPrivMsg, Nick: args[0], Text: strings.Join(args[1:], " ")}, nil
	case "WHO":
		if arg(args, 0) == "" {
			return Command{}, malformed("WHO <room>")
		}
		return Command{Kind: CommandWho, Room: args[0]}, nil
	case "LIST":
		return Command{Kind: CommandList}, nil
	case "TOPIC":
		if arg(args, 0) == "" {
			return Command{}, malformed("TOPIC <room> <text>")
		}
		return Command{Kind: CommandTopic, Room: args[0], Text: rest(args, 1)}, nil
	case "KICK":
		if arg(args, 0) == "" {
			return Command{}, malformed("KICK <nick> [reason]")
		}
		return Command{Kind: CommandKick, Nick: args[0], Reason: strings.Join(args[1:], " ")}, nil
	case "BAN":
		if arg(args, 0) == "" {
			return Command{}, malformed("BAN <nick>")
		}
		return Command{Kind: CommandBan, Nick: args[0]}, nil
	case "UNBAN":
		if arg(args, 0) == "" {
			return Command{}, malformed("UNBAN <nick>")
		}
		return Command{Kind: CommandUnban, Nick: args[0]}, nil
	case "MUTE":
		if arg(args, 0) == "" {
			return Command{}, malformed("MUTE <nick>")
		}
		return Command{Kind: CommandMute, Nick: args[0]}, nil
	case "UNMUTE":
		if arg(args, 0) == "" {
			return Command{}, malformed("UNMUTE <nick>")
		}
		return Command{Kind: CommandUnmute, Nick: args[0]}, nil
	case "WHOAMI":
		return Command{Kind: CommandWhoAmI}, nil
	case "QUIT":
		return Command{Kind: CommandQuit}, nil
	default:
		return Command{Kind: CommandUnknown}, nil
	}
}

func arg(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i]
}

// rest joins the trailing arguments into free text, stripping the
// IRC-style leading colon.
func rest(args []string, from int) string {
	return strings.TrimPrefix(strings.Join(args[from:], " "), ":")
}

func malformed(usage string) *CoreError {
	return coreError(ErrCodeMalformed, "Usage: "+usage)
}
