// Package domain defines the transport-neutral chat events the bot consumes and the replies it produces.
package domain

import "strings"

// Event is one inbound interaction from a chat user.
type Event struct {
	Identity int64 // Telegram user id; joins Session and flow state
	ChatID   int64 // where replies go
	Payload  Payload
}

// Payload is implemented only by Command, ButtonPress and TextInput.
type Payload interface {
	// Kind is "command", "button" or "text".
	Kind() string
	isPayload()
}

// Command is a slash command such as /start. Name has no leading slash and is lower case.
type Command struct {
	Name string
	Args string
}

// ButtonPress is a tap on an inline option. Data is the option key.
type ButtonPress struct {
	Data       string
	CallbackID string
}

// TextInput is any free text that is not a command.
type TextInput struct {
	Text string
}

func (Command) Kind() string     { return "command" }
func (ButtonPress) Kind() string { return "button" }
func (TextInput) Kind() string   { return "text" }

func (Command) isPayload()     {}
func (ButtonPress) isPayload() {}
func (TextInput) isPayload()   {}

// ParseText turns raw message text into a Command when it starts with "/", otherwise a TextInput.
// A bot mention suffix ("/start@copperx_bot") is dropped.
func ParseText(text string) Payload {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") || len(trimmed) == 1 {
		return TextInput{Text: text}
	}
	name, args, _ := strings.Cut(trimmed[1:], " ")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
}

// Describe returns a short log-safe label for the event: the command name or button key, never free text.
func (e Event) Describe() string {
	switch p := e.Payload.(type) {
	case Command:
		return "/" + p.Name
	case ButtonPress:
		return p.Data
	case TextInput:
		return "text"
	default:
		return "unknown"
	}
}
