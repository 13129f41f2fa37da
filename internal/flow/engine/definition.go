package engine

import (
	"context"

	chat "copperx-bot/internal/chat/domain"
	flowdomain "copperx-bot/internal/flow/domain"
	sessiondomain "copperx-bot/internal/session/domain"
)

// StepKind says what input a step accepts.
type StepKind int

const (
	// KindText steps accept free text and run Validate.
	KindText StepKind = iota
	// KindChoice steps accept only a ButtonPress whose key is one of Choices.
	KindChoice
)

// Choice is one option of a KindChoice step. Value is what gets stored under the step's Field.
type Choice struct {
	Label string
	Key   string
	Value string
}

// Input is what effects and completions see.
type Input struct {
	Event   chat.Event
	Data    map[string]string
	Session *sessiondomain.Session // nil for flows that do not require a session
}

// Step is one row of a flow table.
type Step struct {
	// Field is the Data key the accepted value is stored under.
	Field string
	Kind  StepKind
	// Prompt builds the message asking for this step's input. Choice steps get their
	// Choices rendered as options when the returned reply has none.
	Prompt func(data map[string]string) chat.Reply
	// Validate normalizes text input. Return an *InputError (see Invalid) to re-prompt.
	// Nil accepts the trimmed text.
	Validate func(text string) (string, error)
	Choices  []Choice
	// Effect runs after the value is stored and before the flow advances.
	// An error terminates the flow.
	Effect func(ctx context.Context, in Input) error
}

// Definition is a named flow: an ordered step table plus a completion action.
type Definition struct {
	ID    flowdomain.FlowID
	Steps []Step
	// RequiresSession makes every step check for a live session.
	RequiresSession bool
	// Public flows accept text input from identities without a session (login).
	Public bool
	// Complete runs once all steps have advanced. Returned replies are sent on success;
	// an error ends the flow with a failure message and a retry option.
	Complete func(ctx context.Context, in Input) ([]chat.Reply, error)
	// RetryKey is the button key offered as "Try Again" after a completion failure.
	RetryKey string
}

func (s *Step) choice(key string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.Key == key {
			return c, true
		}
	}
	return Choice{}, false
}

func (s *Step) prompt(data map[string]string) chat.Reply {
	var r chat.Reply
	if s.Prompt != nil {
		r = s.Prompt(data)
	}
	if s.Kind == KindChoice && len(r.Options) == 0 {
		opts := make([]chat.Option, 0, len(s.Choices))
		for _, c := range s.Choices {
			opts = append(opts, chat.Option{Label: c.Label, Key: c.Key})
		}
		r.Options = chat.Column(opts...)
	}
	return r
}

// StaticPrompt returns a Prompt that ignores data.
func StaticPrompt(text string) func(map[string]string) chat.Reply {
	return func(map[string]string) chat.Reply { return chat.Text(text) }
}
