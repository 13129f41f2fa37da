package engine

import "context"

// GateInput describes an inbound chat event for the login-gate exemption decision.
type GateInput struct {
	// Kind is "command", "button" or "text".
	Kind string `json:"kind"`
	// Name is the command name or button key; empty for text.
	Name string `json:"name"`
	// InPublicFlow is true when the identity is in a flow that runs without a session (login).
	InPublicFlow bool `json:"in_public_flow"`
}

// Evaluator decides whether an event may bypass the session check.
type Evaluator interface {
	Exempt(ctx context.Context, in GateInput) bool
}

// StaticEvaluator is the built-in exemption table. It is also the fallback when Rego evaluation fails.
type StaticEvaluator struct{}

var (
	publicCommands = map[string]bool{"start": true, "help": true}
	publicButtons  = map[string]bool{"login": true}
)

// Exempt mirrors the default Rego policy.
func (StaticEvaluator) Exempt(_ context.Context, in GateInput) bool {
	switch in.Kind {
	case "command":
		return publicCommands[in.Name] || (in.Name == "cancel" && in.InPublicFlow)
	case "button":
		return publicButtons[in.Name]
	case "text":
		return in.InPublicFlow
	default:
		return false
	}
}
