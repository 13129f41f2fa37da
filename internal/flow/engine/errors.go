package engine

import "errors"

// Sentinel errors for the flow engine; wrap with %w and test with errors.Is.
var (
	// ErrValidation marks step input that failed its format check. The step is re-prompted.
	ErrValidation = errors.New("invalid input")
	// ErrSessionMissing marks a flow step that needs a live session when none exists.
	ErrSessionMissing = errors.New("session missing or expired")
	// ErrRemote marks a failed Copperx call made by a step effect or completion.
	ErrRemote = errors.New("remote call failed")
	// ErrInvariant marks flow state that cannot be interpreted (unknown flow, step out of range).
	ErrInvariant = errors.New("flow invariant violated")
)

// InputError rejects step input. Message is shown to the user as the re-prompt.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Unwrap returns ErrValidation.
func (e *InputError) Unwrap() error { return ErrValidation }

// Invalid returns an *InputError with msg.
func Invalid(msg string) error {
	return &InputError{Message: msg}
}

// Failure is a flow-ending error whose Message is shown to the user verbatim.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Message
	}
	return f.Message + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// Fail returns a *Failure that shows msg to the user and wraps err.
func Fail(msg string, err error) error {
	return &Failure{Message: msg, Err: err}
}

// userMessage picks the text to show for a flow-ending error.
func userMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return "❌ " + err.Error()
}
