// Package engine runs multi-step chat flows declared as step tables.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	chat "copperx-bot/internal/chat/domain"
	flowdomain "copperx-bot/internal/flow/domain"
	"copperx-bot/internal/log"
	sessiondomain "copperx-bot/internal/session/domain"
)

// CancelKey is the button key that abandons any active flow.
const CancelKey = "cancel_transfer"

var (
	// MenuOption returns the user to the main menu.
	MenuOption = chat.Option{Label: "Back to Menu", Key: "menu"}
	// LoginOption starts the login flow.
	LoginOption = chat.Option{Label: "Login", Key: "login"}
)

const (
	msgCancelled      = "Transfer cancelled."
	msgSessionExpired = "Session expired. Please login again."
	msgChooseOption   = "Please choose one of the options below."
	msgInternal       = "Something went wrong with this operation. Please start again."
)

// FlowRepo is the minimal flow store the engine needs.
type FlowRepo interface {
	Save(ctx context.Context, identity int64, st *flowdomain.State)
	Get(ctx context.Context, identity int64) (*flowdomain.State, bool)
	Remove(ctx context.Context, identity int64)
}

// SessionRepo is the minimal session store the engine needs.
type SessionRepo interface {
	Get(ctx context.Context, identity int64) (*sessiondomain.Session, bool)
	IsLive(ctx context.Context, identity int64) bool
}

// Engine interprets flow Definitions against the per-identity flow store.
// It does not lock: callers serialize events per identity.
type Engine struct {
	flows    FlowRepo
	sessions SessionRepo
	defs     map[flowdomain.FlowID]*Definition
	metrics  *counters
	nowF     func() time.Time
}

// New returns an Engine with the given flow definitions registered.
func New(flows FlowRepo, sessions SessionRepo, defs ...*Definition) *Engine {
	e := &Engine{
		flows:    flows,
		sessions: sessions,
		defs:     make(map[flowdomain.FlowID]*Definition, len(defs)),
		metrics:  newCounters(),
		nowF:     time.Now,
	}
	for _, d := range defs {
		e.Register(d)
	}
	return e
}

// Register adds or replaces a flow definition.
func (e *Engine) Register(def *Definition) {
	if def == nil {
		return
	}
	e.defs[def.ID] = def
}

// Definition returns the registered definition for id.
func (e *Engine) Definition(id flowdomain.FlowID) (*Definition, bool) {
	d, ok := e.defs[id]
	return d, ok
}

// Active returns the flow the identity is currently in.
func (e *Engine) Active(ctx context.Context, identity int64) (flowdomain.FlowID, bool) {
	st, ok := e.flows.Get(ctx, identity)
	if !ok {
		return "", false
	}
	return st.Flow, true
}

// InPublicFlow reports whether the identity's active flow accepts input without a session.
func (e *Engine) InPublicFlow(ctx context.Context, identity int64) bool {
	id, ok := e.Active(ctx, identity)
	if !ok {
		return false
	}
	d, ok := e.defs[id]
	return ok && d.Public
}

// Start begins flow id for the event's identity, replacing any stale flow, and returns the first prompt.
func (e *Engine) Start(ctx context.Context, ev chat.Event, id flowdomain.FlowID) []chat.Reply {
	def, ok := e.defs[id]
	if !ok || len(def.Steps) == 0 {
		return e.abort(ctx, ev.Identity, fmt.Errorf("%w: unknown or empty flow %q", ErrInvariant, id))
	}
	if def.RequiresSession && !e.sessions.IsLive(ctx, ev.Identity) {
		e.flows.Remove(ctx, ev.Identity)
		return sessionExpired()
	}
	if prev, ok := e.flows.Get(ctx, ev.Identity); ok {
		log.Debug(ctx).Str("flow", string(prev.Flow)).Int("step", prev.Step).Msg("flow: replacing stale flow")
	}
	st := &flowdomain.State{
		Flow:      id,
		Step:      0,
		Data:      make(map[string]string),
		StartedAt: e.nowF(),
	}
	e.flows.Save(ctx, ev.Identity, st)
	e.metrics.add(ctx, e.metrics.started, id)
	return []chat.Reply{def.Steps[0].prompt(st.Data)}
}

// Cancel tears down the identity's active flow. It reports whether one existed.
func (e *Engine) Cancel(ctx context.Context, identity int64) bool {
	st, ok := e.flows.Get(ctx, identity)
	if !ok {
		return false
	}
	e.flows.Remove(ctx, identity)
	e.metrics.add(ctx, e.metrics.cancelled, st.Flow)
	return true
}

// Handle feeds ev to the identity's active flow. handled is false when no flow is active or the
// event is not flow input (commands, and buttons the current step does not offer).
func (e *Engine) Handle(ctx context.Context, ev chat.Event) (replies []chat.Reply, handled bool) {
	st, ok := e.flows.Get(ctx, ev.Identity)
	if !ok {
		return nil, false
	}

	switch p := ev.Payload.(type) {
	case chat.Command:
		return nil, false
	case chat.ButtonPress:
		if p.Data == CancelKey {
			e.Cancel(ctx, ev.Identity)
			return []chat.Reply{chat.Text(msgCancelled, MenuOption)}, true
		}
		def, step, err := e.current(st)
		if err != nil {
			return e.abort(ctx, ev.Identity, err), true
		}
		if step.Kind != KindChoice {
			return nil, false
		}
		c, ok := step.choice(p.Data)
		if !ok {
			return nil, false
		}
		return e.advance(ctx, ev, def, st, c.Value), true
	case chat.TextInput:
		def, step, err := e.current(st)
		if err != nil {
			return e.abort(ctx, ev.Identity, err), true
		}
		if def.RequiresSession && !e.sessions.IsLive(ctx, ev.Identity) {
			e.terminate(ctx, ev.Identity, st.Flow)
			return sessionExpired(), true
		}
		if step.Kind == KindChoice {
			e.metrics.add(ctx, e.metrics.rejected, st.Flow)
			r := step.prompt(st.Data)
			r.Text = msgChooseOption
			r.Markdown = false
			return []chat.Reply{r}, true
		}
		value := strings.TrimSpace(p.Text)
		if step.Validate != nil {
			value, err = step.Validate(p.Text)
			if err != nil {
				return e.reject(ctx, st, err), true
			}
		}
		return e.advance(ctx, ev, def, st, value), true
	default:
		return e.abort(ctx, ev.Identity, fmt.Errorf("%w: unexpected payload %T", ErrInvariant, p)), true
	}
}

func (e *Engine) current(st *flowdomain.State) (*Definition, *Step, error) {
	def, ok := e.defs[st.Flow]
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown flow %q", ErrInvariant, st.Flow)
	}
	if st.Step < 0 || st.Step >= len(def.Steps) {
		return nil, nil, fmt.Errorf("%w: flow %q step %d out of range [0,%d)", ErrInvariant, st.Flow, st.Step, len(def.Steps))
	}
	return def, &def.Steps[st.Step], nil
}

// reject re-prompts the same step; state is left untouched.
func (e *Engine) reject(ctx context.Context, st *flowdomain.State, err error) []chat.Reply {
	e.metrics.add(ctx, e.metrics.rejected, st.Flow)
	var ie *InputError
	if errors.As(err, &ie) {
		return []chat.Reply{chat.Text(ie.Message)}
	}
	return []chat.Reply{chat.Text(err.Error())}
}

// advance stores value, runs the step effect and moves to the next step or completes the flow.
func (e *Engine) advance(ctx context.Context, ev chat.Event, def *Definition, st *flowdomain.State, value string) []chat.Reply {
	step := def.Steps[st.Step]
	in := Input{Event: ev, Data: st.Data}
	if def.RequiresSession {
		sess, ok := e.liveSession(ctx, ev.Identity)
		if !ok {
			e.terminate(ctx, ev.Identity, st.Flow)
			return sessionExpired()
		}
		in.Session = sess
	}

	if step.Field != "" {
		st.Data[step.Field] = value
	}
	if step.Effect != nil {
		if err := step.Effect(ctx, in); err != nil {
			log.Warn(ctx).Err(err).Str("flow", string(st.Flow)).Str("field", step.Field).Msg("flow: step effect failed")
			e.terminate(ctx, ev.Identity, st.Flow)
			e.metrics.add(ctx, e.metrics.failed, st.Flow)
			return []chat.Reply{e.failureReply(def, err)}
		}
	}

	st.Step++
	e.flows.Save(ctx, ev.Identity, st)
	if st.Step < len(def.Steps) {
		return []chat.Reply{def.Steps[st.Step].prompt(st.Data)}
	}
	return e.complete(ctx, def, st, in)
}

// complete runs the completion action. The flow state is torn down whatever the outcome.
func (e *Engine) complete(ctx context.Context, def *Definition, st *flowdomain.State, in Input) []chat.Reply {
	defer e.flows.Remove(ctx, in.Event.Identity)
	if def.Complete == nil {
		e.metrics.add(ctx, e.metrics.completed, st.Flow)
		return nil
	}
	replies, err := def.Complete(ctx, in)
	if err != nil {
		if errors.Is(err, ErrSessionMissing) {
			e.metrics.add(ctx, e.metrics.failed, st.Flow)
			return sessionExpired()
		}
		log.Warn(ctx).Err(err).Str("flow", string(st.Flow)).Msg("flow: completion failed")
		e.metrics.add(ctx, e.metrics.failed, st.Flow)
		return []chat.Reply{e.failureReply(def, err)}
	}
	e.metrics.add(ctx, e.metrics.completed, st.Flow)
	return replies
}

func (e *Engine) failureReply(def *Definition, err error) chat.Reply {
	row := make([]chat.Option, 0, 2)
	if def.RetryKey != "" {
		row = append(row, chat.Option{Label: "Try Again", Key: def.RetryKey})
	}
	row = append(row, MenuOption)
	return chat.Reply{Text: userMessage(err), Options: [][]chat.Option{row}}
}

func (e *Engine) liveSession(ctx context.Context, identity int64) (*sessiondomain.Session, bool) {
	if !e.sessions.IsLive(ctx, identity) {
		return nil, false
	}
	return e.sessions.Get(ctx, identity)
}

func (e *Engine) terminate(ctx context.Context, identity int64, id flowdomain.FlowID) {
	e.flows.Remove(ctx, identity)
	log.Debug(ctx).Str("flow", string(id)).Msg("flow: terminated")
}

// abort clears state that the engine cannot interpret.
func (e *Engine) abort(ctx context.Context, identity int64, err error) []chat.Reply {
	log.Error(ctx).Err(err).Int64("identity", identity).Msg("flow: aborting")
	e.flows.Remove(ctx, identity)
	return []chat.Reply{chat.Text(msgInternal, MenuOption)}
}

func sessionExpired() []chat.Reply {
	return []chat.Reply{chat.Text(msgSessionExpired, LoginOption)}
}
