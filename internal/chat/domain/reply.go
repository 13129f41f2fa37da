package domain

import "context"

// Option is a labeled choice rendered as an inline button. Key is what comes back in ButtonPress.Data.
type Option struct {
	Label string
	Key   string
}

// Reply is one outbound message.
type Reply struct {
	Text     string
	Markdown bool
	// Options are laid out as rows of buttons. Keys are unique within a reply.
	Options [][]Option
}

// Text returns a plain reply with optional single-column options.
func Text(text string, opts ...Option) Reply {
	return Reply{Text: text, Options: Column(opts...)}
}

// Markdown returns a Markdown reply with optional single-column options.
func Markdown(text string, opts ...Option) Reply {
	return Reply{Text: text, Markdown: true, Options: Column(opts...)}
}

// Column lays options out one per row.
func Column(opts ...Option) [][]Option {
	if len(opts) == 0 {
		return nil
	}
	rows := make([][]Option, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []Option{o})
	}
	return rows
}

// Handler turns an event into zero or more replies.
type Handler interface {
	Handle(ctx context.Context, ev Event) []Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) []Reply

// Handle calls f(ctx, ev).
func (f HandlerFunc) Handle(ctx context.Context, ev Event) []Reply {
	return f(ctx, ev)
}

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Chain applies mws so that the first one is outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
