// Package handler answers the bot's commands and menu buttons. Flow input is routed to the flow engine first.
package handler

import (
	"context"
	"strings"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/copperx"
	flowdomain "copperx-bot/internal/flow/domain"
	"copperx-bot/internal/log"
	sessiondomain "copperx-bot/internal/session/domain"
)

// Button keys handled outside flows.
const (
	KeyMenu               = "menu"
	KeyCheckBalance       = "check_balance"
	KeySendMoney          = "send_money"
	KeyTransactionHistory = "transaction_history"
	KeyProfile            = "profile"
	KeyHelp               = "help"
	KeySetDefaultWallet   = "set_default_wallet"
	KeyCancelTransfer     = "cancel_transfer"

	setDefaultPrefix = "set_default:"
)

// API is the read side of the Copperx client plus default-wallet selection.
type API interface {
	GetBalances(ctx context.Context, token string) ([]copperx.WalletBalance, error)
	ListWallets(ctx context.Context, token string) ([]copperx.Wallet, error)
	GetDefaultWallet(ctx context.Context, token string) (*copperx.Wallet, error)
	SetDefaultWallet(ctx context.Context, token, walletID string) error
	ListTransactions(ctx context.Context, token string, page, limit int) ([]copperx.Transaction, error)
	GetProfile(ctx context.Context, token string) (*copperx.Profile, error)
	GetKYCStatus(ctx context.Context, token string) (*copperx.KYCStatus, error)
}

// SessionStore is the part of the session store the handlers use.
type SessionStore interface {
	Get(ctx context.Context, identity int64) (*sessiondomain.Session, bool)
	IsLive(ctx context.Context, identity int64) bool
	Remove(ctx context.Context, identity int64)
}

// FlowRunner is the flow engine.
type FlowRunner interface {
	Handle(ctx context.Context, ev chat.Event) ([]chat.Reply, bool)
	Start(ctx context.Context, ev chat.Event, id flowdomain.FlowID) []chat.Reply
	Cancel(ctx context.Context, identity int64) bool
}

// NotificationStopper ends deposit notifications on logout.
type NotificationStopper interface {
	Stop(identity int64)
}

// Handler is the innermost chat.Handler of the bot.
type Handler struct {
	api      API
	sessions SessionStore
	flows    FlowRunner
	notifier NotificationStopper

	commands map[string]func(context.Context, chat.Event) []chat.Reply
	buttons  map[string]func(context.Context, chat.Event) []chat.Reply
}

// New returns a Handler. notifier may be nil when notifications are disabled.
func New(api API, sessions SessionStore, flows FlowRunner, notifier NotificationStopper) *Handler {
	h := &Handler{
		api:      api,
		sessions: sessions,
		flows:    flows,
		notifier: notifier,
	}
	h.commands = map[string]func(context.Context, chat.Event) []chat.Reply{
		"start":        h.start,
		"menu":         h.menu,
		"balance":      h.balance,
		"send":         h.sendMenu,
		"transactions": h.transactions,
		"profile":      h.profile,
		"help":         h.help,
		"logout":       h.logout,
		"cancel":       h.cancel,
	}
	h.buttons = map[string]func(context.Context, chat.Event) []chat.Reply{
		"login":               h.startFlow(flowdomain.FlowLogin),
		KeyMenu:               h.menu,
		KeyCheckBalance:       h.balance,
		KeySendMoney:          h.sendMenu,
		KeyTransactionHistory: h.transactions,
		KeyProfile:            h.profile,
		KeyHelp:               h.help,
		KeySetDefaultWallet:   h.walletPicker,
		"send_email":          h.startFlow(flowdomain.FlowSendEmail),
		"send_wallet":         h.startFlow(flowdomain.FlowSendWallet),
		"withdraw_bank":       h.startFlow(flowdomain.FlowWithdrawBank),
		KeyCancelTransfer:     h.cancelTransfer,
	}
	return h
}

// Handle routes ev. The active flow sees the event first; commands and unknown buttons fall through.
func (h *Handler) Handle(ctx context.Context, ev chat.Event) []chat.Reply {
	if replies, handled := h.flows.Handle(ctx, ev); handled {
		return replies
	}
	switch p := ev.Payload.(type) {
	case chat.Command:
		if fn, ok := h.commands[p.Name]; ok {
			return fn(ctx, ev)
		}
		return []chat.Reply{chat.Text(msgUnknownCommand)}
	case chat.ButtonPress:
		if fn, ok := h.buttons[p.Data]; ok {
			return fn(ctx, ev)
		}
		if walletID, ok := strings.CutPrefix(p.Data, setDefaultPrefix); ok && walletID != "" {
			return h.setDefaultWallet(ctx, ev, walletID)
		}
		log.Debug(ctx).Str("button", p.Data).Msg("handler: unknown button")
		return []chat.Reply{chat.Text(msgInvalidOption)}
	case chat.TextInput:
		return []chat.Reply{chat.Text(msgUnexpectedText, menuOption)}
	default:
		return nil
	}
}

func (h *Handler) startFlow(id flowdomain.FlowID) func(context.Context, chat.Event) []chat.Reply {
	return func(ctx context.Context, ev chat.Event) []chat.Reply {
		return h.flows.Start(ctx, ev, id)
	}
}

// session returns the live session or the reply to send instead.
func (h *Handler) session(ctx context.Context, identity int64) (*sessiondomain.Session, []chat.Reply) {
	if h.sessions.IsLive(ctx, identity) {
		if s, ok := h.sessions.Get(ctx, identity); ok {
			return s, nil
		}
	}
	return nil, []chat.Reply{chat.Text(msgLoginFirst)}
}
