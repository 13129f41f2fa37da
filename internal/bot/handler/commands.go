package handler

import (
	"context"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/log"
)

const (
	msgWelcome         = "Welcome to Copperx Telegram Bot! Please login to access your account."
	msgAlreadyLoggedIn = "You are already logged in. Use /menu to access functions or /logout to sign out."
	msgNotLoggedIn     = "You are not logged in."
	msgLoggedOut       = "You have been logged out. Use /start to login again."
	msgLoginFirst      = "You need to login first. Use /start to begin."
	msgInvalidOption   = "Invalid option. Please try again."
	msgUnknownCommand  = "Unknown command. Use /help to see what I can do."
	msgUnexpectedText  = "I didn't understand that. Use the menu to choose an action."
	msgNothingToCancel = "Nothing to cancel."
	msgCancelled       = "Cancelled."
	msgTransferClosed  = "Transfer cancelled."

	msgMenu = "📱 *Copperx Menu*\n\nPlease select an option:"
	msgSend = "💸 *Send Funds*\n\nHow would you like to send funds?"
	msgHelp = "*Copperx Telegram Bot Help*\n\n" +
		"💰 *Available Commands:*\n" +
		"/start - Begin using the bot or login\n" +
		"/menu - Show the main menu\n" +
		"/balance - View your wallet balances\n" +
		"/send - Send money to email or wallet\n" +
		"/transactions - View recent transactions\n" +
		"/profile - View your account profile\n" +
		"/help - Show this help message\n" +
		"/logout - Sign out from your account\n" +
		"/cancel - Abandon the current operation\n\n" +
		"For additional support or questions, please contact:\n" +
		"https://t.me/copperxcommunity/2183"
)

var (
	menuOption  = chat.Option{Label: "Back to Menu", Key: KeyMenu}
	loginOption = chat.Option{Label: "Login", Key: "login"}
)

func (h *Handler) start(ctx context.Context, ev chat.Event) []chat.Reply {
	if h.sessions.IsLive(ctx, ev.Identity) {
		return []chat.Reply{chat.Text(msgAlreadyLoggedIn)}
	}
	return []chat.Reply{chat.Text(msgWelcome, loginOption)}
}

func (h *Handler) menu(ctx context.Context, ev chat.Event) []chat.Reply {
	return []chat.Reply{chat.Markdown(msgMenu,
		chat.Option{Label: "💰 Check Balance", Key: KeyCheckBalance},
		chat.Option{Label: "💸 Send Money", Key: KeySendMoney},
		chat.Option{Label: "📊 Transaction History", Key: KeyTransactionHistory},
		chat.Option{Label: "👤 My Profile", Key: KeyProfile},
		chat.Option{Label: "❓ Help & Support", Key: KeyHelp},
	)}
}

func (h *Handler) sendMenu(ctx context.Context, ev chat.Event) []chat.Reply {
	if _, denied := h.session(ctx, ev.Identity); denied != nil {
		return denied
	}
	return []chat.Reply{chat.Markdown(msgSend,
		chat.Option{Label: "Send to Email", Key: "send_email"},
		chat.Option{Label: "Send to Wallet", Key: "send_wallet"},
		chat.Option{Label: "Withdraw to Bank", Key: "withdraw_bank"},
		menuOption,
	)}
}

func (h *Handler) help(ctx context.Context, ev chat.Event) []chat.Reply {
	return []chat.Reply{chat.Markdown(msgHelp, menuOption)}
}

// logout drops the session and any flow, and stops deposit notifications.
func (h *Handler) logout(ctx context.Context, ev chat.Event) []chat.Reply {
	if !h.sessions.IsLive(ctx, ev.Identity) {
		return []chat.Reply{chat.Text(msgNotLoggedIn)}
	}
	h.sessions.Remove(ctx, ev.Identity)
	h.flows.Cancel(ctx, ev.Identity)
	if h.notifier != nil {
		h.notifier.Stop(ev.Identity)
	}
	log.Info(ctx).Msg("handler: logged out")
	return []chat.Reply{chat.Text(msgLoggedOut)}
}

func (h *Handler) cancel(ctx context.Context, ev chat.Event) []chat.Reply {
	if !h.flows.Cancel(ctx, ev.Identity) {
		return []chat.Reply{chat.Text(msgNothingToCancel, menuOption)}
	}
	return []chat.Reply{chat.Text(msgCancelled, menuOption)}
}

// cancelTransfer answers a stale Cancel button from a flow that already ended.
func (h *Handler) cancelTransfer(ctx context.Context, ev chat.Event) []chat.Reply {
	h.flows.Cancel(ctx, ev.Identity)
	return []chat.Reply{chat.Text(msgTransferClosed, menuOption)}
}
