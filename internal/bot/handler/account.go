package handler

import (
	"context"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/log"
)

const (
	recentTransactions = 10

	msgNoBalances       = "No wallets found or unable to fetch balances."
	msgNoWallets        = "No wallets found."
	msgPickWallet       = "Select a wallet to set as default:"
	msgDefaultUpdated   = "✅ Default wallet updated successfully."
	msgDefaultFailed    = "❌ Failed to update default wallet."
	msgNoTransactions   = "No recent transactions found."
	msgTransactionsDown = "Unable to fetch transactions. Please try again later."
	msgProfileDown      = "Unable to fetch your profile. Please try again later."
)

func (h *Handler) balance(ctx context.Context, ev chat.Event) []chat.Reply {
	s, denied := h.session(ctx, ev.Identity)
	if denied != nil {
		return denied
	}
	balances, err := h.api.GetBalances(ctx, s.Token)
	if err != nil {
		log.Warn(ctx).Err(err).Msg("handler: get balances failed")
	}
	if len(balances) == 0 {
		return []chat.Reply{chat.Text(msgNoBalances, menuOption)}
	}
	return []chat.Reply{chat.Markdown(formatBalances(balances),
		chat.Option{Label: "Set Default Wallet", Key: KeySetDefaultWallet},
		menuOption,
	)}
}

func (h *Handler) walletPicker(ctx context.Context, ev chat.Event) []chat.Reply {
	s, denied := h.session(ctx, ev.Identity)
	if denied != nil {
		return denied
	}
	wallets, err := h.api.ListWallets(ctx, s.Token)
	if err != nil {
		log.Warn(ctx).Err(err).Msg("handler: list wallets failed")
	}
	if len(wallets) == 0 {
		return []chat.Reply{chat.Text(msgNoWallets, menuOption)}
	}
	defaultID := ""
	if def, err := h.api.GetDefaultWallet(ctx, s.Token); err == nil {
		defaultID = def.ID
	}
	opts := make([]chat.Option, 0, len(wallets)+1)
	for _, w := range wallets {
		label := w.Network
		if w.IsDefault || w.ID == defaultID {
			label += " (Default)"
		}
		opts = append(opts, chat.Option{Label: label, Key: setDefaultPrefix + w.ID})
	}
	opts = append(opts, chat.Option{Label: "Cancel", Key: KeyMenu})
	return []chat.Reply{chat.Text(msgPickWallet, opts...)}
}

func (h *Handler) setDefaultWallet(ctx context.Context, ev chat.Event, walletID string) []chat.Reply {
	s, denied := h.session(ctx, ev.Identity)
	if denied != nil {
		return denied
	}
	if err := h.api.SetDefaultWallet(ctx, s.Token, walletID); err != nil {
		log.Warn(ctx).Err(err).Str("wallet_id", walletID).Msg("handler: set default wallet failed")
		return []chat.Reply{{
			Text:    msgDefaultFailed,
			Options: [][]chat.Option{{{Label: "Try Again", Key: KeySetDefaultWallet}, menuOption}},
		}}
	}
	return []chat.Reply{chat.Text(msgDefaultUpdated, menuOption)}
}

func (h *Handler) transactions(ctx context.Context, ev chat.Event) []chat.Reply {
	s, denied := h.session(ctx, ev.Identity)
	if denied != nil {
		return denied
	}
	txs, err := h.api.ListTransactions(ctx, s.Token, 1, recentTransactions)
	if err != nil {
		log.Warn(ctx).Err(err).Msg("handler: list transactions failed")
		return []chat.Reply{chat.Text(msgTransactionsDown, menuOption)}
	}
	if len(txs) == 0 {
		return []chat.Reply{chat.Text(msgNoTransactions, menuOption)}
	}
	return []chat.Reply{chat.Markdown(formatTransactions(txs), menuOption)}
}

// profile shows the user and, when available, their KYC status. A KYC lookup failure is not fatal.
func (h *Handler) profile(ctx context.Context, ev chat.Event) []chat.Reply {
	s, denied := h.session(ctx, ev.Identity)
	if denied != nil {
		return denied
	}
	p, err := h.api.GetProfile(ctx, s.Token)
	if err != nil || p == nil {
		log.Warn(ctx).Err(err).Msg("handler: get profile failed")
		return []chat.Reply{chat.Text(msgProfileDown, menuOption)}
	}
	kyc, err := h.api.GetKYCStatus(ctx, s.Token)
	if err != nil {
		log.Debug(ctx).Err(err).Msg("handler: kyc status unavailable")
		kyc = nil
	}
	return []chat.Reply{chat.Markdown(formatProfile(p, kyc), menuOption)}
}
