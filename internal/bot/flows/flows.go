// Package flows declares the bot's multi-step conversations as flow engine tables.
package flows

import (
	"context"
	"time"

	"copperx-bot/internal/audit"
	"copperx-bot/internal/copperx"
	"copperx-bot/internal/flow/engine"
	sessiondomain "copperx-bot/internal/session/domain"
)

// Button keys that start or confirm flows.
const (
	KeyLogin                 = "login"
	KeySendEmail             = "send_email"
	KeySendWallet            = "send_wallet"
	KeyWithdrawBank          = "withdraw_bank"
	KeyConfirmEmailTransfer  = "confirm_email_transfer"
	KeyConfirmWalletTransfer = "confirm_wallet_transfer"
	KeyConfirmBankWithdrawal = "confirm_bank_withdrawal"
)

// API is the part of the Copperx client the flows call.
type API interface {
	RequestEmailOTP(ctx context.Context, email string) error
	VerifyEmailOTP(ctx context.Context, email, code string) (*copperx.AuthResult, error)
	SendToEmail(ctx context.Context, token, email, amount, message string) (*copperx.Transfer, error)
	SendToWallet(ctx context.Context, token, address, amount, network string) (*copperx.Transfer, error)
	WithdrawToBank(ctx context.Context, token, amount string) (*copperx.Transfer, error)
}

// SessionSaver stores the session opened by a successful login.
type SessionSaver interface {
	Save(ctx context.Context, identity int64, s *sessiondomain.Session)
}

// Notifier starts deposit notifications for a freshly logged-in identity.
type Notifier interface {
	Start(identity int64, token, orgID string)
}

// Deps are the collaborators of the flow completions. Notifier and Audit may be nil.
type Deps struct {
	API        API
	Sessions   SessionSaver
	Notifier   Notifier
	Audit      audit.AuditLogger
	SessionTTL time.Duration
	NowF       func() time.Time
}

func (d Deps) now() time.Time {
	if d.NowF != nil {
		return d.NowF()
	}
	return time.Now()
}

func (d Deps) ttl() time.Duration {
	if d.SessionTTL > 0 {
		return d.SessionTTL
	}
	return time.Hour
}

// Definitions returns every flow the bot runs.
func Definitions(d Deps) []*engine.Definition {
	return []*engine.Definition{
		Login(d),
		SendEmail(d),
		SendWallet(d),
		WithdrawBank(d),
	}
}
