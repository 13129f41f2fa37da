package flows

import (
	"context"
	"encoding/json"
	"fmt"

	chat "copperx-bot/internal/chat/domain"
	flowdomain "copperx-bot/internal/flow/domain"
	"copperx-bot/internal/flow/engine"
	"copperx-bot/internal/log"
	"copperx-bot/internal/security"
	sessiondomain "copperx-bot/internal/session/domain"
)

const (
	msgEnterEmail   = "Please enter your email address:"
	msgOTPFailed    = "Failed to send OTP. Please try again later."
	msgVerifyFailed = "Invalid OTP or authentication failed. Please try again."
	msgLoginSuccess = "✅ Login successful! Welcome to Copperx."

	fieldEmail = "email"
	fieldOTP   = "otp"
)

// Login asks for an email, requests an OTP for it, then verifies the code and opens a session.
// It runs without a session.
func Login(d Deps) *engine.Definition {
	return &engine.Definition{
		ID:       flowdomain.FlowLogin,
		Public:   true,
		RetryKey: KeyLogin,
		Steps: []engine.Step{
			{
				Field:    fieldEmail,
				Prompt:   engine.StaticPrompt(msgEnterEmail),
				Validate: engine.ValidateEmail,
				Effect: func(ctx context.Context, in engine.Input) error {
					if err := d.API.RequestEmailOTP(ctx, in.Data[fieldEmail]); err != nil {
						return engine.Fail(msgOTPFailed, fmt.Errorf("%w: request otp: %v", engine.ErrRemote, err))
					}
					return nil
				},
			},
			{
				Field: fieldOTP,
				Prompt: func(data map[string]string) chat.Reply {
					return chat.Text(fmt.Sprintf("OTP has been sent to %s. Please enter the code:", data[fieldEmail]))
				},
				Validate: engine.ValidateOTP,
			},
		},
		Complete: func(ctx context.Context, in engine.Input) ([]chat.Reply, error) {
			return completeLogin(ctx, d, in)
		},
	}
}

func completeLogin(ctx context.Context, d Deps, in engine.Input) ([]chat.Reply, error) {
	email := in.Data[fieldEmail]
	res, err := d.API.VerifyEmailOTP(ctx, email, in.Data[fieldOTP])
	if err != nil {
		return nil, engine.Fail(msgVerifyFailed, fmt.Errorf("%w: verify otp: %v", engine.ErrRemote, err))
	}
	if res.Email != "" {
		email = res.Email
	}

	identity := in.Event.Identity
	now := d.now()
	s := &sessiondomain.Session{
		UserID:         res.UserID,
		Token:          res.Token,
		RefreshToken:   res.RefreshToken,
		OrganizationID: res.OrganizationID,
		Email:          email,
		ExpiresAt:      security.SessionExpiry(res.Token, now, d.ttl()),
	}
	d.Sessions.Save(ctx, identity, s)
	log.Info(ctx).
		Str("user_id", res.UserID).
		Str("token_fp", security.Fingerprint(res.Token)).
		Time("expires_at", s.ExpiresAt).
		Msg("login: session opened")

	if d.Notifier != nil {
		d.Notifier.Start(identity, res.Token, res.OrganizationID)
	}
	if d.Audit != nil {
		meta, _ := json.Marshal(map[string]string{"token_fp": security.Fingerprint(res.Token)})
		d.Audit.LogEvent(ctx, identity, res.OrganizationID, res.UserID, "login", "session", string(meta))
	}
	return []chat.Reply{chat.Text(msgLoginSuccess, chat.Option{Label: "Go to Menu", Key: engine.MenuOption.Key})}, nil
}
