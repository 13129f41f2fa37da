package flows

import (
	"context"
	"fmt"
	"strings"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/copperx"
	flowdomain "copperx-bot/internal/flow/domain"
	"copperx-bot/internal/flow/engine"
)

const (
	fieldRecipient = "recipient"
	fieldAmount    = "amount"
	fieldMessage   = "message"
	fieldAddress   = "address"
	fieldNetwork   = "network"
	fieldConfirm   = "confirm"

	msgTransferOK   = "✅ Transfer successful! The funds have been sent."
	msgWithdrawalOK = "✅ Withdrawal request submitted successfully!"
)

// Networks offered by the send-to-wallet flow, in display order.
var Networks = []string{"Solana", "Ethereum", "Polygon", "BSC", "Avalanche"}

var cancelChoice = engine.Choice{Label: "Cancel", Key: engine.CancelKey}

func confirmStep(key string, summary func(map[string]string) string) engine.Step {
	return engine.Step{
		Field: fieldConfirm,
		Kind:  engine.KindChoice,
		Prompt: func(data map[string]string) chat.Reply {
			return chat.Reply{Text: summary(data), Markdown: true}
		},
		Choices: []engine.Choice{
			{Label: "Confirm", Key: key, Value: "yes"},
			cancelChoice,
		},
	}
}

func amountStep(prompt string) engine.Step {
	return engine.Step{Field: fieldAmount, Prompt: engine.StaticPrompt(prompt), Validate: engine.ValidateAmount}
}

func remoteFailure(format string, err error) error {
	return engine.Fail(fmt.Sprintf(format, copperx.Message(err)), fmt.Errorf("%w: %v", engine.ErrRemote, err))
}

func success(text string) []chat.Reply {
	return []chat.Reply{chat.Text(text, engine.MenuOption)}
}

// SendEmail collects recipient, amount and an optional message, confirms, then sends USDC to an email.
func SendEmail(d Deps) *engine.Definition {
	return &engine.Definition{
		ID:              flowdomain.FlowSendEmail,
		RequiresSession: true,
		RetryKey:        KeySendEmail,
		Steps: []engine.Step{
			{Field: fieldRecipient, Prompt: engine.StaticPrompt("Please enter the recipient's email address:"), Validate: engine.ValidateEmail},
			amountStep("Please enter the amount to send (in USDC):"),
			{
				Field:    fieldMessage,
				Prompt:   engine.StaticPrompt(`Enter an optional message for the recipient (or type "skip"):`),
				Validate: engine.ValidateOptionalMessage,
			},
			confirmStep(KeyConfirmEmailTransfer, func(data map[string]string) string {
				msg := data[fieldMessage]
				if msg == "" {
					msg = "None"
				}
				return fmt.Sprintf("*Transfer Summary*\n\nTo: %s\nAmount: %s USDC\nMessage: %s\n\nConfirm this transfer?",
					data[fieldRecipient], data[fieldAmount], msg)
			}),
		},
		Complete: func(ctx context.Context, in engine.Input) ([]chat.Reply, error) {
			_, err := d.API.SendToEmail(ctx, in.Session.Token, in.Data[fieldRecipient], in.Data[fieldAmount], in.Data[fieldMessage])
			if err != nil {
				return nil, remoteFailure("❌ Transfer failed: %s", err)
			}
			return success(msgTransferOK), nil
		},
	}
}

// SendWallet collects an address, a network and an amount, confirms, then sends USDC on-chain.
func SendWallet(d Deps) *engine.Definition {
	choices := make([]engine.Choice, 0, len(Networks)+1)
	for _, n := range Networks {
		choices = append(choices, NetworkChoice(n))
	}
	choices = append(choices, cancelChoice)

	return &engine.Definition{
		ID:              flowdomain.FlowSendWallet,
		RequiresSession: true,
		RetryKey:        KeySendWallet,
		Steps: []engine.Step{
			{Field: fieldAddress, Prompt: engine.StaticPrompt("Please enter the recipient's wallet address:"), Validate: engine.ValidateWalletAddress},
			{Field: fieldNetwork, Kind: engine.KindChoice, Prompt: engine.StaticPrompt("Select the network:"), Choices: choices},
			amountStep("Please enter the amount to send (in USDC):"),
			confirmStep(KeyConfirmWalletTransfer, func(data map[string]string) string {
				return fmt.Sprintf("*Transfer Summary*\n\nTo Address: %s\nNetwork: %s\nAmount: %s USDC\n\nConfirm this transfer?",
					data[fieldAddress], data[fieldNetwork], data[fieldAmount])
			}),
		},
		Complete: func(ctx context.Context, in engine.Input) ([]chat.Reply, error) {
			_, err := d.API.SendToWallet(ctx, in.Session.Token, in.Data[fieldAddress], in.Data[fieldAmount], in.Data[fieldNetwork])
			if err != nil {
				return nil, remoteFailure("❌ Transfer failed: %s", err)
			}
			return success(msgTransferOK), nil
		},
	}
}

// NetworkChoice is the network button: key network_<lower>, stored value lower case.
func NetworkChoice(name string) engine.Choice {
	v := strings.ToLower(name)
	return engine.Choice{Label: name, Key: "network_" + v, Value: v}
}

// WithdrawBank collects an amount, confirms, then requests an off-ramp to the user's bank.
func WithdrawBank(d Deps) *engine.Definition {
	return &engine.Definition{
		ID:              flowdomain.FlowWithdrawBank,
		RequiresSession: true,
		RetryKey:        KeyWithdrawBank,
		Steps: []engine.Step{
			amountStep("Please enter the amount to withdraw to your bank (in USDC):"),
			confirmStep(KeyConfirmBankWithdrawal, func(data map[string]string) string {
				return fmt.Sprintf("*Bank Withdrawal Summary*\n\nAmount: %s USDC\n\nConfirm this withdrawal?", data[fieldAmount])
			}),
		},
		Complete: func(ctx context.Context, in engine.Input) ([]chat.Reply, error) {
			if _, err := d.API.WithdrawToBank(ctx, in.Session.Token, in.Data[fieldAmount]); err != nil {
				return nil, remoteFailure("❌ Withdrawal failed: %s. Note that there may be a minimum withdrawal amount.", err)
			}
			return success(msgWithdrawalOK), nil
		},
	}
}
