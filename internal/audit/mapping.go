package audit

import (
	"strings"

	chat "copperx-bot/internal/chat/domain"
)

// ActionResource holds action and resource derived from a chat event.
type ActionResource struct {
	Action   string
	Resource string
}

var buttonActions = map[string]ActionResource{
	"send_email":              {Action: "start", Resource: "transfer_email"},
	"send_wallet":             {Action: "start", Resource: "transfer_wallet"},
	"withdraw_bank":           {Action: "start", Resource: "withdrawal_bank"},
	"confirm_email_transfer":  {Action: "confirm", Resource: "transfer_email"},
	"confirm_wallet_transfer": {Action: "confirm", Resource: "transfer_wallet"},
	"confirm_bank_withdrawal": {Action: "confirm", Resource: "withdrawal_bank"},
	"cancel_transfer":         {Action: "cancel", Resource: "transfer"},
	"set_default_wallet":      {Action: "list", Resource: "wallet"},
	"login":                   {Action: "start", Resource: "session"},
}

var commandActions = map[string]ActionResource{
	"logout": {Action: "logout", Resource: "session"},
	"cancel": {Action: "cancel", Resource: "flow"},
	"send":   {Action: "open", Resource: "transfer"},
}

// ParseEvent returns the audit action for ev. ok is false for events that are not audited
// (free text, navigation, read-only lookups).
func ParseEvent(ev chat.Event) (ar ActionResource, ok bool) {
	switch p := ev.Payload.(type) {
	case chat.Command:
		ar, ok = commandActions[p.Name]
		return ar, ok
	case chat.ButtonPress:
		if strings.HasPrefix(p.Data, "set_default:") {
			return ActionResource{Action: "set_default", Resource: "wallet"}, true
		}
		ar, ok = buttonActions[p.Data]
		return ar, ok
	default:
		return ActionResource{}, false
	}
}
