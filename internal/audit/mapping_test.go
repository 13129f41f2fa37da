package audit

import (
	"testing"

	chat "copperx-bot/internal/chat/domain"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload chat.Payload
		want    ActionResource
		ok      bool
	}{
		{"logout", chat.Command{Name: "logout"}, ActionResource{"logout", "session"}, true},
		{"cancel command", chat.Command{Name: "cancel"}, ActionResource{"cancel", "flow"}, true},
		{"balance not audited", chat.Command{Name: "balance"}, ActionResource{}, false},
		{"confirm email", chat.ButtonPress{Data: "confirm_email_transfer"}, ActionResource{"confirm", "transfer_email"}, true},
		{"confirm bank", chat.ButtonPress{Data: "confirm_bank_withdrawal"}, ActionResource{"confirm", "withdrawal_bank"}, true},
		{"set default", chat.ButtonPress{Data: "set_default:w-123"}, ActionResource{"set_default", "wallet"}, true},
		{"menu not audited", chat.ButtonPress{Data: "menu"}, ActionResource{}, false},
		{"text not audited", chat.TextInput{Text: "123456"}, ActionResource{}, false},
	}
	for _, tt := range tests {
		ar, ok := ParseEvent(chat.Event{Identity: 1, Payload: tt.payload})
		if ok != tt.ok || ar != tt.want {
			t.Errorf("%s: ParseEvent = (%+v, %v), want (%+v, %v)", tt.name, ar, ok, tt.want, tt.ok)
		}
	}
}
