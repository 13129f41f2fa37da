package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"copperx-bot/internal/copperx"
)

// Pusher protocol event names.
const (
	eventConnectionEstablished = "pusher:connection_established"
	eventSubscribe             = "pusher:subscribe"
	eventSubscriptionSucceeded = "pusher_internal:subscription_succeeded"
	eventSubscriptionError     = "pusher:subscription_error"
	eventPing                  = "pusher:ping"
	eventPong                  = "pusher:pong"
	eventError                 = "pusher:error"
	eventDeposit               = "deposit"
)

// frame is one Pusher websocket message. Data is usually a JSON-encoded string.
type frame struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type connectionEstablished struct {
	SocketID        string `json:"socket_id"`
	ActivityTimeout int    `json:"activity_timeout"`
}

type subscribeData struct {
	Channel string `json:"channel"`
	Auth    string `json:"auth"`
}

// Deposit is the payload of a deposit event.
type Deposit struct {
	Amount  copperx.Decimal `json:"amount"`
	Network string          `json:"network"`
}

// unwrapData decodes frame data into v. Pusher sends data as a JSON string holding JSON,
// but some servers send the object directly; both are accepted.
func unwrapData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("notify: empty data")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.Unmarshal([]byte(s), v)
	}
	return json.Unmarshal(raw, v)
}

// ChannelName is the private channel carrying an organization's events.
func ChannelName(orgID string) string {
	return "private-org-" + orgID
}

// DepositText renders the deposit notification sent to the user.
func DepositText(d Deposit) string {
	network := strings.TrimSpace(d.Network)
	if network == "" {
		network = "Solana"
	}
	return fmt.Sprintf("💰 *New Deposit Received*\n\n%s USDC deposited on %s", d.Amount.String(), network)
}
