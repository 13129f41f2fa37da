package copperx

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Decimal is an amount as the API sent it. The API uses both JSON strings and numbers.
type Decimal string

// UnmarshalJSON accepts "12.5", 12.5 and null.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = Decimal(n.String())
	return nil
}

func (d Decimal) String() string { return string(d) }

// AuthResult is the outcome of a successful OTP verification.
type AuthResult struct {
	UserID         string
	Token          string
	RefreshToken   string
	OrganizationID string
	Email          string
}

type authResponse struct {
	Token        string `json:"accessToken"`
	LegacyToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID             string `json:"id"`
		Email          string `json:"email"`
		OrganizationID string `json:"organizationId"`
		Organizations  []struct {
			ID string `json:"id"`
		} `json:"organizations"`
	} `json:"user"`
}

// Profile is the caller's user record.
type Profile struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	OrganizationID string `json:"organizationId"`
	Status         string `json:"status"`
}

// KYCStatus is the caller's latest KYC record.
type KYCStatus struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
	CreatedAt string `json:"createdAt"`
}

// Wallet is one of the caller's wallets.
type Wallet struct {
	ID            string `json:"id"`
	Network       string `json:"network"`
	WalletAddress string `json:"walletAddress"`
	Address       string `json:"address"`
	IsDefault     bool   `json:"isDefault"`
	CreatedAt     string `json:"createdAt"`
}

// DisplayAddress returns whichever address field the API filled in.
func (w Wallet) DisplayAddress() string {
	if w.WalletAddress != "" {
		return w.WalletAddress
	}
	return w.Address
}

// WalletBalance is the balance of one wallet.
type WalletBalance struct {
	ID        string  `json:"id"`
	WalletID  string  `json:"walletId"`
	Network   string  `json:"network"`
	Balance   Decimal `json:"balance"`
	IsDefault bool    `json:"isDefault"`
}

// Transfer is the record returned when a transfer or withdrawal is created.
type Transfer struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Amount Decimal `json:"amount"`
	Type   string  `json:"type"`
}

// Transaction is one row of the transfer history.
type Transaction struct {
	ID             string  `json:"id"`
	Amount         Decimal `json:"amount"`
	Fee            Decimal `json:"fee"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"createdAt"`
	Recipient      string  `json:"recipient"`
	RecipientEmail string  `json:"recipientEmail"`
	Network        string  `json:"network"`
	Message        string  `json:"message"`
}

// ChannelAuth is the Pusher private-channel signature.
type ChannelAuth struct {
	Auth string `json:"auth"`
}
