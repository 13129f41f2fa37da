package handler

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"copperx-bot/internal/copperx"
)

const dateLayout = "1/2/2006"

func formatBalances(balances []copperx.WalletBalance) string {
	var b strings.Builder
	b.WriteString("💰 *Your Wallet Balances*\n\n")
	for _, bal := range balances {
		b.WriteString("*" + bal.Network + "*: " + bal.Balance.String() + " USDC")
		if bal.IsDefault {
			b.WriteString(" (Default)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatTransactions(txs []copperx.Transaction) string {
	var b strings.Builder
	b.WriteString("📊 *Recent Transactions*\n\n")
	for _, tx := range txs {
		b.WriteString("*" + capitalize(tx.Type) + "* - " + tx.Amount.String() + " USDC\n")
		b.WriteString("Status: " + capitalize(tx.Status) + "\n")
		if to := firstNonEmpty(tx.Recipient, tx.RecipientEmail); to != "" {
			b.WriteString("To: " + to + "\n")
		}
		if tx.Network != "" {
			b.WriteString("Network: " + tx.Network + "\n")
		}
		b.WriteString("Date: " + formatDate(tx.CreatedAt) + "\n\n")
	}
	return b.String()
}

func formatProfile(p *copperx.Profile, kyc *copperx.KYCStatus) string {
	var b strings.Builder
	b.WriteString("👤 *Your Profile*\n\n")
	b.WriteString("Name: " + strings.TrimSpace(p.FirstName+" "+p.LastName) + "\n")
	b.WriteString("Email: " + p.Email + "\n")
	if kyc == nil || kyc.Status == "" {
		b.WriteString("\n*KYC Status:* Not available\n")
		return b.String()
	}
	b.WriteString("\n*KYC Status:* " + kyc.Status + "\n")
	b.WriteString("Type: " + kyc.Type + "\n")
	b.WriteString("Last Updated: " + formatDate(kyc.UpdatedAt) + "\n")
	return b.String()
}

// formatDate renders an RFC 3339 timestamp as a short date. Unparseable input is returned as is.
func formatDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(dateLayout)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
