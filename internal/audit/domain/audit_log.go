package domain

import "time"

// AuditLog is one recorded security or money action taken through the bot.
type AuditLog struct {
	ID       string
	Identity int64 // Telegram user id
	OrgID    string
	UserID   string // Copperx user id; empty before login
	Action   string
	Resource string
	// Metadata is a JSON object or empty.
	Metadata  string
	CreatedAt time.Time
}
