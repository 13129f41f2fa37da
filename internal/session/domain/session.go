package domain

import "time"

// Session is the cached Copperx credential state for one Telegram user.
type Session struct {
	Identity       int64 // Telegram user id; stamped by the store on Save
	UserID         string
	Token          string // bearer credential for the Copperx API
	RefreshToken   string // stored only; the bot never refreshes
	OrganizationID string
	Email          string
	ExpiresAt      time.Time
}

// LiveAt reports whether the session is usable at now.
func (s *Session) LiveAt(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}
