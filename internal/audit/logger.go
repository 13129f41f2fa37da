// Package audit records security and money actions taken through the bot.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"copperx-bot/internal/audit/domain"
	auditrepo "copperx-bot/internal/audit/repository"
	"copperx-bot/internal/log"
)

// SentinelOrgID is the org_id used for audit events that have no org (e.g. actions before login).
const SentinelOrgID = "_system"

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, identity int64, orgID, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
	nowF func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo. A nil repo makes every call a no-op.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo, nowF: time.Now}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, identity int64, orgID, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		Identity:  identity,
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: l.nowF().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Error(ctx).Err(err).Str("action", action).Str("resource", resource).Msg("audit: failed to log event")
	}
}

// Nop is an AuditLogger that records nothing. Used when DATABASE_URL is empty.
type Nop struct{}

// LogEvent does nothing.
func (Nop) LogEvent(context.Context, int64, string, string, string, string, string) {}
