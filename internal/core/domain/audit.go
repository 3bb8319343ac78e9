package domain

import "time"

// Audit action names recorded on the trail. Dot-separated, lowercase, stable.
const (
	AuditLoginSuccess   = "auth.login.success"
	AuditLoginFailed    = "auth.login.failed"
	AuditRefresh        = "auth.refresh"
	AuditLogout         = "auth.logout"
	AuditUserCreated    = "user.created"
	AuditUserUpdated    = "user.updated"
	AuditUserDeleted    = "user.deleted"
	AuditProfileUpdated = "user.profile.updated"
)

// AuditEvent is a single append-only entry on the audit trail.
// ActorID is empty for anonymous actions (e.g. a failed login).
type AuditEvent struct {
	ID         string
	Action     string
	ActorID    string
	TargetID   string
	IP         string
	UserAgent  string
	Metadata   map[string]any
	RecordedAt time.Time
}
