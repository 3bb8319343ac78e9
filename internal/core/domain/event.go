package domain

import "time"

// UserEvent is the message published to the user-events queue whenever an
// account is created, updated, or deleted. Downstream consumers (mailers,
// provisioning jobs) key off Action, which reuses the audit action names.
type UserEvent struct {
	Action     string    `json:"action"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	Active     bool      `json:"is_active"`
	OccurredAt time.Time `json:"occurred_at"`
}
