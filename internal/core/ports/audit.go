package ports

import (
	"context"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// AuditStore persists audit events to the append-only trail.
type AuditStore interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}
