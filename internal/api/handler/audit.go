package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// AuditRecorder is the interface the handlers use to enqueue audit entries.
// Implementations must not block the request path.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// recordAudit stamps the transport facts (client IP, user agent) onto the
// event and hands it off. A nil recorder drops the event; a nil actor marks
// the action as anonymous.
func recordAudit(rec AuditRecorder, c echo.Context, action string, actor *domain.User, targetID string, meta map[string]any) {
	if rec == nil {
		return
	}

	event := domain.AuditEvent{
		ID:         ulid.Make().String(),
		Action:     action,
		TargetID:   targetID,
		IP:         c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
		Metadata:   meta,
		RecordedAt: time.Now().UTC(),
	}
	if actor != nil {
		event.ActorID = actor.ID.String()
	}

	rec.Record(event)
}
