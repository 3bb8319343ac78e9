package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

const auditCollection = "auth_events"

// AuditRepository implements ports.AuditStore using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditStore {
	return &AuditRepository{db: db}
}

// Insert persists one event to the auth_events audit collection. The event
// ID doubles as the document key, so a retried insert cannot duplicate.
func (r *AuditRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	doc := bson.M{
		"_id":         event.ID,
		"action":      event.Action,
		"actor_id":    event.ActorID,
		"ip":          event.IP,
		"user_agent":  event.UserAgent,
		"recorded_at": event.RecordedAt.UTC(),
		"stored_at":   time.Now().UTC(),
	}
	if event.TargetID != "" {
		doc["target_id"] = event.TargetID
	}
	if len(event.Metadata) > 0 {
		doc["metadata"] = event.Metadata
	}

	if _, err := r.db.Collection(auditCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}
	return nil
}
