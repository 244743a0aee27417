package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

const auditCollection = "registration_events"

// AuditRepository persists registration events using MongoDB.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{db: db}
}

// InsertEvent appends a registration event to the audit collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.RegistrationEvent) error {
	doc := bson.M{
		"user_id":     event.UserID,
		"email":       event.Email,
		"username":    event.Username,
		"roles":       event.RoleNames,
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}

	if _, err := r.db.Collection(auditCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert registration event: %w", err)
	}
	return nil
}
