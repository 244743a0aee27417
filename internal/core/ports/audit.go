package ports

import (
	"context"

	"github.com/peoplehub/accounts-api/internal/core/domain"
)

// AuditRepository persists registration events to the audit collection.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.RegistrationEvent) error
}

// AuditService processes a single registration event off the dispatcher.
type AuditService interface {
	Process(ctx context.Context, event domain.RegistrationEvent) error
}
