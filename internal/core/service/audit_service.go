package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists registration events
// to the audit collection.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process writes a single registration event. Audit failures never affect
// the registration itself; the dispatcher logs and counts them.
func (s *auditService) Process(ctx context.Context, event domain.RegistrationEvent) error {
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("insert registration event: %w", err)
	}

	s.log.Debug().
		Str("user_id", event.UserID).
		Str("username", event.Username).
		Msg("registration event recorded")

	return nil
}
