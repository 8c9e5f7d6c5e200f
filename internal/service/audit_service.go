package service

import (
	"context"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
)

// AuditTrail records every privileged mutation. Appends are awaited: a
// failed append fails the operation that requested it.
type AuditTrail struct {
	entries repository.AuditRepository
}

// NewAuditTrail builds the recorder.
func NewAuditTrail(entries repository.AuditRepository) *AuditTrail {
	return &AuditTrail{entries: entries}
}

// Record appends one entry. When db is non-nil the append joins that
// transaction, so the entry commits or rolls back together with the mutation
// it describes.
func (t *AuditTrail) Record(ctx context.Context, db repository.DB, actorID *string, action domain.AuditAction, targetType domain.AuditTargetType, targetID string, details map[string]any, ip string) error {
	repo := t.entries
	if db != nil {
		repo = t.entries.WithDB(db)
	}
	entry := &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IP:         ip,
	}
	return repo.Create(ctx, entry)
}

// ListByActor returns the forensic trail of one actor, oldest first.
func (t *AuditTrail) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]domain.AuditEntry, error) {
	return t.entries.ListByActor(ctx, actorID, limit, offset)
}

// ListByTarget returns the forensic trail of one entity, oldest first.
func (t *AuditTrail) ListByTarget(ctx context.Context, targetType domain.AuditTargetType, targetID string, limit, offset int) ([]domain.AuditEntry, error) {
	return t.entries.ListByTarget(ctx, targetType, targetID, limit, offset)
}
