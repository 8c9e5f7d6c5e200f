package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// AuditRepository stores the append-only forensic trail. Entries are never
// updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]domain.AuditEntry, error)
	ListByTarget(ctx context.Context, targetType domain.AuditTargetType, targetID string, limit, offset int) ([]domain.AuditEntry, error)
	WithDB(db DB) AuditRepository
}

type auditRepository struct {
	db DB
}

// NewAuditRepository builds repository.
func NewAuditRepository(db DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) WithDB(db DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (actor_account_id, action, target_type, target_id, details, ip)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Details,
		entry.IP,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, actor_account_id, action, target_type, target_id, details, ip, created_at
        FROM audit_log WHERE actor_account_id=$1
        ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, actorID, clampLimit(limit), clampOffset(offset))
}

func (r *auditRepository) ListByTarget(ctx context.Context, targetType domain.AuditTargetType, targetID string, limit, offset int) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, actor_account_id, action, target_type, target_id, details, ip, created_at
        FROM audit_log WHERE target_type=$1 AND target_id=$2
        ORDER BY created_at ASC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, targetType, targetID, clampLimit(limit), clampOffset(offset))
}

func (r *auditRepository) list(ctx context.Context, query string, args ...any) ([]domain.AuditEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

func scanAuditEntries(rows pgx.Rows) ([]domain.AuditEntry, error) {
	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&entry.Details,
			&entry.IP,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
