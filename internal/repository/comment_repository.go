package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// CommentRepository stores the append-only ticket threads. Visibility
// scoping happens here, in the query itself, so no caller can receive an
// internal note it then forgets to filter out.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string, visibilities ...domain.CommentVisibility) ([]domain.Comment, error)
	WithDB(db DB) CommentRepository
}

type commentRepository struct {
	db DB
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithDB(db DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_account_id, content, visibility)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Content,
		comment.Visibility,
	).Scan(&comment.ID, &comment.CreatedAt)
}

// ListByTicket returns a ticket's comments oldest-first. With no visibility
// arguments every comment is returned; with arguments the restriction is
// applied by the database.
func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string, visibilities ...domain.CommentVisibility) ([]domain.Comment, error) {
	query := `
        SELECT id, ticket_id, author_account_id, content, visibility, created_at
        FROM comments WHERE ticket_id=$1`
	args := []any{ticketID}
	if len(visibilities) > 0 {
		vals := make([]string, len(visibilities))
		for i, v := range visibilities {
			vals[i] = string(v)
		}
		args = append(args, vals)
		query += ` AND visibility = ANY($2)`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Content,
			&comment.Visibility,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
