package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// PublicTicketRequest is the unauthenticated submission payload.
type PublicTicketRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required"`
	ReporterName string `json:"reporter_name" validate:"required,max=120"`
	Department   string `json:"department" validate:"required,max=120"`
}

// CreateTicketRequest is the authenticated submission payload. Department
// and priority are honored only for administrative actors; a department
// actor's values come from its own account.
type CreateTicketRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required"`
	ReporterName string `json:"reporter_name" validate:"omitempty,max=120"`
	Department   string `json:"department" validate:"omitempty,max=120"`
	Priority     string `json:"priority" validate:"omitempty,oneof=unset low medium high critical"`
}

// UpdateTicketRequest carries a partial change; omitted fields are untouched.
type UpdateTicketRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=open in_progress waiting_on_admin waiting_on_department closed"`
	Priority   *string `json:"priority" validate:"omitempty,oneof=unset low medium high critical"`
	AssignedTo *string `json:"assigned_to"`
	Unassign   bool    `json:"unassign"`
}

// UpdateStatusRequest is the department portal's status change payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress waiting_on_admin waiting_on_department closed"`
}

// AddCommentRequest payload. Visibility is honored only for administrative
// authors.
type AddCommentRequest struct {
	Content    string `json:"content" validate:"required"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public internal"`
}

// TicketResponse maps a ticket for rendering.
type TicketResponse struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Status             domain.TicketStatus   `json:"status"`
	Priority           domain.TicketPriority `json:"priority"`
	ReporterName       string                `json:"reporter_name"`
	ReporterDepartment string                `json:"reporter_department"`
	AssignedTo         *string               `json:"assigned_to,omitempty"`
	IsAdminCreated     bool                  `json:"is_admin_created"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// NewTicketResponse converts a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 ticket.ID,
		Title:              ticket.Title,
		Description:        ticket.Description,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		ReporterName:       ticket.ReporterName,
		ReporterDepartment: ticket.ReporterDepartment,
		AssignedTo:         ticket.AssignedTo,
		IsAdminCreated:     ticket.IsAdminCreated,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
	}
}

// NewTicketResponses converts a slice.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketResponse(&tickets[i]))
	}
	return result
}

// CommentResponse maps a comment for rendering.
type CommentResponse struct {
	ID         string                   `json:"id"`
	TicketID   string                   `json:"ticket_id"`
	AuthorID   string                   `json:"author_id"`
	Content    string                   `json:"content"`
	Visibility domain.CommentVisibility `json:"visibility"`
	CreatedAt  time.Time                `json:"created_at"`
}

// NewCommentResponses converts a slice.
func NewCommentResponses(comments []domain.Comment) []CommentResponse {
	result := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		result = append(result, CommentResponse{
			ID:         comment.ID,
			TicketID:   comment.TicketID,
			AuthorID:   comment.AuthorID,
			Content:    comment.Content,
			Visibility: comment.Visibility,
			CreatedAt:  comment.CreatedAt,
		})
	}
	return result
}
