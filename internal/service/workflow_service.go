package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// WorkflowService validates and applies ticket transitions according to the
// actor's role. Every accepted mutation and its audit entry commit in one
// transaction; rejected mutations leave the ticket untouched and write no
// audit entry.
type WorkflowService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	accounts   repository.AccountRepository
	audit      *AuditTrail
	tx         repository.TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
	limits     config.WorkflowConfig
}

// WorkflowDependencies bundles repositories for the workflow engine.
type WorkflowDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	AccountRepo repository.AccountRepository
	Audit       *AuditTrail
	Tx          repository.TxRunner
	Dispatcher  events.Dispatcher
}

// NewWorkflowService constructs the engine.
func NewWorkflowService(limits config.WorkflowConfig, deps WorkflowDependencies, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		accounts:   deps.AccountRepo,
		audit:      deps.Audit,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		limits:     limits,
	}
}

// TicketInput describes a ticket creation payload.
type TicketInput struct {
	Title        string
	Description  string
	ReporterName string
	Department   string
	Priority     domain.TicketPriority
}

// TicketChanges carries a partial update; nil fields are untouched.
type TicketChanges struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssignedTo *string
	Unassign   bool
}

// statusAllowedForRole is the status column of the capability matrix. The
// switch is exhaustive over the role set so a new role cannot silently
// default into either branch.
func statusAllowedForRole(role domain.Role, next domain.TicketStatus) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleSuperAdmin:
		return true
	case domain.RoleDepartment:
		return next == domain.TicketStatusWaitingOnAdmin || next == domain.TicketStatusClosed
	}
	return false
}

// CreatePublicTicket accepts an unauthenticated submission.
func (s *WorkflowService) CreatePublicTicket(ctx context.Context, input TicketInput, ip string) (*domain.Ticket, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		Status:             domain.TicketStatusOpen,
		Priority:           domain.TicketPriorityUnset,
		ReporterName:       strings.TrimSpace(input.ReporterName),
		ReporterDepartment: strings.TrimSpace(input.Department),
	}

	if err := s.persistNewTicket(ctx, ticket, nil, ip); err != nil {
		return nil, err
	}
	s.publishCreated(ctx, ticket, events.Actor{})
	return ticket, nil
}

// CreateTicket accepts an authenticated submission. A department actor's
// ticket always starts open with unset priority, and its department comes
// from the actor's own account, never from the payload. Administrative
// actors may set an initial priority and the ticket is flagged admin-created.
func (s *WorkflowService) CreateTicket(ctx context.Context, actor *domain.Account, input TicketInput, ip string) (*domain.Ticket, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusOpen,
		Priority:     domain.TicketPriorityUnset,
		ReporterName: strings.TrimSpace(input.ReporterName),
	}
	if ticket.ReporterName == "" {
		ticket.ReporterName = actor.Username
	}

	switch actor.Role {
	case domain.RoleDepartment:
		if actor.Department == nil {
			return nil, apperrors.NewConflictingState("account has no department", nil)
		}
		accountID := actor.ID
		ticket.ReporterAccountID = &accountID
		ticket.ReporterDepartment = *actor.Department
	case domain.RoleAdmin, domain.RoleSuperAdmin:
		ticket.IsAdminCreated = true
		ticket.ReporterDepartment = strings.TrimSpace(input.Department)
		if input.Priority != "" {
			if !domain.ValidTicketPriority(input.Priority) {
				return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
			}
			ticket.Priority = input.Priority
		}
	default:
		return nil, apperrors.NewAuthorizationDenied()
	}

	actorID := actor.ID
	if err := s.persistNewTicket(ctx, ticket, &actorID, ip); err != nil {
		return nil, err
	}
	s.publishCreated(ctx, ticket, actorRef(actor))
	return ticket, nil
}

func (s *WorkflowService) persistNewTicket(ctx context.Context, ticket *domain.Ticket, actorID *string, ip string) error {
	err := s.tx.InTx(ctx, func(db repository.DB) error {
		if err := s.tickets.WithDB(db).Create(ctx, ticket); err != nil {
			return err
		}
		return s.audit.Record(ctx, db, actorID, domain.AuditTicketCreate, domain.AuditTargetTicket, ticket.ID,
			map[string]any{"title": ticket.Title, "department": ticket.ReporterDepartment}, ip)
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// GetTicket loads a ticket, restricting department actors to their own
// department's tickets.
func (s *WorkflowService) GetTicket(ctx context.Context, actor *domain.Account, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !canAccessTicket(actor, ticket) {
		return nil, apperrors.NewAuthorizationDenied()
	}
	return ticket, nil
}

// ListTickets applies the actor's scope on top of the supplied filter.
func (s *WorkflowService) ListTickets(ctx context.Context, actor *domain.Account, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if actor.Role == domain.RoleDepartment {
		if actor.Department == nil {
			return nil, apperrors.NewConflictingState("account has no department", nil)
		}
		filter.ReporterDepartment = actor.Department
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateTicket applies a partial status/priority/assignment change. Each
// accepted field produces its own audit entry carrying only what changed.
func (s *WorkflowService) UpdateTicket(ctx context.Context, actor *domain.Account, ticketID string, changes TicketChanges, ip string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	type appliedChange struct {
		action  domain.AuditAction
		details map[string]any
		event   events.Event
	}
	var applied []appliedChange

	if changes.Status != nil {
		next := *changes.Status
		if !domain.ValidTicketStatus(next) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": next})
		}
		if !statusAllowedForRole(actor.Role, next) {
			return nil, apperrors.NewAuthorizationDenied()
		}
		if actor.Role == domain.RoleDepartment && !ticket.ReportedBy(actor.ID) {
			return nil, apperrors.NewAuthorizationDenied()
		}
		if next != ticket.Status {
			old := ticket.Status
			ticket.Status = next
			applied = append(applied, appliedChange{
				action:  domain.AuditTicketStatusChange,
				details: map[string]any{"old_status": old, "new_status": next},
				event: s.newEvent(events.EventTicketStatusChanged, ticket.ID, actorRef(actor),
					events.TicketStatusChangedPayload{OldStatus: old, NewStatus: next}),
			})
		}
	}

	if changes.Priority != nil {
		next := *changes.Priority
		if !domain.ValidTicketPriority(next) {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": next})
		}
		if !actor.Role.IsAdministrative() {
			return nil, apperrors.NewAuthorizationDenied()
		}
		if next != ticket.Priority {
			old := ticket.Priority
			ticket.Priority = next
			applied = append(applied, appliedChange{
				action:  domain.AuditTicketPriorityChange,
				details: map[string]any{"old_priority": old, "new_priority": next},
				event: s.newEvent(events.EventTicketPriorityChanged, ticket.ID, actorRef(actor),
					events.TicketPriorityChangedPayload{OldPriority: old, NewPriority: next}),
			})
		}
	}

	if changes.AssignedTo != nil || changes.Unassign {
		if !actor.Role.IsAdministrative() {
			return nil, apperrors.NewAuthorizationDenied()
		}
		var next *string
		if changes.AssignedTo != nil {
			assignee, err := s.accounts.GetByID(ctx, *changes.AssignedTo)
			if err == pgx.ErrNoRows || (err == nil && assignee.Status != domain.AccountStatusActive) {
				return nil, apperrors.NewConflictingState("cannot assign to inactive or non-existent user",
					map[string]any{"assigned_to": *changes.AssignedTo})
			}
			if err != nil {
				return nil, apperrors.MapError(err)
			}
			next = changes.AssignedTo
		}
		old := ticket.AssignedTo
		ticket.AssignedTo = next
		applied = append(applied, appliedChange{
			action:  domain.AuditTicketAssign,
			details: map[string]any{"old_assigned_to": old, "new_assigned_to": next},
			event: s.newEvent(events.EventTicketAssigned, ticket.ID, actorRef(actor),
				events.TicketAssignedPayload{AssignedTo: next}),
		})
	}

	if len(applied) == 0 {
		return ticket, nil
	}

	actorID := actor.ID
	err = s.tx.InTx(ctx, func(db repository.DB) error {
		if err := s.tickets.WithDB(db).Update(ctx, ticket); err != nil {
			return err
		}
		for _, change := range applied {
			if err := s.audit.Record(ctx, db, &actorID, change.action, domain.AuditTargetTicket, ticket.ID, change.details, ip); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, change := range applied {
		s.publish(ctx, change.event)
	}
	return ticket, nil
}

// UpdateStatus is the single-field form of UpdateTicket.
func (s *WorkflowService) UpdateStatus(ctx context.Context, actor *domain.Account, ticketID string, status domain.TicketStatus, ip string) (*domain.Ticket, error) {
	return s.UpdateTicket(ctx, actor, ticketID, TicketChanges{Status: &status}, ip)
}

// AddComment appends to a ticket thread. A department author's comment is
// always public regardless of the requested visibility. When the reporting
// department account comments on a non-closed ticket, the ticket is forced
// to waiting_on_admin; a closed ticket is never reopened by comment activity.
func (s *WorkflowService) AddComment(ctx context.Context, actor *domain.Account, ticketID, content string, visibility domain.CommentVisibility, ip string) (*domain.Comment, *domain.Ticket, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, apperrors.NewValidationError("comment content required", map[string]any{"content": "required"})
	}
	if len(content) > s.limits.CommentMaxLength {
		return nil, nil, apperrors.NewValidationError("comment too long",
			map[string]any{"content": "exceeds maximum length", "max_length": s.limits.CommentMaxLength})
	}

	ticket, err := s.GetTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}

	switch actor.Role {
	case domain.RoleDepartment:
		visibility = domain.CommentVisibilityPublic
	case domain.RoleAdmin, domain.RoleSuperAdmin:
		if visibility == "" {
			visibility = domain.CommentVisibilityPublic
		}
		if !domain.ValidCommentVisibility(visibility) {
			return nil, nil, apperrors.NewValidationError("invalid visibility", map[string]any{"visibility": visibility})
		}
	default:
		return nil, nil, apperrors.NewAuthorizationDenied()
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    content,
		Visibility: visibility,
	}

	forced := reporterCommentTransition(actor, ticket)
	oldStatus := ticket.Status
	if forced {
		ticket.Status = domain.TicketStatusWaitingOnAdmin
	}

	actorID := actor.ID
	err = s.tx.InTx(ctx, func(db repository.DB) error {
		if err := s.comments.WithDB(db).Create(ctx, comment); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, db, &actorID, domain.AuditCommentAdd, domain.AuditTargetTicket, ticket.ID,
			map[string]any{"comment_id": comment.ID, "visibility": comment.Visibility}, ip); err != nil {
			return err
		}
		if !forced {
			return nil
		}
		if err := s.tickets.WithDB(db).Update(ctx, ticket); err != nil {
			return err
		}
		return s.audit.Record(ctx, db, &actorID, domain.AuditTicketStatusChange, domain.AuditTargetTicket, ticket.ID,
			map[string]any{"old_status": oldStatus, "new_status": ticket.Status, "automatic": true}, ip)
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publish(ctx, s.newEvent(events.EventCommentAdded, ticket.ID, actorRef(actor),
		events.CommentAddedPayload{CommentID: comment.ID, AuthorID: actor.ID, Visibility: comment.Visibility}))
	if forced {
		s.publish(ctx, s.newEvent(events.EventTicketStatusChanged, ticket.ID, actorRef(actor),
			events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status, Automatic: true}))
	}
	return comment, ticket, nil
}

// reporterCommentTransition is the named rule behind the implicit edge of
// the state machine: a comment by the reporting department account forces
// the ticket to waiting_on_admin unless the ticket is already closed.
func reporterCommentTransition(actor *domain.Account, ticket *domain.Ticket) bool {
	if actor.Role != domain.RoleDepartment {
		return false
	}
	if !ticket.ReportedBy(actor.ID) {
		return false
	}
	return ticket.Status != domain.TicketStatusClosed
}

// ListComments returns the comments an actor of the given role may see.
// Unknown roles are a hard failure rather than an empty result.
func (s *WorkflowService) ListComments(ctx context.Context, ticketID string, role domain.Role) ([]domain.Comment, error) {
	parsed, err := domain.ParseRole(string(role))
	if err != nil {
		return nil, apperrors.NewConflictingState("invalid user role", map[string]any{"role": role})
	}

	switch parsed {
	case domain.RoleDepartment:
		comments, err := s.comments.ListByTicket(ctx, ticketID, domain.CommentVisibilityPublic)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return comments, nil
	case domain.RoleAdmin, domain.RoleSuperAdmin:
		comments, err := s.comments.ListByTicket(ctx, ticketID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return comments, nil
	}
	return nil, apperrors.NewConflictingState("invalid user role", map[string]any{"role": role})
}

func (s *WorkflowService) validateInput(input TicketInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	} else if len(strings.TrimSpace(input.Title)) > s.limits.TitleMaxLength {
		details["title"] = "exceeds maximum length"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket payload", details)
	}
	return nil
}

func canAccessTicket(actor *domain.Account, ticket *domain.Ticket) bool {
	if actor == nil {
		return false
	}
	if actor.Role.IsAdministrative() {
		return true
	}
	return actor.Department != nil && *actor.Department == ticket.ReporterDepartment
}

func actorRef(actor *domain.Account) events.Actor {
	id := actor.ID
	role := actor.Role
	return events.Actor{AccountID: &id, Role: &role}
}

func (s *WorkflowService) newEvent(eventType events.EventType, ticketID string, actor events.Actor, payload any) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *WorkflowService) publishCreated(ctx context.Context, ticket *domain.Ticket, actor events.Actor) {
	s.publish(ctx, s.newEvent(events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		Department: ticket.ReporterDepartment,
		Priority:   ticket.Priority,
		Title:      ticket.Title,
	}))
}
