package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
)

// In-memory substitutes for the Postgres repositories and the Redis session
// store. They hold state under a mutex and ignore the transactional DB
// handle, so InTx composition can be exercised without a database.

type fakeTxRunner struct{}

func (fakeTxRunner) InTx(_ context.Context, fn func(db repository.DB) error) error {
	return fn(nil)
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*domain.Account{}}
}

func (r *fakeAccountRepo) seed(account domain.Account) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	stored := account
	r.accounts[stored.ID] = &stored
	return &stored
}

func (r *fakeAccountRepo) WithDB(repository.DB) repository.AccountRepository { return r }

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	stored := *account
	r.accounts[account.ID] = &stored
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAccountRepo) IncrementLoginAttempts(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Username == username {
			account.LoginAttempts++
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeAccountRepo) ResetLoginAttempts(_ context.Context, id string) error {
	return r.mutate(id, func(account *domain.Account) {
		account.LoginAttempts = 0
	})
}

func (r *fakeAccountRepo) UpdateLastLogin(_ context.Context, id string) error {
	return r.mutate(id, func(account *domain.Account) {
		now := time.Now()
		account.LastLoginAt = &now
	})
}

func (r *fakeAccountRepo) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) error {
	return r.mutate(id, func(account *domain.Account) {
		account.Status = status
	})
}

func (r *fakeAccountRepo) UpdateRole(_ context.Context, id string, role domain.Role, department *string) error {
	return r.mutate(id, func(account *domain.Account) {
		account.Role = role
		account.Department = department
	})
}

func (r *fakeAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.mutate(id, func(account *domain.Account) {
		now := time.Now()
		account.PasswordHash = passwordHash
		account.PasswordChangedAt = &now
	})
}

func (r *fakeAccountRepo) mutate(id string, fn func(*domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(account)
	account.UpdatedAt = time.Now()
	return nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) WithDB(repository.DB) repository.TicketRepository { return r }

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.ReporterDepartment != nil && ticket.ReporterDepartment != *filter.ReporterDepartment {
			continue
		}
		if filter.ReporterAccountID != nil &&
			(ticket.ReporterAccountID == nil || *ticket.ReporterAccountID != *filter.ReporterAccountID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) WithDB(repository.DB) repository.CommentRepository { return r }

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string, visibilities ...domain.CommentVisibility) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if len(visibilities) > 0 && !containsVisibility(visibilities, comment.Visibility) {
			continue
		}
		result = append(result, comment)
	}
	return result, nil
}

func containsVisibility(visibilities []domain.CommentVisibility, visibility domain.CommentVisibility) bool {
	for _, candidate := range visibilities {
		if candidate == visibility {
			return true
		}
	}
	return false
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) WithDB(repository.DB) repository.AuditRepository { return r }

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByActor(_ context.Context, actorID string, _, _ int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.ActorID != nil && *entry.ActorID == actorID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeAuditRepo) ListByTarget(_ context.Context, targetType domain.AuditTargetType, targetID string, _, _ int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.TargetType == targetType && entry.TargetID == targetID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.AuditAction, 0, len(r.entries))
	for _, entry := range r.entries {
		result = append(result, entry.Action)
	}
	return result
}

func (r *fakeAuditRepo) countAction(action domain.AuditAction) int {
	count := 0
	for _, recorded := range r.actions() {
		if recorded == action {
			count++
		}
	}
	return count
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.SessionPrincipal
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]domain.SessionPrincipal{}}
}

func (s *fakeSessions) Create(_ context.Context, principal domain.SessionPrincipal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid := uuid.NewString()
	s.sessions[sid] = principal
	return sid, nil
}

func (s *fakeSessions) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func (s *fakeSessions) DestroyAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, principal := range s.sessions {
		if principal.AccountID == accountID {
			delete(s.sessions, sid)
		}
	}
	return nil
}

func (s *fakeSessions) countForAccount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, principal := range s.sessions {
		if principal.AccountID == accountID {
			count++
		}
	}
	return count
}

func strPtr(value string) *string {
	return &value
}
