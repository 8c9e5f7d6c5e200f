package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// AccountRepository defines persistence access for accounts. Accounts are
// never physically deleted; status transitions cover the whole lifecycle.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	IncrementLoginAttempts(ctx context.Context, username string) error
	ResetLoginAttempts(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
	UpdateRole(ctx context.Context, id string, role domain.Role, department *string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	WithDB(db DB) AccountRepository
}

type accountRepository struct {
	db DB
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) WithDB(db DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, role, department, status,
               login_attempts, last_login_at, password_changed_at, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, email, password_hash, role, department, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Department,
		account.Status,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetByUsername returns the full credential row, password hash included. It
// is reserved for the authentication path.
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Department,
		&account.Status,
		&account.LoginAttempts,
		&account.LastLoginAt,
		&account.PasswordChangedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) IncrementLoginAttempts(ctx context.Context, username string) error {
	const query = `UPDATE accounts SET login_attempts=login_attempts+1, updated_at=NOW() WHERE username=$1`
	return r.exec(ctx, query, username)
}

func (r *accountRepository) ResetLoginAttempts(ctx context.Context, id string) error {
	const query = `UPDATE accounts SET login_attempts=0, updated_at=NOW() WHERE id=$1`
	return r.exec(ctx, query, id)
}

func (r *accountRepository) UpdateLastLogin(ctx context.Context, id string) error {
	const query = `UPDATE accounts SET last_login_at=NOW(), updated_at=NOW() WHERE id=$1`
	return r.exec(ctx, query, id)
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	const query = `UPDATE accounts SET status=$1, updated_at=NOW() WHERE id=$2`
	return r.exec(ctx, query, status, id)
}

func (r *accountRepository) UpdateRole(ctx context.Context, id string, role domain.Role, department *string) error {
	const query = `UPDATE accounts SET role=$1, department=$2, updated_at=NOW() WHERE id=$3`
	return r.exec(ctx, query, role, department, id)
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash=$1, password_changed_at=NOW(), updated_at=NOW() WHERE id=$2`
	return r.exec(ctx, query, passwordHash, id)
}

func (r *accountRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
