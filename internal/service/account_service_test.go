package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

type accountFixture struct {
	svc      *AccountService
	accounts *fakeAccountRepo
	audit    *fakeAuditRepo
	sessions *fakeSessions
	actor    *domain.Account
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	audit := newFakeAuditRepo()
	sessions := newFakeSessions()

	// Low bcrypt cost keeps the account lifecycle tests fast; the cost only
	// matters for the timing tests in the auth suite.
	svc := NewAccountService(config.AuthConfig{BcryptCost: 4}, AccountDependencies{
		AccountRepo: accounts,
		Audit:       NewAuditTrail(audit),
		Sessions:    sessions,
		Tx:          fakeTxRunner{},
	}, zap.NewNop())

	actor := accounts.seed(domain.Account{
		Username: "root",
		Email:    "root@example.com",
		Role:     domain.RoleSuperAdmin,
		Status:   domain.AccountStatusActive,
	})
	return &accountFixture{svc: svc, accounts: accounts, audit: audit, sessions: sessions, actor: actor}
}

func (f *accountFixture) openSession(t *testing.T, account *domain.Account) {
	t.Helper()
	_, err := f.sessions.Create(context.Background(), domain.SessionPrincipal{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Role:      account.Role,
	})
	require.NoError(t, err)
}

func TestCreateAccountDepartmentInvariant(t *testing.T) {
	f := newAccountFixture(t)

	cases := []struct {
		name       string
		role       domain.Role
		department *string
		wantErr    bool
	}{
		{"department role needs department", domain.RoleDepartment, nil, true},
		{"department role blank department", domain.RoleDepartment, strPtr("  "), true},
		{"department role with department", domain.RoleDepartment, strPtr("library"), false},
		{"admin role no department", domain.RoleAdmin, nil, false},
		{"admin role with department forbidden", domain.RoleAdmin, strPtr("library"), true},
		{"super admin with department forbidden", domain.RoleSuperAdmin, strPtr("library"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			account, err := f.svc.CreateAccount(context.Background(), f.actor, AccountInput{
				Username:   tc.name,
				Email:      tc.name + "@example.com",
				Password:   "hunter2hunter2",
				Role:       tc.role,
				Department: tc.department,
			}, "10.0.0.1")
			if tc.wantErr {
				assertErrorCode(t, err, "VALIDATION_FAILED")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, account.ID)
			assert.Equal(t, domain.AccountStatusActive, account.Status)
		})
	}
}

func TestCreateAccountRejectsWeakInput(t *testing.T) {
	f := newAccountFixture(t)

	_, err := f.svc.CreateAccount(context.Background(), f.actor, AccountInput{
		Username: " ",
		Email:    "",
		Password: "short",
		Role:     domain.Role("owner"),
	}, "10.0.0.1")
	assertErrorCode(t, err, "VALIDATION_FAILED")
	assert.Equal(t, 0, f.audit.countAction(domain.AuditAccountCreate))
}

func TestCreateAccountHashesPassword(t *testing.T) {
	f := newAccountFixture(t)

	account, err := f.svc.CreateAccount(context.Background(), f.actor, AccountInput{
		Username: "helper",
		Email:    "helper@example.com",
		Password: "hunter2hunter2",
		Role:     domain.RoleAdmin,
	}, "10.0.0.1")
	require.NoError(t, err)

	stored, err := f.accounts.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", stored.PasswordHash)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "hunter2hunter2"))
	assert.Equal(t, 1, f.audit.countAction(domain.AuditAccountCreate))
}

func TestChangeRoleDestroysSessions(t *testing.T) {
	f := newAccountFixture(t)
	target := f.accounts.seed(domain.Account{
		Username: "promotee", Email: "promotee@example.com",
		Role: domain.RoleAdmin, Status: domain.AccountStatusActive,
	})
	f.openSession(t, target)
	f.openSession(t, target)
	require.Equal(t, 2, f.sessions.countForAccount(target.ID))

	err := f.svc.ChangeRole(context.Background(), f.actor, target.ID, domain.RoleSuperAdmin, nil, "10.0.0.1")
	require.NoError(t, err)

	stored, err := f.accounts.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, stored.Role)
	assert.Equal(t, 0, f.sessions.countForAccount(target.ID))
	assert.Equal(t, 1, f.audit.countAction(domain.AuditAccountRoleChange))
}

func TestChangeRoleDepartmentInvariant(t *testing.T) {
	f := newAccountFixture(t)
	target := f.accounts.seed(domain.Account{
		Username: "mover", Email: "mover@example.com",
		Role: domain.RoleAdmin, Status: domain.AccountStatusActive,
	})

	err := f.svc.ChangeRole(context.Background(), f.actor, target.ID, domain.RoleDepartment, nil, "10.0.0.1")
	assertErrorCode(t, err, "VALIDATION_FAILED")

	err = f.svc.ChangeRole(context.Background(), f.actor, target.ID, domain.RoleDepartment, strPtr("registrar"), "10.0.0.1")
	require.NoError(t, err)

	stored, err := f.accounts.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Department)
	assert.Equal(t, "registrar", *stored.Department)
}

func TestChangeStatusDeactivationDestroysSessions(t *testing.T) {
	f := newAccountFixture(t)
	target := f.accounts.seed(domain.Account{
		Username: "leaver", Email: "leaver@example.com",
		Role: domain.RoleAdmin, Status: domain.AccountStatusActive,
	})
	f.openSession(t, target)

	err := f.svc.ChangeStatus(context.Background(), f.actor, target.ID, domain.AccountStatusInactive, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.sessions.countForAccount(target.ID))

	// Reactivation is allowed and leaves sessions alone (there are none).
	err = f.svc.ChangeStatus(context.Background(), f.actor, target.ID, domain.AccountStatusActive, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.audit.countAction(domain.AuditAccountStatusChange))
}

func TestDeletedAccountIsTerminal(t *testing.T) {
	f := newAccountFixture(t)
	target := f.accounts.seed(domain.Account{
		Username: "gone", Email: "gone@example.com",
		Role: domain.RoleAdmin, Status: domain.AccountStatusActive,
	})

	err := f.svc.ChangeStatus(context.Background(), f.actor, target.ID, domain.AccountStatusDeleted, "10.0.0.1")
	require.NoError(t, err)

	err = f.svc.ChangeStatus(context.Background(), f.actor, target.ID, domain.AccountStatusActive, "10.0.0.1")
	assertErrorCode(t, err, "CONFLICTING_STATE")

	err = f.svc.ChangeRole(context.Background(), f.actor, target.ID, domain.RoleSuperAdmin, nil, "10.0.0.1")
	assertErrorCode(t, err, "CONFLICTING_STATE")

	err = f.svc.ResetPassword(context.Background(), f.actor, target.ID, "newpassword1", "10.0.0.1")
	assertErrorCode(t, err, "CONFLICTING_STATE")
}

func TestResetPasswordDestroysSessions(t *testing.T) {
	f := newAccountFixture(t)
	target := f.accounts.seed(domain.Account{
		Username: "reset-me", Email: "reset-me@example.com",
		Role: domain.RoleAdmin, Status: domain.AccountStatusActive,
	})
	f.openSession(t, target)

	err := f.svc.ResetPassword(context.Background(), f.actor, target.ID, "brand-new-secret", "10.0.0.1")
	require.NoError(t, err)

	stored, err := f.accounts.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "brand-new-secret"))
	require.NotNil(t, stored.PasswordChangedAt)
	assert.Equal(t, 0, f.sessions.countForAccount(target.ID))
	assert.Equal(t, 1, f.audit.countAction(domain.AuditAccountPasswordReset))
}

func TestResetPasswordRejectsShortPassword(t *testing.T) {
	f := newAccountFixture(t)
	target := f.accounts.seed(domain.Account{
		Username: "shorty", Email: "shorty@example.com",
		Role: domain.RoleAdmin, Status: domain.AccountStatusActive,
	})

	err := f.svc.ResetPassword(context.Background(), f.actor, target.ID, "short", "10.0.0.1")
	assertErrorCode(t, err, "VALIDATION_FAILED")
}

func TestAccountMutationUnknownTarget(t *testing.T) {
	f := newAccountFixture(t)

	err := f.svc.ChangeStatus(context.Background(), f.actor, "no-such-id", domain.AccountStatusInactive, "10.0.0.1")
	assertErrorCode(t, err, "NOT_FOUND")
}
