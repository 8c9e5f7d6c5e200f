package domain

// SessionPrincipal is the minimal payload set on successful authentication.
// It never carries password material, and role/status are always re-checked
// against the store before an authorization decision is made.
type SessionPrincipal struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}
