package domain

import "time"

// AuditAction is the verb recorded for a privileged mutation.
type AuditAction string

const (
	AuditUserLogin            AuditAction = "USER_LOGIN"
	AuditUserLogout           AuditAction = "USER_LOGOUT"
	AuditTicketCreate         AuditAction = "TICKET_CREATE"
	AuditTicketStatusChange   AuditAction = "TICKET_STATUS_CHANGE"
	AuditTicketPriorityChange AuditAction = "TICKET_PRIORITY_CHANGE"
	AuditTicketAssign         AuditAction = "TICKET_ASSIGN"
	AuditCommentAdd           AuditAction = "COMMENT_ADD"
	AuditAccountCreate        AuditAction = "ACCOUNT_CREATE"
	AuditAccountRoleChange    AuditAction = "ACCOUNT_ROLE_CHANGE"
	AuditAccountStatusChange  AuditAction = "ACCOUNT_STATUS_CHANGE"
	AuditAccountPasswordReset AuditAction = "ACCOUNT_PASSWORD_RESET"
)

// AuditTargetType identifies the entity an audit entry refers to.
type AuditTargetType string

const (
	AuditTargetTicket  AuditTargetType = "ticket"
	AuditTargetAccount AuditTargetType = "account"
)

// AuditEntry is an immutable record of one privileged mutation. ActorID is
// nullable so entries survive the deletion of their actor.
type AuditEntry struct {
	ID         string
	ActorID    *string
	Action     AuditAction
	TargetType AuditTargetType
	TargetID   string
	Details    map[string]any
	IP         string
	CreatedAt  time.Time
}
