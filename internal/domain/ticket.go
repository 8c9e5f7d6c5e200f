package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen                TicketStatus = "open"
	TicketStatusInProgress          TicketStatus = "in_progress"
	TicketStatusWaitingOnAdmin      TicketStatus = "waiting_on_admin"
	TicketStatusWaitingOnDepartment TicketStatus = "waiting_on_department"
	// TicketStatusClosed is terminal for automatic transitions; only an
	// administrative actor may move a ticket out of it.
	TicketStatusClosed TicketStatus = "closed"
)

// ValidTicketStatus reports membership in the closed status set.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingOnAdmin,
		TicketStatusWaitingOnDepartment, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency. Department-submitted tickets always
// carry PriorityUnset until an administrator triages them.
type TicketPriority string

const (
	TicketPriorityUnset    TicketPriority = "unset"
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// ValidTicketPriority reports membership in the closed priority set.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityUnset, TicketPriorityLow, TicketPriorityMedium,
		TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for helpdesk requests. Tickets are never deleted.
type Ticket struct {
	ID                 string
	Title              string
	Description        string
	Status             TicketStatus
	Priority           TicketPriority
	ReporterName       string
	ReporterDepartment string
	ReporterAccountID  *string
	AssignedTo         *string
	IsAdminCreated     bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ReportedBy reports whether accountID is the ticket's owning reporter.
func (t *Ticket) ReportedBy(accountID string) bool {
	return t.ReporterAccountID != nil && *t.ReporterAccountID == accountID
}
