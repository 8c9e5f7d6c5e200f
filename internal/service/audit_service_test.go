package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

func TestAuditTrailRecordAndQuery(t *testing.T) {
	repo := newFakeAuditRepo()
	trail := NewAuditTrail(repo)

	actorID := "actor-1"
	err := trail.Record(context.Background(), nil, &actorID, domain.AuditTicketStatusChange, domain.AuditTargetTicket, "ticket-1",
		map[string]any{"old_status": domain.TicketStatusOpen, "new_status": domain.TicketStatusClosed}, "10.0.0.1")
	require.NoError(t, err)

	err = trail.Record(context.Background(), nil, nil, domain.AuditTicketCreate, domain.AuditTargetTicket, "ticket-2", nil, "203.0.113.9")
	require.NoError(t, err)

	byActor, err := trail.ListByActor(context.Background(), actorID, 50, 0)
	require.NoError(t, err)
	require.Len(t, byActor, 1)
	assert.Equal(t, domain.AuditTicketStatusChange, byActor[0].Action)
	assert.Equal(t, "10.0.0.1", byActor[0].IP)

	byTarget, err := trail.ListByTarget(context.Background(), domain.AuditTargetTicket, "ticket-2", 50, 0)
	require.NoError(t, err)
	require.Len(t, byTarget, 1)
	assert.Nil(t, byTarget[0].ActorID)
}
