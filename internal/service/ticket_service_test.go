package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/domain"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

func newTicketService() (*TicketService, *fakeTicketRepo, *fakeMessageRepo, *fakeProfileRepo) {
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	profiles := newFakeProfileRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		ProfileRepo: profiles,
	})
	return svc, tickets, messages, profiles
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	return domainErr.Code
}

func TestCreateTicketForcesOpenStatus(t *testing.T) {
	svc, _, _, _ := newTicketService()

	ticket, err := svc.CreateTicket(context.Background(), "c1", TicketCreateInput{
		Title:       "Broken keyboard",
		Description: "Keys stopped responding",
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, "c1", ticket.CustomerID)
}

func TestCreateTicketDefaultsPriority(t *testing.T) {
	svc, _, _, _ := newTicketService()

	ticket, err := svc.CreateTicket(context.Background(), "c1", TicketCreateInput{
		Title:       "Question",
		Description: "How do I reset my password?",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _, _, _ := newTicketService()

	_, err := svc.CreateTicket(context.Background(), "c1", TicketCreateInput{Title: "  ", Description: "x"})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.CreateTicket(context.Background(), "c1", TicketCreateInput{
		Title: "t", Description: "d", Priority: domain.TicketPriority("urgent"),
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    domain.TicketStatus
		to      domain.TicketStatus
		allowed bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusOpen, domain.TicketStatusResolved, true},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen, true},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress, true},
		{domain.TicketStatusResolved, domain.TicketStatusOpen, false},
		{domain.TicketStatusOpen, domain.TicketStatusOpen, false},
		{domain.TicketStatusResolved, domain.TicketStatusResolved, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			svc, tickets, _, _ := newTicketService()
			ticket := tickets.put(&domain.Ticket{
				Title: "t", Description: "d", Status: tc.from,
				Priority: domain.TicketPriorityMedium, CustomerID: "c1",
			})

			updated, err := svc.UpdateStatus(context.Background(), ticket.ID, tc.to)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)
			} else {
				assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
			}
		})
	}
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	svc, _, _, _ := newTicketService()
	_, err := svc.UpdateStatus(context.Background(), "missing", domain.TicketStatusResolved)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestAssignTicketRequiresStaffRole(t *testing.T) {
	svc, tickets, _, profiles := newTicketService()
	ticket := tickets.put(&domain.Ticket{
		Title: "t", Description: "d", Status: domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium, CustomerID: "c1",
	})

	customer := profiles.add("Cara", "cara@example.com", domain.RoleCustomer)
	_, err := svc.AssignTicket(context.Background(), ticket.ID, customer.ID)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	agent := profiles.add("Sam", "sam@example.com", domain.RoleSupport)
	updated, err := svc.AssignTicket(context.Background(), ticket.ID, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, agent.ID, *updated.AssigneeID)

	_, err = svc.AssignTicket(context.Background(), ticket.ID, "nobody")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestGetTicketForCustomerEnforcesOwnership(t *testing.T) {
	svc, tickets, _, _ := newTicketService()
	ticket := tickets.put(&domain.Ticket{
		Title: "t", Description: "d", Status: domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium, CustomerID: "c1",
	})

	_, _, err := svc.GetTicketForCustomer(context.Background(), "c2", ticket.ID)
	assert.Equal(t, "AUTHORIZATION", domainCode(t, err))

	got, _, err := svc.GetTicketForCustomer(context.Background(), "c1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestAddMessageOwnershipAndRoleSnapshot(t *testing.T) {
	svc, tickets, _, _ := newTicketService()
	ticket := tickets.put(&domain.Ticket{
		Title: "t", Description: "d", Status: domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium, CustomerID: "c1",
	})

	owner := &domain.Profile{ID: "c1", Role: domain.RoleCustomer}
	other := &domain.Profile{ID: "c2", Role: domain.RoleCustomer}
	admin := &domain.Profile{ID: "a1", Role: domain.RoleAdmin}

	_, err := svc.AddMessage(context.Background(), other, ticket.ID, "let me in")
	assert.Equal(t, "AUTHORIZATION", domainCode(t, err))

	msg, err := svc.AddMessage(context.Background(), owner, ticket.ID, "any update?")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, msg.SenderRole)

	// Admin replies read as support in the thread.
	msg, err = svc.AddMessage(context.Background(), admin, ticket.ID, "looking into it")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, msg.SenderRole)

	_, err = svc.AddMessage(context.Background(), owner, ticket.ID, "   ")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestDeleteTicket(t *testing.T) {
	svc, tickets, _, _ := newTicketService()
	ticket := tickets.put(&domain.Ticket{
		Title: "t", Description: "d", Status: domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium, CustomerID: "c1",
	})

	require.NoError(t, svc.DeleteTicket(context.Background(), ticket.ID))
	err := svc.DeleteTicket(context.Background(), ticket.ID)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}
