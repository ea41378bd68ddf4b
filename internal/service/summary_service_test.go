package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

type stubChain struct {
	summary   string
	err       error
	documents []string
}

func (s *stubChain) Summarize(_ context.Context, document string) (string, error) {
	s.documents = append(s.documents, document)
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func resolvedTicket(repo *fakeTicketRepo, customerID string) *domain.Ticket {
	ticket := &domain.Ticket{
		Title:       "VPN keeps dropping",
		Description: "Connection drops every few minutes",
		Status:      domain.TicketStatusResolved,
		Priority:    domain.TicketPriorityHigh,
		CustomerID:  customerID,
	}
	return repo.put(ticket)
}

func TestSummarizeTicketNotFound(t *testing.T) {
	svc := NewSummaryService(newFakeTicketRepo(), newFakeMessageRepo(), &stubChain{}, zap.NewNop())

	_, err := svc.Summarize(context.Background(), "missing")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestSummarizeSkipsUnresolvedTicket(t *testing.T) {
	tickets := newFakeTicketRepo()
	chain := &stubChain{summary: "should not run"}
	ticket := tickets.put(&domain.Ticket{
		Title:      "open ticket",
		Status:     domain.TicketStatusOpen,
		CustomerID: "c1",
	})
	svc := NewSummaryService(tickets, newFakeMessageRepo(), chain, zap.NewNop())

	result, err := svc.Summarize(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, SkipNotResolved, result.Skipped)
	assert.False(t, result.Generated)
	assert.Empty(t, chain.documents, "model must not be called for unresolved tickets")
}

func TestSummarizeReturnsExistingSummary(t *testing.T) {
	tickets := newFakeTicketRepo()
	chain := &stubChain{summary: "new summary"}
	existing := "already summarized"
	now := time.Now()
	ticket := tickets.put(&domain.Ticket{
		Title:              "done ticket",
		Status:             domain.TicketStatusResolved,
		CustomerID:         "c1",
		Summary:            &existing,
		SummaryGeneratedAt: &now,
	})
	svc := NewSummaryService(tickets, newFakeMessageRepo(), chain, zap.NewNop())

	result, err := svc.Summarize(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, SkipAlreadySummarized, result.Skipped)
	assert.Equal(t, existing, result.Summary)
	assert.False(t, result.Generated)
	assert.Empty(t, chain.documents)
}

func TestSummarizeHappyPath(t *testing.T) {
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	chain := &stubChain{summary: "customer's VPN issue was fixed by reissuing the certificate"}
	ticket := resolvedTicket(tickets, "c1")

	require.NoError(t, messages.Append(context.Background(), &domain.Message{
		TicketID: ticket.ID, SenderID: "c1", SenderRole: domain.RoleCustomer, Content: "it drops every 5 minutes",
	}))
	require.NoError(t, messages.Append(context.Background(), &domain.Message{
		TicketID: ticket.ID, SenderID: "s1", SenderRole: domain.RoleSupport, Content: "please reinstall the certificate",
	}))

	svc := NewSummaryService(tickets, messages, chain, zap.NewNop())
	result, err := svc.Summarize(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, result.Generated)
	assert.Equal(t, chain.summary, result.Summary)

	// Document carries title, description and the ordered thread.
	require.Len(t, chain.documents, 1)
	doc := chain.documents[0]
	assert.Contains(t, doc, "VPN keeps dropping")
	assert.Contains(t, doc, "Connection drops every few minutes")
	assert.Contains(t, doc, "it drops every 5 minutes")
	assert.Contains(t, doc, "please reinstall the certificate")

	// Persisted with a generation timestamp.
	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Summary)
	assert.Equal(t, chain.summary, *stored.Summary)
	assert.NotNil(t, stored.SummaryGeneratedAt)
}

func TestSummarizeEmptyThreadStillSummarizes(t *testing.T) {
	tickets := newFakeTicketRepo()
	chain := &stubChain{summary: "ticket resolved without conversation"}
	ticket := resolvedTicket(tickets, "c1")

	svc := NewSummaryService(tickets, newFakeMessageRepo(), chain, zap.NewNop())
	result, err := svc.Summarize(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, result.Generated)
	require.Len(t, chain.documents, 1)
	assert.Contains(t, chain.documents[0], "No messages")
}

func TestSummarizeChainFailureWritesNothing(t *testing.T) {
	tickets := newFakeTicketRepo()
	chain := &stubChain{err: errors.New("model timeout")}
	ticket := resolvedTicket(tickets, "c1")

	svc := NewSummaryService(tickets, newFakeMessageRepo(), chain, zap.NewNop())
	_, err := svc.Summarize(context.Background(), ticket.ID)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UPSTREAM_FAILED", domainErr.Code)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Summary)
}

func TestSummarizeConcurrentLoserReturnsWinner(t *testing.T) {
	tickets := newFakeTicketRepo()
	chain := &stubChain{summary: "loser summary"}
	ticket := resolvedTicket(tickets, "c1")

	// A concurrent run lands its summary between this run's model call and
	// its guarded write.
	winner := "winner summary"
	tickets.setSummaryHook = func() {
		tickets.setSummaryHook = nil
		now := time.Now()
		tickets.mu.Lock()
		tickets.tickets[ticket.ID].Summary = &winner
		tickets.tickets[ticket.ID].SummaryGeneratedAt = &now
		tickets.mu.Unlock()
	}

	svc := NewSummaryService(tickets, newFakeMessageRepo(), chain, zap.NewNop())
	result, err := svc.Summarize(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.False(t, result.Generated)
	assert.Equal(t, SkipAlreadySummarized, result.Skipped)
	assert.Equal(t, winner, result.Summary)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Summary)
	assert.Equal(t, winner, *stored.Summary)
}
