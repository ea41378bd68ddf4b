package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

// Skip reasons reported when the job short-circuits without generating.
const (
	SkipNotResolved       = "not_resolved"
	SkipAlreadySummarized = "already_summarized"
)

// SummaryResult reports the outcome of one summarization run.
type SummaryResult struct {
	Summary   string
	Generated bool
	Skipped   string
}

// SummaryChain turns an assembled conversation document into a summary.
type SummaryChain interface {
	Summarize(ctx context.Context, document string) (string, error)
}

// SummaryService produces and persists the synopsis of a resolved ticket's
// conversation, exactly once per ticket. Concurrent runs race on a guarded
// write; losers return the winner's summary instead of an error.
type SummaryService struct {
	tickets  repository.TicketRepository
	messages repository.MessageRepository
	chain    SummaryChain
	logger   *zap.Logger
}

// NewSummaryService constructs the service.
func NewSummaryService(tickets repository.TicketRepository, messages repository.MessageRepository, chain SummaryChain, logger *zap.Logger) *SummaryService {
	return &SummaryService{tickets: tickets, messages: messages, chain: chain, logger: logger}
}

// Summarize runs the job for one ticket. Preconditions are checked before
// any model work: the ticket must exist, be resolved and not yet carry a
// summary. No partial summary is ever persisted.
func (s *SummaryService) Summarize(ctx context.Context, ticketID string) (*SummaryResult, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != domain.TicketStatusResolved {
		return &SummaryResult{Skipped: SkipNotResolved}, nil
	}
	if ticket.Summary != nil {
		return &SummaryResult{Summary: *ticket.Summary, Skipped: SkipAlreadySummarized}, nil
	}

	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	document := buildDocument(ticket, msgs)
	summary, err := s.chain.Summarize(ctx, document)
	if err != nil {
		return nil, apperrors.NewUpstreamError("failed to generate summary", err)
	}
	if strings.TrimSpace(summary) == "" {
		return nil, apperrors.NewUpstreamError("model returned an empty summary", nil)
	}

	applied, err := s.tickets.SetSummary(ctx, ticketID, summary)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		// The guard found the precondition already false: either a
		// concurrent run persisted first, or the ticket left resolved.
		// The write-at-most-once invariant holds either way.
		current, readErr := s.tickets.GetByID(ctx, ticketID)
		if readErr == nil && current.Summary != nil {
			s.logger.Info("summary already written by a concurrent run",
				zap.String("ticket_id", ticketID))
			return &SummaryResult{Summary: *current.Summary, Skipped: SkipAlreadySummarized}, nil
		}
		return &SummaryResult{Skipped: SkipNotResolved}, nil
	}

	s.logger.Info("summary generated", zap.String("ticket_id", ticketID))
	return &SummaryResult{Summary: summary, Generated: true}, nil
}

// buildDocument assembles the ordered conversation: title, description,
// then every message oldest first. A ticket without messages still yields a
// summarizable document.
func buildDocument(ticket *domain.Ticket, msgs []domain.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", ticket.Title)
	fmt.Fprintf(&b, "Description: %s\n\n", ticket.Description)
	b.WriteString("Messages:\n")
	if len(msgs) == 0 {
		b.WriteString("No messages")
		return b.String()
	}
	for _, msg := range msgs {
		fmt.Fprintf(&b, "- [%s] %s\n", msg.SenderRole, msg.Content)
	}
	return b.String()
}
