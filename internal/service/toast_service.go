package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/notify"
)

// ToastService turns ticket lifecycle events into user-facing toasts: the
// staff dashboards and the ticket's customer each get a copy. Push failures
// are logged and swallowed; a toast never blocks the pipeline.
type ToastService struct {
	dispatcher events.Dispatcher
	toaster    notify.Toaster
	logger     *zap.Logger
}

// NewToastService creates the service.
func NewToastService(dispatcher events.Dispatcher, toaster notify.Toaster, logger *zap.Logger) *ToastService {
	return &ToastService{dispatcher: dispatcher, toaster: toaster, logger: logger}
}

// RegisterHandlers subscribes to lifecycle events.
func (t *ToastService) RegisterHandlers() {
	if t.dispatcher == nil {
		return
	}
	t.dispatcher.Subscribe(events.EventTicketResolved, t.handleTicketResolved)
	t.dispatcher.Subscribe(events.EventSummaryGenerated, t.handleSummaryGenerated)
	t.dispatcher.Subscribe(events.EventSummaryFailed, t.handleSummaryFailed)
}

func (t *ToastService) handleTicketResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		return nil
	}
	t.push(ctx, event.TicketID, payload.CustomerID, notify.Toast{
		Severity: notify.SeveritySuccess,
		Title:    "Ticket Resolved",
		Body:     payload.Title,
		TicketID: event.TicketID,
	})
	return nil
}

func (t *ToastService) handleSummaryGenerated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SummaryGeneratedPayload)
	if !ok {
		return nil
	}
	t.push(ctx, event.TicketID, payload.CustomerID, notify.Toast{
		Severity: notify.SeveritySuccess,
		Title:    "Summary generated",
		Body:     payload.Title,
		TicketID: event.TicketID,
	})
	return nil
}

func (t *ToastService) handleSummaryFailed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SummaryFailedPayload)
	if !ok {
		return nil
	}
	t.push(ctx, event.TicketID, payload.CustomerID, notify.Toast{
		Severity: notify.SeverityError,
		Title:    "Summary failed",
		Body:     payload.Title,
		TicketID: event.TicketID,
	})
	return nil
}

func (t *ToastService) push(ctx context.Context, ticketID, customerID string, toast notify.Toast) {
	audiences := []string{notify.AudienceStaff}
	if customerID != "" {
		audiences = append(audiences, customerID)
	}
	for _, audience := range audiences {
		if err := t.toaster.Push(ctx, audience, toast); err != nil {
			t.logger.Warn("toast push failed",
				zap.String("ticket_id", ticketID),
				zap.String("audience", audience),
				zap.Error(err))
		}
	}
}
