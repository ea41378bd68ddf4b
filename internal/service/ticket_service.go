package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

// TicketService coordinates ticket workflows for customers and staff.
type TicketService struct {
	tickets  repository.TicketRepository
	messages repository.MessageRepository
	profiles repository.ProfileRepository
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	ProfileRepo repository.ProfileRepository
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketStaffFilter describes staff listing filters.
type TicketStaffFilter struct {
	AssigneeID *string
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:  deps.TicketRepo,
		messages: deps.MessageRepo,
		profiles: deps.ProfileRepo,
	}
}

// CreateTicket creates a ticket for a customer. Status is always forced to
// open regardless of the payload.
func (s *TicketService) CreateTicket(ctx context.Context, customerID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		CustomerID:  customerID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if !isValidPriority(ticket.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListCustomerTickets returns paginated tickets for a requester.
func (s *TicketService) ListCustomerTickets(ctx context.Context, customerID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketForCustomer fetches a ticket ensuring ownership, with its thread.
func (s *TicketService) GetTicketForCustomer(ctx context.Context, customerID, ticketID string) (*domain.Ticket, []domain.Message, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.CustomerID != customerID {
		return nil, nil, apperrors.NewAuthorizationError("access denied")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, nil
}

// ListStaffTickets returns tickets matching the staff filter.
func (s *TicketService) ListStaffTickets(ctx context.Context, filter TicketStaffFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		AssigneeID: filter.AssigneeID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketForStaff fetches any ticket with its thread.
func (s *TicketService) GetTicketForStaff(ctx context.Context, ticketID string) (*domain.Ticket, []domain.Message, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, nil
}

// UpdateStatus moves a ticket along the lifecycle; illegal transitions are
// rejected.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdatePriority changes ticket priority.
func (s *TicketService) UpdatePriority(ctx context.Context, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !isValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// AssignTicket sets the assignee, who must hold a staff role.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, assigneeID string) (*domain.Ticket, error) {
	assignee, err := s.profiles.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee", map[string]any{"profile_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.Role.IsStaff() {
		return nil, apperrors.NewValidationError("assignee must be support or admin", map[string]any{
			"profile_id": assigneeID,
			"role":       assignee.Role,
		})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.AssigneeID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// DeleteTicket removes a ticket permanently. Admin only; enforced at the
// route level.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// AddMessage appends a chat turn to the ticket's thread. Customers may only
// write on their own tickets; the sender's role is snapshotted on the
// message, with admins recorded as support.
func (s *TicketService) AddMessage(ctx context.Context, sender *domain.Profile, ticketID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if sender.Role == domain.RoleCustomer && ticket.CustomerID != sender.ID {
		return nil, apperrors.NewAuthorizationError("access denied")
	}

	senderRole := domain.RoleCustomer
	if sender.Role.IsStaff() {
		senderRole = domain.RoleSupport
	}

	msg := &domain.Message{
		TicketID:   ticket.ID,
		SenderID:   sender.ID,
		SenderRole: senderRole,
		Content:    content,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return msg, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusInProgress: {domain.TicketStatusOpen, domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {domain.TicketStatusInProgress},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func isValidPriority(priority domain.TicketPriority) bool {
	switch priority {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh:
		return true
	}
	return false
}
