package dto

import (
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// TicketResponse response.
type TicketResponse struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Status             domain.TicketStatus   `json:"status"`
	Priority           domain.TicketPriority `json:"priority"`
	CustomerID         string                `json:"customer_id"`
	AssigneeID         *string               `json:"assignee_id"`
	Summary            *string               `json:"summary"`
	SummaryGeneratedAt *time.Time            `json:"summary_generated_at"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// TicketDetailResponse includes the conversation thread.
type TicketDetailResponse struct {
	TicketResponse
	Messages []MessageResponse `json:"messages"`
}

// MessageResponse represents one thread message.
type MessageResponse struct {
	ID         string      `json:"id"`
	TicketID   string      `json:"ticket_id"`
	SenderID   string      `json:"sender_id"`
	SenderRole domain.Role `json:"sender_role"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SummarizeResponse is returned by POST /tickets/:id/summarize.
type SummarizeResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary,omitempty"`
	Skipped string `json:"skipped,omitempty"`
}
