package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Ticket is the aggregate for support requests. Summary is written at most
// once, and only while the ticket is resolved.
type Ticket struct {
	ID                 string
	Title              string
	Description        string
	Status             TicketStatus
	Priority           TicketPriority
	CustomerID         string
	AssigneeID         *string
	Summary            *string
	SummaryGeneratedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
