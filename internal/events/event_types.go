package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketResolved   EventType = "ticket_resolved"
	EventSummaryGenerated EventType = "summary_generated"
	EventSummaryFailed    EventType = "summary_failed"
)

// Event represents a ticket lifecycle event emitted by the notifier.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Title      string `json:"title"`
	CustomerID string `json:"customer_id"`
}

// SummaryGeneratedPayload payload.
type SummaryGeneratedPayload struct {
	Title      string `json:"title"`
	CustomerID string `json:"customer_id"`
	Summary    string `json:"summary"`
}

// SummaryFailedPayload payload.
type SummaryFailedPayload struct {
	Title      string `json:"title"`
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
}
