package domain

import "time"

// Message is one chat turn in a ticket's thread. Messages are append-only
// and ordered by creation time; together they form the conversation history
// consumed by summarization.
type Message struct {
	ID         string
	TicketID   string
	SenderID   string
	SenderRole Role
	Content    string
	CreatedAt  time.Time
}
