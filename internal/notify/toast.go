package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Severity classifies a toast for the client UI.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// AudienceStaff addresses every signed-in support/admin dashboard.
const AudienceStaff = "staff"

// Toast is one user-facing notification.
type Toast struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Body     string   `json:"body,omitempty"`
	TicketID string   `json:"ticket_id,omitempty"`
}

// Toaster delivers toasts to an audience channel. Delivery is fire and
// forget; a failed push never blocks the caller's flow.
type Toaster interface {
	Push(ctx context.Context, audience string, toast Toast) error
}

// RedisToaster publishes toasts on Redis pub/sub channels that the browser
// gateways subscribe to.
type RedisToaster struct {
	client *redis.Client
	base   string
}

// NewRedisToaster constructs the publisher. Channel names are
// "<base>:<audience>".
func NewRedisToaster(client *redis.Client, base string) *RedisToaster {
	if base == "" {
		base = "toasts"
	}
	return &RedisToaster{client: client, base: base}
}

// Push implements Toaster.
func (t *RedisToaster) Push(ctx context.Context, audience string, toast Toast) error {
	payload, err := json.Marshal(toast)
	if err != nil {
		return err
	}
	return t.client.Publish(ctx, t.base+":"+audience, payload).Err()
}
