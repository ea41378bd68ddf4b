package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
)

// TicketRow is the slim ticket projection carried on the change feed. The
// database trigger publishes only the columns the notifier consumes, which
// also keeps payloads under the NOTIFY size limit.
type TicketRow struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Status     domain.TicketStatus `json:"status"`
	CustomerID string              `json:"customer_id"`
}

// Change describes one before/after pair for a ticket row. Old is nil when
// the event arrived without a well-formed previous state.
type Change struct {
	Old *TicketRow
	New *TicketRow
}

// Listener subscribes to the ticket change channel over a dedicated
// Postgres connection.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	logger  *zap.Logger
}

// NewListener constructs a listener for the given NOTIFY channel.
func NewListener(pool *pgxpool.Pool, channel string, logger *zap.Logger) *Listener {
	return &Listener{pool: pool, channel: channel, logger: logger}
}

// Subscription is a cancellable stream of ticket changes. Events preserves
// the order notifications were delivered; Unsubscribe stops delivery and
// closes the channel.
type Subscription struct {
	events <-chan Change
	cancel context.CancelFunc
	once   sync.Once
}

// Events yields changes until the subscription ends.
func (s *Subscription) Events() <-chan Change {
	return s.events
}

// Unsubscribe releases the feed. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Subscribe pins a connection, issues LISTEN and starts the delivery loop.
// The subscription ends when ctx is cancelled or Unsubscribe is called.
func (l *Listener) Subscribe(ctx context.Context) (*Subscription, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgIdentifier(l.channel)); err != nil {
		conn.Release()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	events := make(chan Change, 16)

	go func() {
		defer close(events)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					l.logger.Error("change feed interrupted", zap.Error(err))
				}
				return
			}
			change, ok := decodeChange([]byte(notification.Payload))
			if !ok {
				l.logger.Warn("dropping malformed change payload",
					zap.String("channel", l.channel))
				continue
			}
			select {
			case events <- change:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{events: events, cancel: cancel}, nil
}

type changePayload struct {
	Old json.RawMessage `json:"old"`
	New json.RawMessage `json:"new"`
}

// decodeChange parses a trigger payload. A missing or malformed new row
// drops the event; a malformed old row degrades to Old == nil so consumers
// can treat the transition as ambiguous rather than inventing one.
func decodeChange(payload []byte) (Change, bool) {
	var raw changePayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Change{}, false
	}

	newRow := decodeRow(raw.New)
	if newRow == nil {
		return Change{}, false
	}

	return Change{
		Old: decodeRow(raw.Old),
		New: newRow,
	}, true
}

func decodeRow(raw json.RawMessage) *TicketRow {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var row TicketRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil
	}
	if row.ID == "" || row.Status == "" {
		return nil
	}
	return &row
}

// pgIdentifier quotes the channel name for use in LISTEN.
func pgIdentifier(name string) string {
	quoted := make([]byte, 0, len(name)+2)
	quoted = append(quoted, '"')
	for i := 0; i < len(name); i++ {
		if name[i] == '"' {
			quoted = append(quoted, '"')
		}
		quoted = append(quoted, name[i])
	}
	return string(append(quoted, '"'))
}
