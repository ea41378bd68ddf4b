package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/feed"
)

// SummarizeFunc runs the summarization job for one ticket and returns the
// persisted summary text.
type SummarizeFunc func(ctx context.Context, ticketID string) (string, error)

// Notifier watches the ticket change feed for transitions into the resolved
// state. On each qualifying transition it publishes a resolved event (which
// drives the user-facing toast) and kicks off the summarization job
// asynchronously; the two side effects are independent, so a failed job
// never hides the toast.
type Notifier struct {
	listener   *feed.Listener
	dispatcher events.Dispatcher
	summarize  SummarizeFunc
	jobTimeout time.Duration
	logger     *zap.Logger

	mu   sync.Mutex
	sub  *feed.Subscription
	wg   sync.WaitGroup
	jobs sync.WaitGroup
}

// New constructs the notifier.
func New(listener *feed.Listener, dispatcher events.Dispatcher, summarize SummarizeFunc, jobTimeout time.Duration, logger *zap.Logger) *Notifier {
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	return &Notifier{
		listener:   listener,
		dispatcher: dispatcher,
		summarize:  summarize,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Start subscribes to the feed and begins dispatching.
func (n *Notifier) Start(ctx context.Context) error {
	sub, err := n.listener.Subscribe(ctx)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.sub = sub
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.Run(ctx, sub.Events())
	}()
	return nil
}

// Stop unsubscribes from the feed and waits for the dispatch loop and any
// in-flight summarization jobs to finish.
func (n *Notifier) Stop() {
	n.mu.Lock()
	sub := n.sub
	n.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	n.wg.Wait()
	n.jobs.Wait()
}

// Run consumes changes until the channel closes or ctx is cancelled.
// Resolved events are published in delivery order, with no batching.
func (n *Notifier) Run(ctx context.Context, changes <-chan feed.Change) {
	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return
			}
			if !Qualifies(change) {
				continue
			}
			n.handleResolved(ctx, change.New)
		case <-ctx.Done():
			return
		}
	}
}

// Qualifies reports whether a change is a transition into resolved. A row
// that was already resolved does not re-fire, and an update without a
// well-formed previous state is treated as non-qualifying.
func Qualifies(change feed.Change) bool {
	if change.Old == nil || change.New == nil {
		return false
	}
	return change.Old.Status != domain.TicketStatusResolved &&
		change.New.Status == domain.TicketStatusResolved
}

func (n *Notifier) handleResolved(ctx context.Context, row *feed.TicketRow) {
	n.publish(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: row.ID,
		Payload: events.TicketResolvedPayload{
			Title:      row.Title,
			CustomerID: row.CustomerID,
		},
	})

	// The job outlives the subscription context on purpose: a closing tab
	// must not abort a summarization that is already under way.
	snapshot := *row
	n.jobs.Add(1)
	go func() {
		defer n.jobs.Done()
		jobCtx, cancel := context.WithTimeout(context.Background(), n.jobTimeout)
		defer cancel()

		summary, err := n.summarize(jobCtx, snapshot.ID)
		if err != nil {
			n.logger.Error("summarization job failed",
				zap.String("ticket_id", snapshot.ID),
				zap.Error(err))
			n.publish(jobCtx, events.Event{
				Type:     events.EventSummaryFailed,
				TicketID: snapshot.ID,
				Payload: events.SummaryFailedPayload{
					Title:      snapshot.Title,
					CustomerID: snapshot.CustomerID,
					Reason:     err.Error(),
				},
			})
			return
		}
		n.publish(jobCtx, events.Event{
			Type:     events.EventSummaryGenerated,
			TicketID: snapshot.ID,
			Payload: events.SummaryGeneratedPayload{
				Title:      snapshot.Title,
				CustomerID: snapshot.CustomerID,
				Summary:    summary,
			},
		})
	}()
}

func (n *Notifier) publish(ctx context.Context, event events.Event) {
	if n.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = n.dispatcher.Publish(ctx, event)
}
