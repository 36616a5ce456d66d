// Package dispatch delivers scheduled emails once their send time arrives,
// with exponential backoff on failure.
package dispatch

import (
	"context"
	"log"
	"time"

	"github.com/tanush-yadav/automate-founder-flow/internal/email"
	"github.com/tanush-yadav/automate-founder-flow/internal/metrics"
	"github.com/tanush-yadav/automate-founder-flow/internal/store"
)

type Dispatcher struct {
	store      store.Store
	sender     email.Sender
	maxRetries int

	// now is swappable for deterministic backoff tests.
	now func() time.Time
}

func New(st store.Store, sender email.Sender, maxRetries int) *Dispatcher {
	return &Dispatcher{
		store:      st,
		sender:     sender,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// ProcessDue sends every email whose scheduled time has passed. Each email
// is handled independently; one failure never blocks the rest of the batch.
func (d *Dispatcher) ProcessDue(ctx context.Context) error {
	now := d.now()

	due, err := d.store.DueEmails(ctx, now)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	log.Printf("[dispatch] %d emails due", len(due))

	for _, e := range due {
		if err := d.sender.Send(ctx, e.ToEmail, e.Subject, e.Body); err != nil {
			d.handleFailure(ctx, e.ID, e.Retries, err)
			continue
		}

		sent, err := d.store.MarkEmailSent(ctx, e.ID, d.now())
		if err != nil {
			log.Printf("[dispatch] mark sent %s: %v", e.ID, err)
			continue
		}
		if !sent {
			// Another dispatcher got there first.
			log.Printf("[dispatch] email %s already handled", e.ID)
			continue
		}
		metrics.Deliveries.WithLabelValues("sent").Inc()
		log.Printf("[dispatch] sent %s to %s", e.ID, e.ToEmail)
	}

	return nil
}

// handleFailure applies backoff: the next attempt waits 2^retries hours.
// After maxRetries failures the email is marked Failed for good.
func (d *Dispatcher) handleFailure(ctx context.Context, id string, prevRetries int, sendErr error) {
	retries := prevRetries + 1
	log.Printf("[dispatch] send %s failed (attempt %d): %v", id, retries, sendErr)

	if retries >= d.maxRetries {
		if err := d.store.FailEmail(ctx, id, retries, sendErr.Error()); err != nil {
			log.Printf("[dispatch] fail %s: %v", id, err)
			return
		}
		metrics.Deliveries.WithLabelValues("failed").Inc()
		return
	}

	next := d.now().Add(time.Duration(1<<uint(retries)) * time.Hour)
	if err := d.store.RescheduleEmail(ctx, id, retries, sendErr.Error(), next); err != nil {
		log.Printf("[dispatch] reschedule %s: %v", id, err)
		return
	}
	metrics.Deliveries.WithLabelValues("retried").Inc()
}
