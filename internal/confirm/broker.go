// Package confirm holds admin actions until someone approves or rejects them.
// Each request is resolved exactly once.
package confirm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/canteen/pkg/logging"
)

const DefaultTTL = 2 * time.Minute

var (
	ErrUnknown         = errors.New("unknown confirmation")
	ErrAlreadyResolved = errors.New("confirmation already resolved")
)

type Action func(ctx context.Context) error

type Outcome struct {
	Approved bool
	Expired  bool
	Err      error
}

type request struct {
	decision chan bool
	done     chan Outcome
	resolved bool
}

type Broker struct {
	TTL time.Duration

	mu      sync.Mutex
	pending map[string]*request
}

func NewBroker(ttl time.Duration) *Broker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Broker{TTL: ttl, pending: make(map[string]*request)}
}

// Ask registers run under a fresh id and waits for a decision in the
// background. ctx is used when run executes and must outlive the request
// that created the confirmation.
func (b *Broker) Ask(ctx context.Context, description string, run Action) string {
	id := uuid.NewString()
	req := &request{decision: make(chan bool, 1), done: make(chan Outcome, 1)}

	b.mu.Lock()
	b.pending[id] = req
	b.mu.Unlock()

	go b.wait(ctx, id, description, req, run)
	return id
}

func (b *Broker) wait(ctx context.Context, id, description string, req *request, run Action) {
	l := logging.FromContext(ctx).With("confirmation_id", id, "action", description)

	timer := time.NewTimer(b.TTL)
	defer timer.Stop()

	var out Outcome
	select {
	case approve := <-req.decision:
		out.Approved = approve
		if approve {
			out.Err = run(ctx)
		}
	case <-timer.C:
		b.mu.Lock()
		// a decision may have landed between the timer firing and the lock
		if req.resolved {
			b.mu.Unlock()
			approve := <-req.decision
			out.Approved = approve
			if approve {
				out.Err = run(ctx)
			}
			break
		}
		req.resolved = true
		b.mu.Unlock()
		out.Expired = true
	}
	b.forgetLater(id)

	switch {
	case out.Expired:
		l.Info("confirmation_expired")
	case out.Err != nil:
		l.Error("confirmation_action_failed", "error", out.Err)
	case out.Approved:
		l.Info("confirmation_approved")
	default:
		l.Info("confirmation_rejected")
	}
	req.done <- out
}

// Resolve delivers the decision for id and waits for the action to finish.
func (b *Broker) Resolve(ctx context.Context, id string, approve bool) (Outcome, error) {
	b.mu.Lock()
	req, ok := b.pending[id]
	if !ok {
		b.mu.Unlock()
		return Outcome{}, ErrUnknown
	}
	if req.resolved {
		b.mu.Unlock()
		return Outcome{}, ErrAlreadyResolved
	}
	req.resolved = true
	b.mu.Unlock()

	req.decision <- approve

	select {
	case out := <-req.done:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// forgetLater keeps the resolved entry for one more TTL so late duplicates
// get ErrAlreadyResolved instead of ErrUnknown.
func (b *Broker) forgetLater(id string) {
	time.AfterFunc(b.TTL, func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	})
}

// Pending is the number of unresolved confirmations.
func (b *Broker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.pending {
		if !r.resolved {
			n++
		}
	}
	return n
}
