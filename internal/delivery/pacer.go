package delivery

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces consecutive sends to the same destination. Providers throttle
// bursts; a fixed inter-send gap keeps digests under the flood limit. The
// gap is a sequencing rule between sends, not a lock around them.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	lastSend map[int64]time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewPacer builds a Pacer with the given inter-send gap. A non-positive
// interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		lastSend: make(map[int64]time.Time),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until dest is clear to receive another send, then records the
// send time. It returns early with ctx.Err() on cancellation; a cancelled
// wait releases its slot so the abandoned send does not delay the next one.
func (p *Pacer) Wait(ctx context.Context, dest Destination) error {
	if p == nil || p.interval <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	now := p.now()
	prev, had := p.lastSend[dest.ChatID]
	wait := time.Duration(0)
	if had {
		if gap := p.interval - now.Sub(prev); gap > 0 {
			wait = gap
		}
	}
	slot := now.Add(wait)
	p.lastSend[dest.ChatID] = slot
	p.mu.Unlock()

	if wait <= 0 {
		return ctx.Err()
	}
	if err := p.sleep(ctx, wait); err != nil {
		p.mu.Lock()
		// Give the slot back unless a later waiter already claimed past it.
		if p.lastSend[dest.ChatID].Equal(slot) {
			if had {
				p.lastSend[dest.ChatID] = prev
			} else {
				delete(p.lastSend, dest.ChatID)
			}
		}
		p.mu.Unlock()
		return err
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
