package backoff

import (
	"context"
	"math"
	"time"
)

// Strategy computes the wait before the next retry given how many retries
// already happened.
type Strategy interface {
	GetBackoffDuration(count int, start, last time.Duration) time.Duration
}

// Backoff tracks retry state for one connection or operation.
type Backoff struct {
	LastDuration time.Duration
	NextDuration time.Duration
	start        time.Duration
	limit        time.Duration
	count        int
	strategy     Strategy
}

func New(strategy Strategy, start, limit time.Duration) *Backoff {
	b := Backoff{strategy: strategy, start: start, limit: limit}
	b.Reset()
	return &b
}

// Reset restarts the schedule from the beginning.
func (b *Backoff) Reset() {
	b.count = 0
	b.LastDuration = 0
	b.NextDuration = b.getNextDuration()
}

// Count returns the number of completed backoff waits since the last Reset.
func (b *Backoff) Count() int {
	return b.count
}

// Backoff waits for the next scheduled duration or until ctx is done.
func (b *Backoff) Backoff(ctx context.Context) error {
	sleepCtx, cancelSleep := context.WithTimeout(ctx, b.NextDuration)
	<-sleepCtx.Done()
	cancelSleep()
	if sleepCtx.Err() == context.DeadlineExceeded {
		b.count++
		b.LastDuration = b.NextDuration
		b.NextDuration = b.getNextDuration()
		return nil
	}
	return sleepCtx.Err()
}

// Advance moves the schedule forward without waiting. Callers that manage
// their own timers use it to keep the schedule consistent.
func (b *Backoff) Advance() time.Duration {
	d := b.NextDuration
	b.count++
	b.LastDuration = d
	b.NextDuration = b.getNextDuration()
	return d
}

func (b *Backoff) getNextDuration() time.Duration {
	backoff := b.strategy.GetBackoffDuration(b.count, b.start, b.LastDuration)
	if b.limit > 0 && backoff > b.limit {
		backoff = b.limit
	}
	return backoff
}

type exponential struct{}

func (exponential) GetBackoffDuration(count int, start, last time.Duration) time.Duration {
	period := int64(math.Pow(2, float64(count)))
	return time.Duration(period) * start
}

// NewExponential doubles the wait on every retry, capped at limit.
func NewExponential(start, limit time.Duration) *Backoff {
	return New(exponential{}, start, limit)
}

type linear struct{}

func (linear) GetBackoffDuration(count int, start, last time.Duration) time.Duration {
	return time.Duration(count) * start
}

// NewLinear grows the wait by start on every retry, capped at limit.
func NewLinear(start, limit time.Duration) *Backoff {
	return New(linear{}, start, limit)
}
