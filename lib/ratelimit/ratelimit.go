// Package ratelimit implements the adaptive inter-request delay used by
// the patentscope fetch client. The delay grows exponentially under
// consecutive errors and shrinks back toward the minimum as successes
// accumulate.
package ratelimit

import (
	"context"
	"time"
)

// Limiter tracks request cadence for a single scraping session. It is
// not safe for concurrent use: each session owns exactly one Limiter,
// the backoff math assumes requests are issued one at a time.
type Limiter struct {
	minDelay time.Duration
	maxDelay time.Duration

	lastRequest       time.Time
	consecutiveErrors int
	successStreak     int

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func New(minDelay, maxDelay time.Duration) *Limiter {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Limiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delay computes the current inter-request delay. The result is always
// within [minDelay, maxDelay].
func (l *Limiter) Delay() time.Duration {
	if l.consecutiveErrors > 0 {
		shift := l.consecutiveErrors
		// past this point the shifted value exceeds maxDelay anyway
		if shift > 30 {
			shift = 30
		}
		d := l.minDelay << shift
		if d > l.maxDelay || d < 0 {
			d = l.maxDelay
		}
		return d
	}

	d := time.Duration(float64(l.maxDelay) / (1 + float64(l.successStreak)*0.1))
	if d < l.minDelay {
		d = l.minDelay
	}
	return d
}

// Wait blocks until at least Delay() has elapsed since the previous
// request. It does not sleep at all if enough time has already passed.
func (l *Limiter) Wait(ctx context.Context) error {
	delay := l.Delay()
	elapsed := l.now().Sub(l.lastRequest)
	if elapsed < delay {
		if err := l.sleep(ctx, delay-elapsed); err != nil {
			return err
		}
	}
	l.lastRequest = l.now()
	return nil
}

func (l *Limiter) RecordSuccess() {
	l.consecutiveErrors = 0
	l.successStreak++
}

func (l *Limiter) RecordError() {
	l.consecutiveErrors++
	l.successStreak = 0
}
