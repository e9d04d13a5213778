package ratelimiter

import (
	"golang.org/x/time/rate"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

// DestinationLimiters holds one token bucket limiter per destination label.
// Each limiter enforces a steady-state rate (e.g. 100 publishes/sec).
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type DestinationLimiters struct {
	limiters map[domain.Destination]*rate.Limiter
}

// New creates a DestinationLimiters with ratePerSec tokens per second per
// destination. A non-positive rate disables limiting.
func New(ratePerSec int) *DestinationLimiters {
	r := rate.Limit(ratePerSec)
	burst := ratePerSec
	if ratePerSec <= 0 {
		r = rate.Inf
		burst = 0
	}

	limiters := make(map[domain.Destination]*rate.Limiter, len(domain.Destinations))
	for _, d := range domain.Destinations {
		limiters[d] = rate.NewLimiter(r, burst)
	}
	return &DestinationLimiters{limiters: limiters}
}

// Allow reports whether a publish to d may proceed now. It never blocks:
// a request over the limit is rejected rather than queued.
func (dl *DestinationLimiters) Allow(d domain.Destination) bool {
	l, ok := dl.limiters[d]
	if !ok {
		return true
	}
	return l.Allow()
}
