package graph

import (
	"context"

	"golang.org/x/time/rate"
)

type throttled struct {
	Writer
	limiter *rate.Limiter
}

// Throttle paces writes through limiter. A nil limiter returns w unchanged.
func Throttle(w Writer, limiter *rate.Limiter) Writer {
	if limiter == nil {
		return w
	}
	return &throttled{Writer: w, limiter: limiter}
}

// NewLimiter builds a limiter for perSecond writes, or nil when perSecond is
// not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (t *throttled) Apply(ctx context.Context, m Mutation) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return &WriteError{Backend: "throttle", Kind: m.Kind(), Err: err}
	}
	return t.Writer.Apply(ctx, m)
}
