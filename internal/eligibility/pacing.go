package eligibility

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out calls to an external service. A nil Pacer does not wait.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one call per interval. A non-positive interval disables
// pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return nil
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
