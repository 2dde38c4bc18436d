package export

import (
	"context"
	"time"

	"github.com/fwojciec/semjson"
)

var _ semjson.Pacer = (*IntervalPacer)(nil)

// IntervalPacer pauses for Delay after every Every pages.
// A zero Every or Delay disables pacing.
type IntervalPacer struct {
	Every int
	Delay time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error

	count int
}

// NewIntervalPacer returns a pacer sleeping delay after every n pages.
func NewIntervalPacer(n int, delay time.Duration) *IntervalPacer {
	return &IntervalPacer{Every: n, Delay: delay}
}

// Pace counts one page and sleeps when the interval is reached.
func (p *IntervalPacer) Pace(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Every <= 0 || p.Delay <= 0 {
		return nil
	}
	p.count++
	if p.count < p.Every {
		return nil
	}
	p.count = 0

	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, p.Delay)
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
