package mock

import (
	"context"

	"github.com/fwojciec/semjson"
)

var _ semjson.Pacer = (*Pacer)(nil)

// Pacer is a mock implementation of semjson.Pacer.
type Pacer struct {
	PaceFn func(ctx context.Context) error
}

func (p *Pacer) Pace(ctx context.Context) error {
	return p.PaceFn(ctx)
}
