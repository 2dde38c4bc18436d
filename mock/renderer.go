package mock

import (
	"context"

	"github.com/fwojciec/semjson"
)

var _ semjson.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of semjson.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, text, title string) (string, error)
}

func (r *Renderer) Render(ctx context.Context, text, title string) (string, error) {
	return r.RenderFn(ctx, text, title)
}
