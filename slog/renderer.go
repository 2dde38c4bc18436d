package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/semjson"
)

// Ensure LoggingRenderer implements semjson.Renderer.
var _ semjson.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with debug logging.
type LoggingRenderer struct {
	next   semjson.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next semjson.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render delegates to the wrapped renderer and logs sizes and duration.
func (r *LoggingRenderer) Render(ctx context.Context, text, title string) (html string, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("render",
			"title", title,
			"in", len(text),
			"out", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, text, title)
}
