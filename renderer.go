package semjson

import "context"

// Renderer renders lightweight page markup into HTML.
type Renderer interface {
	// Render converts markup to HTML. The title, if non-empty, names the page
	// providing context for the rendering.
	Render(ctx context.Context, text, title string) (string, error)
}
