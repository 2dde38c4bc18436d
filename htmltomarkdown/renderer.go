// Package htmltomarkdown converts rendered fields to Markdown.
package htmltomarkdown

import (
	"context"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/semjson"
)

// Ensure Renderer implements semjson.Renderer at compile time.
var _ semjson.Renderer = (*Renderer)(nil)

// Renderer wraps a Renderer and converts its HTML output to Markdown.
type Renderer struct {
	Renderer semjson.Renderer

	conv *converter.Converter
}

// NewRenderer creates a Renderer converting the output of r.
func NewRenderer(r semjson.Renderer) *Renderer {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Renderer{Renderer: r, conv: conv}
}

// Render renders text with the wrapped Renderer and returns Markdown.
func (r *Renderer) Render(ctx context.Context, text, title string) (string, error) {
	html, err := r.Renderer.Render(ctx, text, title)
	if err != nil {
		return "", err
	}
	return r.Convert(html)
}

// Convert transforms HTML content into Markdown.
func (r *Renderer) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	result, err := r.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
