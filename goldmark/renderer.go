// Package goldmark renders field markup locally, without a wiki server.
package goldmark

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/fwojciec/semjson"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Ensure Renderer implements semjson.Renderer at compile time.
var _ semjson.Renderer = (*Renderer)(nil)

var (
	boldItalicRe = regexp.MustCompile(`'''''(.+?)'''''`)
	boldRe       = regexp.MustCompile(`'''(.+?)'''`)
	italicRe     = regexp.MustCompile(`''(.+?)''`)
	linkRe       = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]*))?\]\]`)
	externalRe   = regexp.MustCompile(`\[(https?://[^\s\]]+)\s+([^\]]+)\]`)
	headingRe    = regexp.MustCompile(`(?m)^(={1,6})\s*(.+?)\s*={1,6}\s*$`)
	bulletRe     = regexp.MustCompile(`(?m)^\*+\s*`)
	numberedRe   = regexp.MustCompile(`(?m)^#+\s*`)
)

// Renderer converts the common subset of wiki markup to HTML through a
// Markdown pipeline. Markup it does not know is passed through as text.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render converts text to HTML. The title is ignored.
func (r *Renderer) Render(_ context.Context, text, _ string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(ToMarkdown(text)), &buf); err != nil {
		return "", semjson.Errorf(semjson.EINTERNAL, "render markup: %v", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// ToMarkdown rewrites wiki emphasis, links, headings and lists as Markdown.
func ToMarkdown(text string) string {
	// Lists first, before emphasis introduces leading asterisks.
	text = bulletRe.ReplaceAllString(text, "- ")
	text = numberedRe.ReplaceAllString(text, "1. ")
	text = boldItalicRe.ReplaceAllString(text, "***$1***")
	text = boldRe.ReplaceAllString(text, "**$1**")
	text = italicRe.ReplaceAllString(text, "*$1*")
	text = linkRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := linkRe.FindStringSubmatch(m)
		if sub[2] != "" {
			return sub[2]
		}
		return sub[1]
	})
	text = externalRe.ReplaceAllString(text, "[$2]($1)")
	return headingRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := headingRe.FindStringSubmatch(m)
		return strings.Repeat("#", len(sub[1])) + " " + sub[2]
	})
}
