// Package goquery cleans rendered wiki HTML using goquery.
package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/semjson"
)

// Ensure Renderer implements semjson.Renderer at compile time.
var _ semjson.Renderer = (*Renderer)(nil)

// DefaultRemoveSelectors match page chrome that the wiki parser adds to
// rendered fragments.
var DefaultRemoveSelectors = []string{
	".mw-editsection",
	"#toc",
	".toc",
	".mw-empty-elt",
}

// Renderer wraps a Renderer and cleans its output. The parser output
// wrapper is unwrapped, elements matching Remove are dropped, and relative
// link and image addresses are resolved against BaseURL when it is set.
type Renderer struct {
	Renderer semjson.Renderer
	Remove   []string
	BaseURL  string
}

// NewRenderer returns a cleaning Renderer using DefaultRemoveSelectors.
func NewRenderer(r semjson.Renderer, baseURL string) *Renderer {
	return &Renderer{
		Renderer: r,
		Remove:   DefaultRemoveSelectors,
		BaseURL:  baseURL,
	}
}

// Render renders text with the wrapped Renderer and cleans the result.
func (r *Renderer) Render(ctx context.Context, text, title string) (string, error) {
	html, err := r.Renderer.Render(ctx, text, title)
	if err != nil {
		return "", err
	}
	return Clean(html, r.BaseURL, r.Remove)
}

// Clean returns the inner HTML of the parser output wrapper, or of the
// body if there is none, with unwanted elements removed.
func Clean(html, baseURL string, remove []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", semjson.Errorf(semjson.EINVALID, "failed to parse HTML: %v", err)
	}

	root := doc.Find(".mw-parser-output").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	for _, sel := range remove {
		root.Find(sel).Remove()
	}

	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", semjson.Errorf(semjson.EINVALID, "invalid base URL: %v", err)
		}
		resolveAttr(root.Find("a[href]"), "href", base)
		resolveAttr(root.Find("img[src]"), "src", base)
	}

	out, err := root.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func resolveAttr(sel *goquery.Selection, attr string, base *url.URL) {
	sel.Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		if v == "" || strings.HasPrefix(v, "#") {
			return
		}
		ref, err := url.Parse(v)
		if err != nil || ref.IsAbs() {
			return
		}
		s.SetAttr(attr, base.ResolveReference(ref).String())
	})
}
