package export

import (
	"context"
	"strings"

	"github.com/fwojciec/semjson"
	"golang.org/x/net/html"
)

// PostProcessor renders selected fields of extracted data to HTML.
type PostProcessor struct {
	Renderer semjson.Renderer
	Fields   map[string]bool
}

// NewPostProcessor returns a PostProcessor rendering the named fields.
func NewPostProcessor(renderer semjson.Renderer, fields []string) *PostProcessor {
	p := &PostProcessor{Renderer: renderer, Fields: make(map[string]bool, len(fields))}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			p.Fields[f] = true
		}
	}
	return p
}

// Process replaces, in place and at any depth, every non-empty text field
// whose key is selected with its rendered form. Comments are stripped from
// the rendered HTML. On render failure the original text is kept.
func (p *PostProcessor) Process(ctx context.Context, fields *semjson.FieldMap, title string) {
	if p == nil || p.Renderer == nil || len(p.Fields) == 0 || fields == nil {
		return
	}
	p.walk(ctx, fields, title)
}

func (p *PostProcessor) walk(ctx context.Context, fields *semjson.FieldMap, title string) {
	for _, key := range fields.Keys() {
		v, _ := fields.Get(key)
		switch v.Kind() {
		case semjson.KindMap:
			p.walk(ctx, v.Map(), title)
		case semjson.KindList:
			for _, m := range v.List() {
				p.walk(ctx, m, title)
			}
		case semjson.KindText:
			if !p.Fields[key] || v.Str() == "" {
				continue
			}
			rendered, err := p.Renderer.Render(ctx, v.Str(), title)
			if err != nil {
				continue
			}
			fields.SetText(key, stripComments(rendered))
		}
	}
}

// stripComments removes <!-- ... --> comments from an HTML fragment and
// leaves everything else byte for byte.
func stripComments(s string) string {
	if !strings.Contains(s, "<!--") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.CommentToken:
			continue
		default:
			b.Write(z.Raw())
		}
	}
}
