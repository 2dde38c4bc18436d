// Package wikitext provides a template-block locator and link scanner for
// wiki markup. It understands just enough of the markup to find the extent
// of a template call and split it into fields.
package wikitext

import (
	"strconv"
	"strings"

	"github.com/fwojciec/semjson"
)

// Ensure Locator implements semjson.BlockLocator at compile time.
var _ semjson.BlockLocator = (*Locator)(nil)

// Locator locates template calls of the form {{Name|key=value|...}}.
// Nested templates, parameters and links are matched so that their pipes
// and braces do not terminate or split the enclosing call.
type Locator struct{}

// NewLocator creates a new Locator.
func NewLocator() *Locator {
	return &Locator{}
}

// LocateBlock parses the template call starting at the beginning of text.
// Named arguments become fields under their name; positional arguments are
// numbered from 1. Keys and values are trimmed of surrounding whitespace.
func (l *Locator) LocateBlock(name, text string) (*semjson.Block, error) {
	if !strings.HasPrefix(text, "{{") {
		return nil, semjson.Errorf(semjson.EINVALID, "block %q does not start with an opening delimiter", name)
	}

	var (
		braces = 1
		links  = 0
		start  = 2
		eq     = -1
		parts  []part
	)

	for i := 2; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], "<!--"):
			end := strings.Index(text[i+4:], "-->")
			if end == -1 {
				return nil, semjson.Errorf(semjson.EINVALID, "unterminated comment in block %q", name)
			}
			i += 4 + end + 3
			continue
		case strings.HasPrefix(text[i:], "{{"):
			braces++
			i += 2
			continue
		case strings.HasPrefix(text[i:], "}}"):
			braces--
			if braces == 0 {
				parts = append(parts, part{text: text[start:i], eq: eq - start})
				return &semjson.Block{
					Length: i + 2,
					Fields: fieldsFromParts(parts),
				}, nil
			}
			i += 2
			continue
		case strings.HasPrefix(text[i:], "[["):
			links++
			i += 2
			continue
		case strings.HasPrefix(text[i:], "]]") && links > 0:
			links--
			i += 2
			continue
		}

		if braces == 1 && links == 0 {
			switch text[i] {
			case '|':
				parts = append(parts, part{text: text[start:i], eq: eq - start})
				start = i + 1
				eq = -1
			case '=':
				if eq == -1 {
					eq = i
				}
			}
		}
		i++
	}

	return nil, semjson.Errorf(semjson.EINVALID, "unterminated block %q", name)
}

// part is one pipe-separated segment of a template call. eq is the offset of
// the first top-level '=' within text, or negative if there is none.
type part struct {
	text string
	eq   int
}

func fieldsFromParts(parts []part) *semjson.FieldMap {
	fields := semjson.NewFieldMap()
	position := 0
	// The first part is the template name.
	for _, p := range parts[1:] {
		if p.eq >= 0 {
			key := strings.TrimSpace(p.text[:p.eq])
			if key != "" {
				fields.SetText(key, stripComments(strings.TrimSpace(p.text[p.eq+1:])))
				continue
			}
		}
		position++
		fields.SetText(strconv.Itoa(position), stripComments(strings.TrimSpace(p.text)))
	}
	return fields
}

func stripComments(s string) string {
	for {
		i := strings.Index(s, "<!--")
		if i == -1 {
			return s
		}
		j := strings.Index(s[i+4:], "-->")
		if j == -1 {
			return s
		}
		s = strings.TrimSpace(s[:i] + s[i+4+j+3:])
	}
}
