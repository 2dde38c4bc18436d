package export

import (
	"regexp"

	"github.com/fwojciec/semjson"
)

// Extractor pulls template-block fields out of page markup.
type Extractor struct {
	Locator semjson.BlockLocator
	Blocks  []semjson.BlockType

	patterns []*regexp.Regexp
}

// NewExtractor returns an Extractor for the given block types.
func NewExtractor(locator semjson.BlockLocator, blocks []semjson.BlockType) *Extractor {
	e := &Extractor{Locator: locator, Blocks: blocks}
	e.patterns = make([]*regexp.Regexp, len(blocks))
	for i, b := range blocks {
		e.patterns[i] = blockPattern(b.Name)
	}
	return e
}

// blockPattern matches the opening of a block: the delimiter, the name and
// a field separator or closing delimiter, case-insensitively.
func blockPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\{\{` + regexp.QuoteMeta(name) + `\s*[|}]`)
}

// Extract returns a field map keyed by block name in declaration order.
// A repeatable block maps to the list of its occurrences. A non-repeatable
// block maps to the fields of its first occurrence, or to an empty list
// when it does not occur.
func (e *Extractor) Extract(text string) *semjson.FieldMap {
	result := semjson.NewFieldMap()
	for i, b := range e.Blocks {
		var re *regexp.Regexp
		if i < len(e.patterns) {
			re = e.patterns[i]
		} else {
			re = blockPattern(b.Name)
		}

		blocks := e.scan(re, b, text)
		if !b.Repeatable && len(blocks) > 0 {
			result.Set(b.Name, semjson.MapValue(blocks[0]))
			continue
		}
		if blocks == nil {
			blocks = []*semjson.FieldMap{}
		}
		result.Set(b.Name, semjson.ListValue(blocks))
	}
	return result
}

func (e *Extractor) scan(re *regexp.Regexp, b semjson.BlockType, text string) []*semjson.FieldMap {
	var found []*semjson.FieldMap
	pos := 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]

		block, err := e.Locator.LocateBlock(b.Name, text[start:])
		if err != nil || block.Length <= 0 {
			break
		}
		found = append(found, block.Fields)
		if !b.Repeatable {
			break
		}
		pos = start + block.Length
	}
	return found
}
