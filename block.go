package semjson

// BlockType names a template block recognized by field extraction.
// A repeatable block type yields every occurrence; a non-repeatable one only
// its first.
type BlockType struct {
	Name       string `yaml:"name"`
	Repeatable bool   `yaml:"repeatable"`
}

// Block is a located template block.
type Block struct {
	// Length is the number of bytes the block spans, including nested
	// sub-blocks and the closing delimiter. Always positive.
	Length int

	// Fields holds the block's key/value pairs in order of appearance.
	Fields *FieldMap
}

// BlockLocator locates template blocks in raw page markup.
type BlockLocator interface {
	// LocateBlock parses the block of the named type that starts at the
	// beginning of text. Returns EINVALID if the block is unterminated.
	LocateBlock(name, text string) (*Block, error)
}
