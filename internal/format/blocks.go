package format

// BlockType tags a rich-text block variant for the document store.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockBullet    BlockType = "bullet"
	BlockQuote     BlockType = "quote"
	BlockParagraph BlockType = "paragraph"
)

// Block is one rich-text unit in source order. Level is meaningful only for
// headings, Italic only for the clinical-analysis subsection headings.
type Block struct {
	Type   BlockType
	Text   string
	Level  int
	Italic bool
}

// Note is the formatter's output: a synthesized title, the classified block
// sequence, and the untouched source text for plain-text consumers.
type Note struct {
	Title     string
	Blocks    []Block
	PlainText string
}
