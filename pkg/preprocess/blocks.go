package preprocess

import "regexp"

// blockRe matches a fenced dot block. The body runs up to the first closing
// fence; the opening fence must be followed directly by a newline.
var blockRe = regexp.MustCompile("(?s)```dot\n(.*?)```")

// Block is one fenced diagram block within a document.
type Block struct {
	Body  string // text between the fences, verbatim
	Start int    // byte offset of the opening fence
	End   int    // byte offset just past the closing fence
}

// FindBlocks returns the diagram blocks of text in document order.
func FindBlocks(text string) []Block {
	matches := blockRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	blocks := make([]Block, len(matches))
	for i, m := range matches {
		blocks[i] = Block{Body: text[m[2]:m[3]], Start: m[0], End: m[1]}
	}
	return blocks
}
