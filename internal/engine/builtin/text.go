package builtin

import (
	"strings"

	"github.com/dshills/inkwell/internal/engine/model"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode normalization form C with line endings
// converted to "\n".
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}

// FromPlainText builds a root holding one paragraph per line of text. A
// trailing newline does not produce an extra empty paragraph.
func FromPlainText(text string) *model.Component {
	text = strings.TrimSuffix(Normalize(text), "\n")
	lines := strings.Split(text, "\n")
	blocks := make([]*model.Component, len(lines))
	for i, line := range lines {
		blocks[i] = NewParagraph(line)
	}
	return NewRoot(blocks...)
}

// PlainText returns the document text with one line per block.
func PlainText(root *model.Component) string {
	return root.ToString()
}
