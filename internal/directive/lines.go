package directive

// Position is a 1-based line/column location in a document.
type Position struct {
	Line   int
	Column int
}

// LineIndex maps line numbers to the byte offset at which each line starts.
type LineIndex []int

// NewLineIndex precomputes the start offset of every line in src.
func NewLineIndex(src []byte) LineIndex {
	offsets := LineIndex{0}
	for i, b := range src {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// Offset converts a position into a byte offset.
func (li LineIndex) Offset(p Position) int {
	base := 0
	if p.Line-1 >= 0 && p.Line-1 < len(li) {
		base = li[p.Line-1]
	}
	return base + p.Column - 1
}

// Lines returns the number of lines in the indexed source.
func (li LineIndex) Lines() int {
	return len(li)
}

// lineBounds returns the content range of the zero-based line i, excluding
// the line break (and a preceding carriage return).
func (li LineIndex) lineBounds(src []byte, i int) (start, end int) {
	start = li[i]
	if i+1 < len(li) {
		end = li[i+1] - 1
	} else {
		end = len(src)
	}
	if end > start && src[end-1] == '\r' {
		end--
	}
	return start, end
}
