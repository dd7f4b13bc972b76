package directive

import (
	"regexp"
	"sort"
)

// CoverName is the only directive name this package acts on.
const CoverName = "cover"

// Span is a half-open byte range [Start, End) into a document.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

var (
	openFenceRe  = regexp.MustCompile(`^([ \t]*)(:{3,})[ \t]*([A-Za-z][A-Za-z0-9_-]*)`)
	closeFenceRe = regexp.MustCompile(`^([ \t]*)(:{3,})[ \t]*$`)
)

type openContainer struct {
	name   string
	colons int
	start  Position
}

// Locate returns the spans of every closed cover directive in src, ordered by
// appearance. Unclosed containers have no end position and are skipped.
func Locate(src []byte) []Span {
	index := NewLineIndex(src)
	var code codeRegions
	if len(src) > 0 {
		code = findCodeRegions(src)
	}

	var (
		stack []openContainer
		spans []Span
	)
	for i := 0; i < index.Lines(); i++ {
		start, end := index.lineBounds(src, i)
		line := src[start:end]

		if m := closeFenceRe.FindSubmatch(line); m != nil {
			if code.contains(start + len(m[1])) {
				continue
			}
			if len(stack) == 0 || len(m[2]) < stack[len(stack)-1].colons {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.name != CoverName {
				continue
			}
			closeEnd := Position{Line: i + 1, Column: len(m[1]) + len(m[2]) + 1}
			spans = append(spans, Span{
				Start: index.Offset(top.start),
				End:   index.Offset(closeEnd),
			})
			continue
		}

		if m := openFenceRe.FindSubmatch(line); m != nil {
			if code.contains(start + len(m[1])) {
				continue
			}
			stack = append(stack, openContainer{
				name:   string(m[3]),
				colons: len(m[2]),
				start:  Position{Line: i + 1, Column: 1},
			})
		}
	}

	return dropOverlapping(spans)
}

// dropOverlapping orders spans by start and keeps only the outermost of any
// nested pair.
func dropOverlapping(spans []Span) []Span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	out := spans[:0]
	lastEnd := -1
	for _, s := range spans {
		if s.Start < lastEnd {
			continue
		}
		out = append(out, s)
		lastEnd = s.End
	}
	return out
}

// SortDescending orders spans by descending start offset, the order in which
// they must be rewritten so earlier offsets stay valid.
func SortDescending(spans []Span) []Span {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })
	return sorted
}
