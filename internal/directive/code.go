package directive

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// codeRegions holds the byte ranges of code block content in a document.
type codeRegions []text.Segment

// findCodeRegions parses src with goldmark's block parser and collects the
// line segments of every fenced and indented code block.
func findCodeRegions(src []byte) codeRegions {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var regions codeRegions
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				regions = append(regions, lines.At(i))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return regions
}

// contains reports whether offset falls inside any code region.
func (r codeRegions) contains(offset int) bool {
	for _, seg := range r {
		if offset >= seg.Start && offset < seg.Stop {
			return true
		}
	}
	return false
}
