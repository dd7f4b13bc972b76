package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/quantmind-br/coversync/internal/directive"
	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/internal/rewrite"
	"github.com/quantmind-br/coversync/internal/utils"
)

// Document is a text file read once at the start of its processing
type Document struct {
	Path    string
	Rel     string
	Content []byte
}

// ReadDocument loads the document at path; Rel is path relative to root
func ReadDocument(root, path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &Document{
		Path:    path,
		Rel:     utils.RelSlash(root, path),
		Content: content,
	}, nil
}

// DocumentState is the terminal state of a document
type DocumentState int

const (
	// DocumentNoCover means the document has no cover directive
	DocumentNoCover DocumentState = iota
	// DocumentUnchanged means no directive needed rewriting
	DocumentUnchanged
	// DocumentWritten means the document was saved with new URLs
	DocumentWritten
)

func (s DocumentState) String() string {
	switch s {
	case DocumentNoCover:
		return "no-cover"
	case DocumentUnchanged:
		return "unchanged"
	case DocumentWritten:
		return "written"
	default:
		return "unknown"
	}
}

// DocumentResult describes what happened to one document
type DocumentResult struct {
	Document string
	State    DocumentState
	Spans    []SpanResult
}

// ProcessDocument handles every cover of doc, last first, and in apply mode
// writes the document once if any directive was rewritten. A store failure
// aborts the document before anything is written.
func (p *Processor) ProcessDocument(ctx context.Context, doc *Document) (*DocumentResult, error) {
	p.state.Stats.Documents++
	result := &DocumentResult{Document: doc.Rel, State: DocumentNoCover}

	spans := directive.Locate(doc.Content)
	if len(spans) == 0 {
		return result, nil
	}
	p.state.Stats.WithCovers++
	result.State = DocumentUnchanged

	var replacements []rewrite.Replacement
	for _, span := range directive.SortDescending(spans) {
		res, err := p.ProcessSpan(ctx, doc, span)
		if err != nil {
			return result, err
		}
		p.count(res)
		result.Spans = append(result.Spans, res)
		if res.Status == SpanRewritten {
			replacements = append(replacements, rewrite.Replacement{Span: span, Text: res.Replacement})
		}
	}

	if p.mode != domain.ModeApply || len(replacements) == 0 {
		return result, nil
	}

	updated, n := rewrite.Apply(doc.Content, replacements)
	if n == 0 {
		return result, nil
	}
	written, err := rewrite.WriteIfChanged(doc.Path, doc.Content, updated)
	if err != nil {
		return result, err
	}
	if written {
		result.State = DocumentWritten
		p.state.Stats.Written++
		p.logger.Info().Str("document", doc.Rel).Int("covers", n).Msg("Updated document")
	}
	return result, nil
}

func (p *Processor) count(res SpanResult) {
	st := &p.state.Stats
	st.Covers++
	switch res.Status {
	case SpanSkipped:
		st.Skipped++
	case SpanMatched:
		st.Matched++
	case SpanRewritten:
		st.Rewritten++
	}
	if res.Uploaded {
		st.Uploaded++
	}
	if res.Reused {
		st.Reused++
	}
}
