package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/internal/pipeline"
	"github.com/quantmind-br/coversync/internal/utils"
)

// Outcome is the terminal state of a run
type Outcome int

const (
	// OutcomeIncomplete means the run stopped before finishing
	OutcomeIncomplete Outcome = iota
	// OutcomeApplied means documents were synced and the manifest persisted
	OutcomeApplied
	// OutcomeCheckPassed means a check-only run found nothing to do
	OutcomeCheckPassed
	// OutcomeCheckPending means a check-only run found out-of-sync covers
	OutcomeCheckPending
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeCheckPassed:
		return "check-passed"
	case OutcomeCheckPending:
		return "check-pending"
	default:
		return "incomplete"
	}
}

// Report summarizes a run
type Report struct {
	Outcome      Outcome
	Mode         domain.Mode
	Provider     string
	Root         string
	ManifestPath string
	CatalogPath  string
	Stats        pipeline.Stats
	Pending      []pipeline.PendingItem
	Written      []string
	Unreadable   int
	URLs         int
	Duration     time.Duration
}

func (r *Report) fill(state *pipeline.RunState, d time.Duration) {
	r.Stats = state.Stats
	r.Pending = append([]pipeline.PendingItem(nil), state.Pending...)
	r.Duration = d
}

// Summary renders the human-readable end-of-run message
func (r *Report) Summary() string {
	var sb strings.Builder
	switch r.Outcome {
	case OutcomeApplied:
		sb.WriteString("Cover sync complete.\n")
		fmt.Fprintf(&sb, "- Documents: %d scanned, %d written\n", r.Stats.Documents, r.Stats.Written)
		fmt.Fprintf(&sb, "- Covers: %d found, %d uploaded, %d reused, %d skipped\n",
			r.Stats.Covers, r.Stats.Uploaded, r.Stats.Reused, r.Stats.Skipped)
		fmt.Fprintf(&sb, "- Manifest written: %s\n", utils.RelSlash(r.Root, r.ManifestPath))
		fmt.Fprintf(&sb, "- URL list written: %s\n", utils.RelSlash(r.Root, r.CatalogPath))
	case OutcomeCheckPassed:
		fmt.Fprintf(&sb, "All %d covers are in sync.\n", r.Stats.Covers)
	case OutcomeCheckPending:
		fmt.Fprintf(&sb, "%d cover(s) need syncing:\n", len(r.Pending))
		for _, p := range r.Pending {
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", p.Document, p.Path, p.Reason)
		}
	default:
		fmt.Fprintf(&sb, "Cover sync stopped after %d document(s).\n", r.Stats.Documents)
	}
	return sb.String()
}
