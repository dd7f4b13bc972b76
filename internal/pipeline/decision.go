package pipeline

import (
	"github.com/quantmind-br/coversync/internal/digest"
	"github.com/quantmind-br/coversync/internal/domain"
)

// Action is the outcome of comparing a directive with its local asset
type Action int

const (
	// ActionKeep means the URL already addresses the local content
	ActionKeep Action = iota
	// ActionPending means a sync is needed but the run is check-only
	ActionPending
	// ActionSync means the object must be found or uploaded and the URL rewritten
	ActionSync
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionPending:
		return "pending"
	case ActionSync:
		return "sync"
	default:
		return "unknown"
	}
}

// Decision explains an Action
type Decision struct {
	Action    Action
	URLDigest string
	Reason    string
}

// Reasons reported with a decision
const (
	ReasonMissingURL  = "missing url"
	ReasonDigestDiff  = "url digest differs from local content"
	ReasonDigestMatch = "url matches local content"
)

// Decide compares the digest encoded in currentURL with localDigest
func Decide(currentURL, localDigest string, mode domain.Mode) Decision {
	urlDigest, ok := digest.FromURL(currentURL)

	d := Decision{URLDigest: urlDigest}
	switch {
	case !ok:
		d.Reason = ReasonMissingURL
	case urlDigest != localDigest:
		d.Reason = ReasonDigestDiff
	default:
		d.Action = ActionKeep
		d.Reason = ReasonDigestMatch
		return d
	}

	if mode == domain.ModeCheck {
		d.Action = ActionPending
	} else {
		d.Action = ActionSync
	}
	return d
}
