package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantmind-br/coversync/internal/asset"
	"github.com/quantmind-br/coversync/internal/digest"
	"github.com/quantmind-br/coversync/internal/directive"
	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/internal/manifest"
	"github.com/quantmind-br/coversync/internal/utils"
)

// ObjectResolver finds or uploads content-addressed objects
type ObjectResolver interface {
	Provider() string
	Find(ctx context.Context, key string) (string, bool, error)
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// SpanStatus is the terminal state of one directive
type SpanStatus int

const (
	// SpanSkipped means the directive was left alone (no path, malformed, unreadable asset)
	SpanSkipped SpanStatus = iota
	// SpanMatched means the URL already addressed the local content
	SpanMatched
	// SpanRewritten means the directive gets a new URL
	SpanRewritten
	// SpanPending means a check-only run found the directive out of sync
	SpanPending
)

func (s SpanStatus) String() string {
	switch s {
	case SpanSkipped:
		return "skipped"
	case SpanMatched:
		return "matched"
	case SpanRewritten:
		return "rewritten"
	case SpanPending:
		return "pending"
	default:
		return "unknown"
	}
}

// SpanResult describes what happened to one directive
type SpanResult struct {
	Span        directive.Span
	Status      SpanStatus
	Path        string
	ContentID   string
	Key         string
	URL         string
	Uploaded    bool
	Reused      bool
	Reason      string
	Replacement []byte
}

// Processor runs the sync decision for the directives of a document
type Processor struct {
	root     string
	prefix   string
	mode     domain.Mode
	assets   *asset.Resolver
	resolver ObjectResolver
	manifest *manifest.Store
	state    *RunState
	logger   *utils.Logger
}

// ProcessorOptions contains options for creating a Processor
type ProcessorOptions struct {
	Root     string
	Prefix   string
	Mode     domain.Mode
	Assets   *asset.Resolver
	Resolver ObjectResolver
	Manifest *manifest.Store
	State    *RunState
	Logger   *utils.Logger
}

// NewProcessor creates a Processor
func NewProcessor(opts ProcessorOptions) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	state := opts.State
	if state == nil {
		state = NewRunState(nil)
	}
	return &Processor{
		root:     opts.Root,
		prefix:   opts.Prefix,
		mode:     opts.Mode,
		assets:   opts.Assets,
		resolver: opts.Resolver,
		manifest: opts.Manifest,
		state:    state,
		logger:   logger.WithComponent("pipeline"),
	}
}

// State returns the run state the processor records into
func (p *Processor) State() *RunState {
	return p.state
}

// ProcessSpan decides and, in apply mode, syncs one directive. Only store
// failures are returned; every other problem skips the directive.
func (p *Processor) ProcessSpan(ctx context.Context, doc *Document, span directive.Span) (SpanResult, error) {
	res := SpanResult{Span: span, Status: SpanSkipped}
	log := p.logger.WithDocument(doc.Rel)

	block, err := directive.Decode(doc.Content[span.Start:span.End])
	if err != nil {
		log.Debug().Err(err).Int("offset", span.Start).Msg("Skipping malformed cover")
		res.Reason = err.Error()
		return res, nil
	}

	res.Path = block.Path()
	if res.Path == "" {
		res.Reason = "no path"
		return res, nil
	}

	a, err := p.assets.Load(doc.Rel, res.Path)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			log.Warn().Str("path", res.Path).Msg("Missing local file for cover")
		} else {
			log.Warn().Err(err).Str("path", res.Path).Msg("Unreadable local file for cover")
		}
		res.Reason = err.Error()
		return res, nil
	}

	res.ContentID = a.ID.String()
	res.Key = digest.BlobKey(p.prefix, a.ID)
	current := block.URL()

	decision := Decide(current, a.ID.Digest, p.mode)
	res.Reason = decision.Reason

	switch decision.Action {
	case ActionKeep:
		res.Status = SpanMatched
		res.URL = current

	case ActionPending:
		res.Status = SpanPending
		p.state.AddPending(PendingItem{Document: doc.Rel, Path: res.Path, Reason: decision.Reason})
		log.Info().Str("path", res.Path).Str("reason", decision.Reason).Msg("Cover out of sync")
		return res, nil

	case ActionSync:
		url, err := p.resolve(ctx, doc, a, res.Key, &res)
		if err != nil {
			return res, err
		}
		res.URL = url
		res.Status = SpanMatched
		if raw, _ := block.Get(directive.KeyURL); raw != url {
			block.Set(directive.KeyURL, url)
			res.Replacement = block.Encode()
			res.Status = SpanRewritten
		}
	}

	p.record(doc, a, res)
	return res, nil
}

// resolve returns the URL of key, reusing this run's earlier resolutions,
// then the remote store, and uploading only when the object is absent
func (p *Processor) resolve(ctx context.Context, doc *Document, a *asset.Asset, key string, res *SpanResult) (string, error) {
	if url, ok := p.state.Resolved(key); ok {
		res.Reused = true
		return url, nil
	}

	url, found, err := p.resolver.Find(ctx, key)
	if err != nil {
		return "", fmt.Errorf("lookup for %s: %w", doc.Rel, err)
	}
	if found {
		res.Reused = true
		p.logger.Debug().Str("key", key).Msg("Reusing existing object")
	} else {
		p.logger.Info().Str("document", doc.Rel).Str("key", key).Msg("Uploading cover")
		url, err = p.resolver.Upload(ctx, key, a.Bytes, a.ContentType)
		if err != nil {
			return "", fmt.Errorf("upload for %s: %w", doc.Rel, err)
		}
		res.Uploaded = true
	}

	p.state.Resolve(key, url)
	return url, nil
}

// record upserts the manifest entry of an apply-mode outcome
func (p *Processor) record(doc *Document, a *asset.Asset, res SpanResult) {
	if p.mode != domain.ModeApply || res.URL == "" {
		return
	}

	p.state.Touch(res.URL)
	if p.manifest == nil {
		return
	}

	p.manifest.Upsert(p.state.Manifest, manifest.Entry{
		Digest:      a.ID.Digest,
		Extension:   a.ID.Ext,
		Size:        a.Size(),
		ContentType: a.ContentType,
		Key:         res.Key,
		URL:         res.URL,
		Provider:    p.resolver.Provider(),
		LocalPath:   utils.RelSlash(p.root, a.Path),
		UsedIn:      []string{doc.Rel},
		Width:       a.Width,
		Height:      a.Height,
	})
}
