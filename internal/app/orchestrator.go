package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/quantmind-br/coversync/internal/asset"
	"github.com/quantmind-br/coversync/internal/cache"
	"github.com/quantmind-br/coversync/internal/config"
	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/internal/git"
	"github.com/quantmind-br/coversync/internal/manifest"
	"github.com/quantmind-br/coversync/internal/pipeline"
	"github.com/quantmind-br/coversync/internal/store"
	"github.com/quantmind-br/coversync/internal/utils"
)

// Orchestrator runs cover synchronization over every configured document
type Orchestrator struct {
	config      *config.Config
	root        string
	mode        domain.Mode
	logger      *utils.Logger
	store       domain.BlobStore
	cache       domain.Cache
	manifest    *manifest.Store
	progress    bool
	progressOut io.Writer
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	domain.CommonOptions
	Config *config.Config

	// Optional overrides, mainly for tests
	Logger         *utils.Logger
	Store          domain.BlobStore
	Cache          domain.Cache
	GitClient      git.Client
	Now            func() time.Time
	ProgressOutput io.Writer
}

// NewOrchestrator creates a new orchestrator with the given configuration.
// Outside check-only and dry-run, a missing credential fails here, before
// any document is touched.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.DryRun {
		cfg.Blob.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode := opts.Mode()
	if mode == domain.ModeApply {
		if err := cfg.RequireCredential(); err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logLevel := cfg.Logging.Level
		if opts.Verbose {
			logLevel = "debug"
		}
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   logLevel,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
			NoColor: cfg.Logging.NoColor,
		})
	}

	root, err := resolveRoot(cfg.Root, opts.GitClient)
	if err != nil {
		return nil, err
	}

	blobStore := opts.Store
	if blobStore == nil {
		blobStore = store.New(cfg)
	}

	lookupCache := opts.Cache
	if lookupCache == nil && cfg.Cache.Enabled && mode == domain.ModeApply {
		c, err := cache.NewBadgerCache(cache.Options{
			Directory: utils.ExpandPath(cfg.Cache.Directory),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Lookup cache unavailable, continuing without it")
		} else {
			lookupCache = c
		}
	}

	return &Orchestrator{
		config: cfg,
		root:   root,
		mode:   mode,
		logger: logger,
		store:  blobStore,
		cache:  lookupCache,
		manifest: manifest.NewStore(manifest.StoreOptions{
			Path:        utils.ResolveUnder(root, cfg.Manifest.Path),
			CatalogPath: utils.ResolveUnder(root, cfg.Manifest.URLList),
			Logger:      logger,
			Now:         opts.Now,
		}),
		progress:    opts.Progress,
		progressOut: opts.ProgressOutput,
	}, nil
}

// resolveRoot uses the configured root, else the enclosing git worktree of
// the working directory
func resolveRoot(configured string, client git.Client) (string, error) {
	if configured != "" {
		return utils.ResolveUnder(mustGetwd(), configured), nil
	}
	if client == nil {
		client = git.NewClient()
	}
	return git.FindRoot(client, mustGetwd())
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Root returns the repository root documents are resolved against
func (o *Orchestrator) Root() string {
	return o.root
}

// Mode returns the run mode
func (o *Orchestrator) Mode() domain.Mode {
	return o.mode
}

// Run processes every document and, in apply mode, persists the manifest and
// URL catalog once at the end. A check-only run with out-of-sync directives
// returns the report together with ErrSyncPending.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()

	report := &Report{
		Mode:         o.mode,
		Provider:     o.store.Name(),
		Root:         o.root,
		ManifestPath: o.manifest.Path(),
		CatalogPath:  o.manifest.CatalogPath(),
	}

	o.logger.Info().
		Str("root", o.root).
		Str("mode", o.mode.String()).
		Str("provider", report.Provider).
		Msg("Starting cover sync")

	docs, err := FindDocuments(o.root, o.config.Documents)
	if err != nil {
		return report, err
	}

	state := pipeline.NewRunState(o.manifest.Load())
	processor := pipeline.NewProcessor(pipeline.ProcessorOptions{
		Root:   o.root,
		Prefix: o.config.Blob.Prefix,
		Mode:   o.mode,
		Assets: asset.NewResolver(o.root, o.config.PublicDir),
		Resolver: store.NewResolver(o.store, store.ResolverOptions{
			Cache:    o.cache,
			CacheTTL: o.config.Cache.TTL,
			Logger:   o.logger,
		}),
		Manifest: o.manifest,
		State:    state,
		Logger:   o.logger,
	})

	var bar interface {
		Add(int) error
		Finish() error
	}
	if o.progress {
		desc := utils.DescScanning
		if o.mode == domain.ModeCheck {
			desc = utils.DescChecking
		}
		bar = utils.NewProgressBar(len(docs), desc, o.progressOut)
	}

	for _, path := range docs {
		if err := ctx.Err(); err != nil {
			o.logger.Warn().Msg("Cover sync cancelled")
			report.fill(state, time.Since(startTime))
			return report, err
		}

		doc, err := pipeline.ReadDocument(o.root, path)
		if err != nil {
			o.logger.Warn().Err(err).Msg("Skipping unreadable document")
			report.Unreadable++
		} else {
			res, err := processor.ProcessDocument(ctx, doc)
			if err != nil {
				report.fill(state, time.Since(startTime))
				return report, fmt.Errorf("cover sync aborted at %s: %w", doc.Rel, err)
			}
			if res.State == pipeline.DocumentWritten {
				report.Written = append(report.Written, res.Document)
			}
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	report.fill(state, time.Since(startTime))

	if o.mode == domain.ModeCheck {
		if len(state.Pending) > 0 {
			report.Outcome = OutcomeCheckPending
			o.logSummary(report)
			return report, domain.ErrSyncPending
		}
		report.Outcome = OutcomeCheckPassed
		o.logSummary(report)
		return report, nil
	}

	urls := o.manifest.Catalog(state.Manifest, state.TouchedURLs())
	if err := o.manifest.Persist(state.Manifest, urls); err != nil {
		return report, err
	}
	report.URLs = len(urls)
	report.Outcome = OutcomeApplied
	o.logSummary(report)
	return report, nil
}

func (o *Orchestrator) logSummary(r *Report) {
	o.logger.Info().
		Str("outcome", r.Outcome.String()).
		Int("documents", r.Stats.Documents).
		Int("covers", r.Stats.Covers).
		Int("written", r.Stats.Written).
		Int("uploaded", r.Stats.Uploaded).
		Int("reused", r.Stats.Reused).
		Int("skipped", r.Stats.Skipped).
		Int("pending", r.Stats.Pending).
		Dur("duration", r.Duration).
		Msg("Cover sync completed")

	for _, p := range r.Pending {
		o.logger.Warn().
			Str("document", p.Document).
			Str("path", p.Path).
			Str("reason", p.Reason).
			Msg("Cover sync pending")
	}
}

// Close releases all resources held by the orchestrator
func (o *Orchestrator) Close() error {
	if o.cache != nil {
		err := o.cache.Close()
		o.cache = nil
		if err != nil && !errors.Is(err, os.ErrClosed) {
			return err
		}
	}
	return nil
}
