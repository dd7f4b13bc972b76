package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/quantmind-br/coversync/internal/utils"
	"github.com/tidwall/jsonc"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var schema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("manifest: invalid embedded schema: %v", err))
	}
	return s
}()

// Store loads and persists the manifest and the URL catalog
type Store struct {
	path        string
	catalogPath string
	logger      *utils.Logger
	now         func() time.Time
}

// StoreOptions contains options for creating a Store
type StoreOptions struct {
	Path        string
	CatalogPath string
	Logger      *utils.Logger
	Now         func() time.Time
}

// NewStore creates a manifest store for the given file locations
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		path:        opts.Path,
		catalogPath: opts.CatalogPath,
		logger:      logger.WithComponent("manifest"),
		now:         now,
	}
}

// Load returns the persisted manifest, or an empty one when it cannot be used
func (s *Store) Load() *Manifest {
	m, err := s.read()
	if err != nil {
		if errors.Is(err, ErrManifestNotFound) {
			s.logger.Debug().Str("path", s.path).Msg("No manifest yet, starting fresh")
		} else {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Ignoring unusable manifest, starting fresh")
		}
		return New()
	}
	return m
}

func (s *Store) read() (*Manifest, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrManifestNotFound
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates manifest bytes
func Parse(data []byte) (*Manifest, error) {
	plain := jsonc.ToJSON(data)
	if !json.Valid(plain) {
		return nil, ErrManifestCorrupted
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(plain))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestCorrupted, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
	}

	var m Manifest
	if err := json.Unmarshal(plain, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestCorrupted, err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, m.Version, Version)
	}
	if m.Items == nil {
		m.Items = make(map[string]Entry)
	}
	return &m, nil
}

// Upsert merges entry into m by content identity: usedIn is unioned,
// firstSeenAt is kept and lastUpdatedAt refreshed.
func (s *Store) Upsert(m *Manifest, entry Entry) Entry {
	now := formatTime(s.now())
	id := entry.ID()

	existing, ok := m.Items[id]

	used := make(map[string]struct{}, len(existing.UsedIn)+len(entry.UsedIn))
	for _, p := range existing.UsedIn {
		used[p] = struct{}{}
	}
	for _, p := range entry.UsedIn {
		if p != "" {
			used[p] = struct{}{}
		}
	}
	entry.UsedIn = sortedKeys(used)

	entry.FirstSeenAt = now
	if ok && existing.FirstSeenAt != "" {
		entry.FirstSeenAt = existing.FirstSeenAt
	}
	entry.LastUpdatedAt = now

	entry.raw = nil
	if ok {
		entry.extra = existing.extra
	}

	m.Items[id] = entry
	return entry
}

// Catalog returns the sorted unique URLs of m plus the URLs touched this run
func (s *Store) Catalog(m *Manifest, touched []string) []string {
	set := make(map[string]struct{}, len(m.Items)+len(touched))
	for _, u := range m.URLs() {
		set[u] = struct{}{}
	}
	for _, u := range touched {
		if u != "" {
			set[u] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Persist stamps m and writes the manifest and the URL catalog. Each file is
// replaced atomically, so a failed run never leaves a partial file behind.
func (s *Store) Persist(m *Manifest, urls []string) error {
	stamp := formatTime(s.now())
	m.UpdatedAt = &stamp
	if m.Version == 0 {
		m.Version = Version
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	if err := utils.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := utils.WriteFileAtomic(s.catalogPath, FormatCatalog(urls), 0644); err != nil {
		return fmt.Errorf("failed to write url list: %w", err)
	}

	s.logger.Debug().
		Int("items", len(m.Items)).
		Int("urls", len(urls)).
		Str("path", s.path).
		Msg("Manifest saved")
	return nil
}

// FormatCatalog renders urls sorted, one per line, with a trailing newline
// only when the list is non-empty
func FormatCatalog(urls []string) []byte {
	sorted := append([]string(nil), urls...)
	sort.Strings(sorted)
	if len(sorted) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(sorted, "\n") + "\n")
}

// Path returns the manifest file path
func (s *Store) Path() string {
	return s.path
}

// CatalogPath returns the URL catalog file path
func (s *Store) CatalogPath() string {
	return s.catalogPath
}
