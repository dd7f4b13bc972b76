package app

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quantmind-br/coversync/internal/config"
	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/internal/manifest"
	"github.com/quantmind-br/coversync/tests/mocks"
	"github.com/quantmind-br/coversync/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

func newTestConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.Logging.Level = "error"
	return cfg
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, opts domain.CommonOptions) *Orchestrator {
	t.Helper()
	orch, err := NewOrchestrator(OrchestratorOptions{
		CommonOptions: opts,
		Config:        cfg,
		Logger:        testutil.NewTestLogger(t),
		Now:           fixedNow,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = orch.Close() })
	return orch
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestNewOrchestrator(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := NewOrchestrator(OrchestratorOptions{})
		assert.Error(t, err)
	})

	t.Run("missing credential fails before any document is touched", func(t *testing.T) {
		root := testutil.TempRepo(t)
		testutil.WriteFile(t, root, "img.png", []byte("x"))
		testutil.WriteFile(t, root, "src/posts/a.md", []byte(":::cover\npath=\"img.png\"\n:::\n"))
		before := testutil.Snapshot(t, root)

		_, err := NewOrchestrator(OrchestratorOptions{Config: newTestConfig(root), Logger: testutil.NewTestLogger(t)})
		assert.ErrorIs(t, err, domain.ErrMissingCredential)
		testutil.AssertTreeUnchanged(t, root, before)
	})

	t.Run("dry-run needs no credential", func(t *testing.T) {
		root := testutil.TempRepo(t)
		orch := newTestOrchestrator(t, newTestConfig(root), domain.CommonOptions{DryRun: true})
		assert.Equal(t, "mock", orch.store.Name())
		assert.Equal(t, domain.ModeApply, orch.Mode())
	})

	t.Run("check-only needs no credential", func(t *testing.T) {
		root := testutil.TempRepo(t)
		orch := newTestOrchestrator(t, newTestConfig(root), domain.CommonOptions{Check: true})
		assert.Equal(t, domain.ModeCheck, orch.Mode())
	})

	t.Run("token selects the real store", func(t *testing.T) {
		root := testutil.TempRepo(t)
		cfg := newTestConfig(root)
		cfg.Blob.Token = "tok"
		orch := newTestOrchestrator(t, cfg, domain.CommonOptions{})
		assert.Equal(t, "vercel-blob", orch.store.Name())
	})

	t.Run("opens the lookup cache when enabled", func(t *testing.T) {
		root := testutil.TempRepo(t)
		cfg := newTestConfig(root)
		cfg.Cache.Enabled = true
		cfg.Cache.Directory = t.TempDir()
		orch := newTestOrchestrator(t, cfg, domain.CommonOptions{DryRun: true})
		assert.NotNil(t, orch.cache)
		require.NoError(t, orch.Close())
		assert.Nil(t, orch.cache)
	})

	t.Run("root resolves to the given directory", func(t *testing.T) {
		root := testutil.TempRepo(t)
		orch := newTestOrchestrator(t, newTestConfig(root), domain.CommonOptions{DryRun: true})
		assert.Equal(t, root, orch.Root())
	})
}

// TestOrchestrator_Run_FixtureMatrix covers every combination of cover,
// other directive and body, plus a cover whose url encodes a stale digest.
func TestOrchestrator_Run_FixtureMatrix(t *testing.T) {
	root := testutil.TempRepo(t)
	img := randomBytes(t, 256)
	imgSha := testutil.Digest(img)
	testutil.WriteFile(t, root, "assets-local/sync-test.webp", img)

	build := func(hasCover, hasOther, hasBody bool) string {
		var lines []string
		if hasOther {
			lines = append(lines, ":::title", "My Test Title", ":::", "")
		}
		if hasCover {
			lines = append(lines,
				":::cover",
				`path="assets-local/sync-test.webp"`,
				`url="https://mock.vercel-storage.com/images/`+imgSha+`.webp"`,
				`alt="Alt text for testing"`,
				":::", "")
		}
		if hasBody {
			lines = append(lines, "# Heading", "", "Some **body** content here.", "")
		}
		if len(lines) == 0 {
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n")
	}

	originals := map[string]string{}
	for _, hasCover := range []bool{false, true} {
		for _, hasOther := range []bool{false, true} {
			for _, hasBody := range []bool{false, true} {
				name := "src/posts/__sync-tests__/case_" + flag(hasCover, "C") + flag(hasOther, "O") + flag(hasBody, "B") + ".md"
				originals[name] = build(hasCover, hasOther, hasBody)
				testutil.WriteFile(t, root, name, []byte(originals[name]))
			}
		}
	}

	mismatch := "src/posts/__sync-tests__/case_cover_url_mismatch.md"
	wrongSha := "deadbeef1234567890abcdef"
	testutil.WriteFile(t, root, mismatch, []byte(strings.Join([]string{
		":::cover",
		`path="assets-local/sync-test.webp"`,
		`url="https://mock.vercel-storage.com/images/` + wrongSha + `.webp"`,
		`alt="Mismatch test"`,
		":::",
		"",
		"Some body content here for mismatch test.",
		"",
	}, "\n")))

	report, err := newTestOrchestrator(t, newTestConfig(root), domain.CommonOptions{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, report.Outcome)

	for name, before := range originals {
		assert.Equal(t, before, testutil.ReadFile(t, root, name), "%s must be unchanged", name)
	}

	after := testutil.ReadFile(t, root, mismatch)
	assert.NotContains(t, after, wrongSha)
	assert.Contains(t, after, `url="`+testutil.MockHost+`/images/`+imgSha+`.webp"`)
	assert.Equal(t, []string{mismatch}, report.Written)
	assert.Equal(t, 1, report.Stats.Uploaded)

	m, err := manifest.Parse([]byte(testutil.ReadFile(t, root, "maintain/blobs.manifest.json")))
	require.NoError(t, err)
	entry := m.Items[imgSha+".webp"]
	assert.Equal(t, "mock", entry.Provider)
	assert.Equal(t, "assets-local/sync-test.webp", entry.LocalPath)
	assert.Len(t, entry.UsedIn, 5)
	assert.Equal(t, testutil.MockHost+"/images/"+imgSha+".webp", entry.URL)
}

func flag(on bool, letter string) string {
	if on {
		return letter
	}
	return strings.ToLower(letter)
}

func TestOrchestrator_Run_SingleDocumentTwice(t *testing.T) {
	root := testutil.TempRepo(t)
	img := randomBytes(t, 64)
	testutil.WriteFile(t, root, "img.webp", img)
	testutil.WriteFile(t, root, "a.md", []byte("Intro paragraph.\n\n:::cover\npath=\"img.webp\"\n:::\n\nOutro.\n"))

	cfg := newTestConfig(root)
	cfg.Documents = []string{"*.md"}

	report, err := newTestOrchestrator(t, cfg, domain.CommonOptions{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, report.Written)

	url := testutil.MockURL(img, ".webp")
	assert.Equal(t, "Intro paragraph.\n\n:::cover\npath=\"img.webp\"\nurl=\""+url+"\"\n:::\n\nOutro.\n", testutil.ReadFile(t, root, "a.md"))
	assert.Equal(t, url+"\n", testutil.ReadFile(t, root, "maintain/blobs-urls.txt"))

	manifestJSON := testutil.ReadFile(t, root, "maintain/blobs.manifest.json")
	assert.Contains(t, manifestJSON, `"updatedAt": "2025-03-04T05:06:07.000Z"`)

	// second run leaves the document untouched
	docBefore := testutil.Snapshot(t, root)["a.md"]
	report, err = newTestOrchestrator(t, cfg, domain.CommonOptions{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.Equal(t, 0, report.Stats.Uploaded)
	docAfter := testutil.Snapshot(t, root)["a.md"]
	assert.Equal(t, docBefore, docAfter)
}

func TestOrchestrator_Run_CheckMode(t *testing.T) {
	root := testutil.TempRepo(t)
	img := randomBytes(t, 32)
	testutil.WriteFile(t, root, "public/img.png", img)
	testutil.WriteFile(t, root, "src/posts/synced.md", []byte(":::cover\npath=\"/img.png\"\nurl=\""+testutil.MockURL(img, ".png")+"\"\n:::\n"))

	cfg := newTestConfig(root)

	t.Run("all synced passes", func(t *testing.T) {
		before := testutil.Snapshot(t, root)
		report, err := newTestOrchestrator(t, cfg, domain.CommonOptions{Check: true}).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeCheckPassed, report.Outcome)
		testutil.AssertTreeUnchanged(t, root, before)
	})

	t.Run("stale cover is pending and nothing is written", func(t *testing.T) {
		testutil.WriteFile(t, root, "src/posts/stale.md", []byte(":::cover\npath=\"/img.png\"\n:::\n"))
		before := testutil.Snapshot(t, root)

		report, err := newTestOrchestrator(t, cfg, domain.CommonOptions{Check: true}).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrSyncPending)
		require.NotNil(t, report)
		assert.Equal(t, OutcomeCheckPending, report.Outcome)
		require.Len(t, report.Pending, 1)
		assert.Equal(t, "src/posts/stale.md", report.Pending[0].Document)
		assert.Contains(t, report.Summary(), "src/posts/stale.md")
		testutil.AssertTreeUnchanged(t, root, before)
		assert.False(t, testutil.Exists(root, "maintain"))
	})
}

func TestOrchestrator_Run_NetworkFailureKeepsManifest(t *testing.T) {
	root := testutil.TempRepo(t)
	testutil.WriteFile(t, root, "img.png", []byte("png"))
	testutil.WriteFile(t, root, "src/posts/a.md", []byte(":::cover\npath=\"img.png\"\n:::\n"))
	testutil.WriteFile(t, root, "maintain/blobs.manifest.json", []byte(`{"version":1,"updatedAt":null,"items":{}}`))
	before := testutil.Snapshot(t, root)

	ctrl := gomock.NewController(t)
	bs := mocks.NewMockBlobStore(ctrl)
	bs.EXPECT().Name().Return("vercel-blob").AnyTimes()
	bs.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, domain.NewStoreError("vercel-blob", "list", "images/", 503, errors.New("unavailable")))

	cfg := newTestConfig(root)
	cfg.Blob.Token = "tok"
	orch, err := NewOrchestrator(OrchestratorOptions{
		Config: cfg,
		Logger: testutil.NewTestLogger(t),
		Store:  bs,
	})
	require.NoError(t, err)
	defer orch.Close()

	report, err := orch.Run(context.Background())
	require.Error(t, err)
	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, OutcomeIncomplete, report.Outcome)
	testutil.AssertTreeUnchanged(t, root, before)
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	root := testutil.TempRepo(t)
	testutil.WriteFile(t, root, "src/posts/a.md", []byte("no covers\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOrchestrator(t, newTestConfig(root), domain.CommonOptions{DryRun: true}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, testutil.Exists(root, "maintain"))
}

func TestOrchestrator_Run_CarriesManifestAcrossRuns(t *testing.T) {
	root := testutil.TempRepo(t)
	imgA := randomBytes(t, 16)
	imgB := randomBytes(t, 16)
	testutil.WriteFile(t, root, "a.png", imgA)
	testutil.WriteFile(t, root, "b.png", imgB)
	testutil.WriteFile(t, root, "src/posts/a.md", []byte(":::cover\npath=\"a.png\"\n:::\n"))

	cfg := newTestConfig(root)
	_, err := newTestOrchestrator(t, cfg, domain.CommonOptions{DryRun: true}).Run(context.Background())
	require.NoError(t, err)

	// a.md no longer references a.png, its entry and URL are carried over
	testutil.WriteFile(t, root, "src/posts/a.md", []byte(":::cover\npath=\"b.png\"\n:::\n"))
	report, err := newTestOrchestrator(t, cfg, domain.CommonOptions{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.URLs)

	catalog := testutil.ReadFile(t, root, "maintain/blobs-urls.txt")
	assert.Contains(t, catalog, testutil.MockURL(imgA, ".png"))
	assert.Contains(t, catalog, testutil.MockURL(imgB, ".png"))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "applied", OutcomeApplied.String())
	assert.Equal(t, "check-passed", OutcomeCheckPassed.String())
	assert.Equal(t, "check-pending", OutcomeCheckPending.String())
	assert.Equal(t, "incomplete", OutcomeIncomplete.String())
}
