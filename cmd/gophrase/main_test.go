package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/gophrase"
	"github.com/ZaguanLabs/gophrase/cache"
	"github.com/ZaguanLabs/gophrase/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t        *testing.T
	dir      string
	provider *provider.MockProvider
	built    []provider.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{
		"GOPHRASE_CONFIG", "GOPHRASE_CACHE_BACKEND", "GOPHRASE_CACHE_PATH", "GOPHRASE_CACHE_EXPIRATION",
		"GOPHRASE_PROVIDER_NAME", "GOPHRASE_PROVIDER_API_KEY", "GOPHRASE_LOG_LEVEL",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return &harness{t: t, dir: t.TempDir(), provider: provider.NewMockProvider()}
}

func (h *harness) factory(cfg provider.Config) (gophrase.AIProvider, error) {
	h.built = append(h.built, cfg)
	return h.provider, nil
}

func (h *harness) cachePath() string {
	return filepath.Join(h.dir, "cache.json")
}

// run executes the CLI against a file cache in the harness directory.
func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	base := []string{
		"--env-file", filepath.Join(h.dir, "missing.env"),
		"--cache-backend", "file",
		"--cache-path", h.cachePath(),
		"--log-level", "error",
	}
	return h.runRaw(append(base, args...)...)
}

func (h *harness) runRaw(args ...string) (int, string, string) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, h.factory)
	return code, stdout.String(), stderr.String()
}

func TestRun_Translate(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.run("break", "a", "leg")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Good luck with your performance.\n", stdout)
	require.NotNil(t, h.provider.LastRequest)
	assert.Equal(t, "break a leg", h.provider.LastRequest.Phrase)
	assert.Equal(t, gophrase.DirectionNTToND, h.provider.LastRequest.Direction)
	assert.FileExists(t, h.cachePath())
}

func TestRun_ReverseServedFromCache(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("hello there")
	require.Equal(t, exitOK, code, stderr)

	code, stdout, stderr := h.run("--direction", "nd->nt", "hi")
	require.Equal(t, exitOK, code, stderr)

	assert.Equal(t, "hello there\n", stdout)
	assert.Equal(t, 1, h.provider.Calls())
}

func TestRun_JSONOutput(t *testing.T) {
	h := newHarness(t)

	code, stdout, stderr := h.run("--json", "-d", "nt->nd", "break a leg")
	require.Equal(t, exitOK, code, stderr)

	var out translateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "Good luck with your performance.", out.Translation)
	assert.Equal(t, "provider", out.Source)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no phrase", nil},
		{"invalid direction", []string{"--direction", "sideways", "hello"}},
		{"unknown flag", []string{"--nope", "hello"}},
		{"negative expiration", []string{"--expiration", "-1h", "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			code, stdout, stderr := h.run(tt.args...)

			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.NotEmpty(t, stderr)
			assert.Equal(t, 0, h.provider.Calls())
		})
	}
}

func TestRun_MissingAPIKey(t *testing.T) {
	h := newHarness(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--env-file", filepath.Join(h.dir, "missing.env"),
		"--cache-backend", "memory",
		"--provider", "anthropic",
		"hello",
	}, &stdout, &stderr, provider.NewProvider)

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "API key is required")
}

func TestRun_NoTranslationAvailable(t *testing.T) {
	h := newHarness(t)
	h.provider.Err = &gophrase.ProviderError{Message: "service unavailable"}

	code, stdout, stderr := h.run("break a leg")

	assert.Equal(t, exitUnavailable, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no translation available")
}

func TestRun_EmptyProviderOutput(t *testing.T) {
	h := newHarness(t)

	code, _, _ := h.run("a phrase the mock does not know")

	assert.Equal(t, exitUnavailable, code)
	assert.NoFileExists(t, h.cachePath())
}

func TestRun_CacheWriteFailure(t *testing.T) {
	h := newHarness(t)
	blocker := filepath.Join(h.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--env-file", filepath.Join(h.dir, "missing.env"),
		"--cache-backend", "file",
		"--cache-path", filepath.Join(blocker, "cache.json"),
		"--log-level", "error",
		"break a leg",
	}, &stdout, &stderr, h.factory)

	assert.Equal(t, exitCacheWrite, code)
	assert.Equal(t, "Good luck with your performance.\n", stdout.String())
	assert.Contains(t, stderr.String(), "persisting cache")
}

func TestRun_ConfigFile(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.dir, "gophrase.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
provider:
  name: mock
  model: test-model
  max_retries: 0
cache:
  backend: memory
`), 0o644))

	code, stdout, stderr := h.runRaw(
		"--env-file", filepath.Join(h.dir, "missing.env"),
		"--config", cfgPath,
		"--log-level", "error",
		"break a leg",
	)

	require.Equal(t, exitOK, code, stderr)
	assert.NotEmpty(t, stdout)
	require.Len(t, h.built, 1)
	assert.Equal(t, "mock", h.built[0].Provider)
	assert.Equal(t, "test-model", h.built[0].Model)
	assert.NoFileExists(t, h.cachePath())
}

func TestRun_CacheCommands(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("hello there")
	require.Equal(t, exitOK, code, stderr)

	code, stdout, stderr := h.run("stats")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Entries:    1")
	assert.Contains(t, stdout, "Expiration: 168h0m0s")

	code, stdout, stderr = h.run("stats", "--json", "--expiration", "0")
	require.Equal(t, exitOK, code, stderr)
	var stats statsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, "0s", stats.Expiration)
	assert.NotEmpty(t, stats.Oldest)
	assert.Equal(t, stats.Oldest, stats.Newest)

	exportPath := filepath.Join(h.dir, "export.json")
	code, _, stderr = h.run("export", exportPath)
	require.Equal(t, exitOK, code, stderr)

	code, stdout, stderr = h.run("export")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, `"phrase": "hello there"`)

	// import into a fresh sqlite cache
	dbPath := filepath.Join(h.dir, "cache.db")
	code, stdout, stderr = h.runRaw(
		"--env-file", filepath.Join(h.dir, "missing.env"),
		"--cache-backend", "sqlite", "--cache-path", dbPath, "--log-level", "error",
		"import", exportPath,
	)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Imported 1 entries (0 skipped)\n", stdout)

	p, err := cache.NewSQLitePersister(dbPath)
	require.NoError(t, err)
	defer p.Close()
	entries, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", entries["hello there"].Translation)
}

func TestRun_Trim(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.cachePath(), []byte(`{
		"old phrase": {"translation": "stale", "timestamp": 1000},
		"new phrase": {"translation": "fresh", "timestamp": 4102444800}
	}`), 0o644))

	code, stdout, stderr := h.run("trim")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Removed 1 expired entries (1 remaining)\n", stdout)

	data, err := os.ReadFile(h.cachePath())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "old phrase"))
	assert.True(t, strings.Contains(string(data), "new phrase"))
}

func TestRun_TrimZeroExpiration(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.cachePath(), []byte(`{
		"old phrase": {"translation": "stale", "timestamp": 1000}
	}`), 0o644))

	code, stdout, stderr := h.run("--expiration", "0", "trim")

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "Removed 1 expired entries (0 remaining)\n", stdout)
}

func TestRun_ImportErrors(t *testing.T) {
	h := newHarness(t)

	code, _, _ := h.run("import", filepath.Join(h.dir, "missing.json"))
	assert.Equal(t, exitUsage, code)

	bad := filepath.Join(h.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	code, _, _ = h.run("import", bad)
	assert.Equal(t, exitUsage, code)

	code, _, _ = h.run("import")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Version(t *testing.T) {
	h := newHarness(t)

	code, stdout, _ := h.runRaw("version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, gophrase.Name)

	code, stdout, _ = h.runRaw("--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, gophrase.Version)
}

func TestRun_Batch(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(h.dir, "phrases.txt")
	require.NoError(t, os.WriteFile(input, []byte("break a leg\n\nhello there\nbreak a leg\n"), 0o644))

	code, stdout, stderr := h.run("batch", input)

	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t,
		"break a leg\tGood luck with your performance.\nhello there\thi\nbreak a leg\tGood luck with your performance.\n",
		stdout)
	assert.Equal(t, 2, h.provider.Calls())

	// reverse direction is served from the cache written above
	require.NoError(t, os.WriteFile(input, []byte("hi\n"), 0o644))
	code, stdout, stderr = h.run("batch", "--json", "-d", "nd->nt", input)
	require.Equal(t, exitOK, code, stderr)
	var rows []translateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "hello there", rows[0].Translation)
	assert.Equal(t, "cache", rows[0].Source)
}

func TestRun_BatchPartialFailure(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(h.dir, "phrases.txt")
	require.NoError(t, os.WriteFile(input, []byte("hello there\nsomething unknown\n"), 0o644))

	code, stdout, stderr := h.run("batch", input)

	assert.Equal(t, exitUnavailable, code)
	assert.Contains(t, stdout, "hello there\thi\n")
	assert.Contains(t, stdout, "something unknown\t(no translation)\n")
	assert.Contains(t, stderr, "1 of 2 phrases")
}

func TestRun_BatchUsageErrors(t *testing.T) {
	h := newHarness(t)
	empty := filepath.Join(h.dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n  \n"), 0o644))

	code, _, _ := h.run("batch", empty)
	assert.Equal(t, exitUsage, code)

	code, _, _ = h.run("batch", filepath.Join(h.dir, "missing.txt"))
	assert.Equal(t, exitUsage, code)

	code, _, _ = h.run("batch", "-d", "sideways", empty)
	assert.Equal(t, exitUsage, code)
}
