package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg/build"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/frontend/gossa"
	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/render"
)

func fakeResult() *gossa.Result {
	return &gossa.Result{
		Functions: []build.Function{
			{Name: "main", Blocks: []build.Block{
				{ID: 0, Statements: []build.Statement{{ID: 0, Text: "helper()"}}, Succs: []int{1}},
				{ID: 1, Statements: []build.Statement{{ID: 1, Text: "return"}}},
			}},
			{Name: "helper", Blocks: []build.Block{
				{ID: 0, Statements: []build.Statement{{ID: 0, Text: "return"}}},
			}},
		},
		Calls: []callgraph.Call{{Caller: "main", Callee: "helper"}},
	}
}

// newTestAnalyzer returns an analyzer over a memory cache whose loader
// counts its invocations.
func newTestAnalyzer(t *testing.T) (*Analyzer, *int, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	c, err := cache.NewMemoryCache(16)
	require.NoError(t, err)
	a := New(c, nil, nil)
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	loads := 0
	a.load = func(ctx context.Context, patterns []string, opts gossa.Options) (*gossa.Result, error) {
		loads++
		return fakeResult(), nil
	}
	t.Cleanup(func() { a.Close() })
	return a, &loads, dir
}

func TestAnalyze(t *testing.T) {
	a, loads, dir := newTestAnalyzer(t)
	ctx := context.Background()

	res, err := a.Analyze(ctx, Options{Dir: dir})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, Stats{Functions: 2, Nodes: 3, Edges: 1, Calls: 1, Duration: res.Stats.Duration}, res.Stats)
	assert.True(t, res.Calls.Calls("main", "helper"))
	assert.Equal(t, "2024-05-01 12:00:00", res.CallExport.Timestamp)

	var export graph.CallGraph
	require.NoError(t, json.Unmarshal(res.Document.FunctionCalls, &export))
	assert.Equal(t, dir, export.Filename)

	again, err := a.Analyze(ctx, Options{Dir: dir})
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, 1, *loads)
	assert.Equal(t, res.Graph.Nodes(), again.Graph.Nodes())
	assert.Equal(t, res.Graph.Edges(), again.Graph.Edges())
	assert.NotEqual(t, res.RunID, again.RunID)

	_, err = a.Analyze(ctx, Options{Dir: dir, Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, *loads)

	_, err = a.Analyze(ctx, Options{Dir: dir, Function: "helper"})
	require.NoError(t, err)
	assert.Equal(t, 3, *loads, "a different function filter must not hit the cache")
}

func TestAnalyzeSourceChangeMisses(t *testing.T) {
	a, loads, dir := newTestAnalyzer(t)
	ctx := context.Background()

	_, err := a.Analyze(ctx, Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	_, err = a.Analyze(ctx, Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 2, *loads)
}

func TestAnalyzeStatementCachePerPass(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))

	var buf bytes.Buffer
	a := New(nil, nil, log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	a.load = func(context.Context, []string, gossa.Options) (*gossa.Result, error) {
		return fakeResult(), nil
	}
	defer a.Close()

	for range 2 {
		_, err := a.Analyze(context.Background(), Options{Dir: dir, Refresh: true})
		require.NoError(t, err)
	}
	// Each pass starts from an empty statement cache, so the first function
	// built never hits.
	assert.Equal(t, 2, strings.Count(buf.String(), "name=main blocks=2 cache_hits=0 cache_misses=2"), buf.String())
}

func TestAnalyzeErrors(t *testing.T) {
	a, _, dir := newTestAnalyzer(t)
	ctx := context.Background()

	_, err := a.Analyze(ctx, Options{Dir: dir, Function: "not a name"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)

	a.load = func(context.Context, []string, gossa.Options) (*gossa.Result, error) {
		return nil, errors.New(errors.ErrCodeFunctionNotFound, "no function matches")
	}
	_, err = a.Analyze(ctx, Options{Dir: dir, Refresh: true})
	assert.True(t, errors.Is(err, errors.ErrCodeFunctionNotFound))
}

func TestValidateRelative(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
		wantDir string
	}{
		{"defaults", Options{}, false, "/srv/root"},
		{"sub dir", Options{Dir: "proj", Patterns: []string{".", "./...", "./cmd/..."}}, false, "/srv/root/proj"},
		{"dir traversal", Options{Dir: "../etc"}, true, ""},
		{"pattern traversal", Options{Dir: "proj", Patterns: []string{"../../../etc/..."}}, true, ""},
		{"absolute pattern", Options{Patterns: []string{"/abs/pkg"}}, true, ""},
		{"import path pattern", Options{Patterns: []string{"example.com/m/..."}}, true, ""},
		{"hidden traversal", Options{Patterns: []string{"./a/../.."}}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateRelative("/srv/root")
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, opts.Dir)
		})
	}
}

func TestTryAnalyzeBusy(t *testing.T) {
	a, _, dir := newTestAnalyzer(t)

	a.mu.Lock()
	_, err := a.TryAnalyze(context.Background(), Options{Dir: dir})
	a.mu.Unlock()
	assert.True(t, errors.Is(err, errors.ErrCodeBusy), "got %v", err)

	_, err = a.TryAnalyze(context.Background(), Options{Dir: dir})
	assert.NoError(t, err)
}

func TestLayout(t *testing.T) {
	a, _, dir := newTestAnalyzer(t)
	ctx := context.Background()
	res, err := a.Analyze(ctx, Options{Dir: dir})
	require.NoError(t, err)

	l, hit, err := a.LayoutCFG(ctx, res.Graph, LayoutOptions{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, graph.KindCFG, l.Kind)
	assert.Equal(t, "hierarchical", l.Algorithm)
	assert.Len(t, l.Nodes, 3)

	cached, hit, err := a.LayoutCFG(ctx, res.Graph, LayoutOptions{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, l, cached)

	_, hit, err = a.LayoutCFG(ctx, res.Graph, LayoutOptions{Algorithm: "force", Seed: 7})
	require.NoError(t, err)
	assert.False(t, hit)

	calls, _, err := a.LayoutCalls(ctx, res.Calls, LayoutOptions{Algorithm: "circular"})
	require.NoError(t, err)
	assert.Equal(t, graph.KindCalls, calls.Kind)
	_, ok := calls.Node("helper")
	assert.True(t, ok)

	_, _, err = a.LayoutCFG(ctx, res.Graph, LayoutOptions{Algorithm: "spiral"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAlgorithm))
	_, _, err = a.LayoutCFG(ctx, res.Graph, LayoutOptions{Iterations: -1})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, _, err = a.LayoutCalls(ctx, callgraph.New(), LayoutOptions{})
	assert.True(t, errors.IsNoData(err))
}

func TestRender(t *testing.T) {
	a, _, dir := newTestAnalyzer(t)
	ctx := context.Background()
	res, err := a.Analyze(ctx, Options{Dir: dir})
	require.NoError(t, err)
	l, _, err := a.LayoutCFG(ctx, res.Graph, LayoutOptions{})
	require.NoError(t, err)

	svg, err := a.Render(ctx, RenderRequest{Layout: l})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg") || strings.HasPrefix(string(svg), "<?xml"))

	data, err := a.Render(ctx, RenderRequest{Layout: l, Format: render.FormatJSON})
	require.NoError(t, err)
	back, err := graph.UnmarshalLayout(data)
	require.NoError(t, err)
	assert.Equal(t, l, back)

	dotSrc, err := a.Render(ctx, RenderRequest{Layout: l, Format: render.FormatDOT})
	require.NoError(t, err)
	assert.Contains(t, string(dotSrc), `"0" -> "1"`)

	custom, err := a.Render(ctx, RenderRequest{Layout: l, Format: render.FormatDOT, DOT: "digraph X {}"})
	require.NoError(t, err)
	assert.Equal(t, "digraph X {}", string(custom))

	_, err = a.Render(ctx, RenderRequest{Layout: l, Format: "pdf"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
	_, err = a.Render(ctx, RenderRequest{Format: render.FormatSVG})
	assert.True(t, errors.IsNoData(err))
}
