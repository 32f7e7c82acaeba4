package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/cfg/build"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/frontend/gossa"
	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/observability"
)

// Analyzer runs analyses with caching. See the package documentation for the
// locking rules.
type Analyzer struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	mu      sync.Mutex
	builder *build.Builder
	now     func() time.Time
	load    func(ctx context.Context, patterns []string, opts gossa.Options) (*gossa.Result, error)
}

// New returns an Analyzer. A nil cache disables caching, a nil keyer selects
// the default one and a nil logger discards output.
func New(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Analyzer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Analyzer{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		builder: build.New(build.Options{Logger: logger}),
		now:     time.Now,
		load:    gossa.Load,
	}
}

// Result is one finished analysis.
type Result struct {
	RunID  string
	Source string

	// Graph holds every analysed function, renumbered into one id space.
	Graph *cfg.Graph
	// Calls is the caller → callee map.
	Calls *callgraph.Graph
	// Offsets maps each function to the id offset its blocks received.
	Offsets map[string]int

	// Document is Graph serialized with the package summary and the call
	// export attached.
	Document   graph.Document
	CallExport graph.CallGraph

	Stats    Stats
	CacheHit bool
}

// Stats summarises a result.
type Stats struct {
	Functions int           `json:"functions"`
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Calls     int           `json:"calls"`
	Duration  time.Duration `json:"duration"`
}

// Analyze runs one analysis, waiting if another is in progress.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.run(ctx, opts)
}

// TryAnalyze is Analyze, except that it returns a BUSY error immediately when
// another analysis is in progress.
func (a *Analyzer) TryAnalyze(ctx context.Context, opts Options) (*Result, error) {
	if !a.mu.TryLock() {
		return nil, errors.New(errors.ErrCodeBusy, "an analysis is already running")
	}
	defer a.mu.Unlock()
	return a.run(ctx, opts)
}

// cached is what the analysis cache stores.
type cached struct {
	Document graph.Document  `json:"document"`
	Calls    graph.CallGraph `json:"calls"`
	Offsets  map[string]int  `json:"offsets"`
}

func (a *Analyzer) run(ctx context.Context, opts Options) (res *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, runID, opts.Dir)
	defer func() {
		functions := 0
		if res != nil {
			functions = res.Stats.Functions
			res.Stats.Duration = time.Since(start)
		}
		hooks.OnAnalyzeComplete(ctx, runID, opts.Dir, functions, time.Since(start), err)
	}()

	logger := a.Logger.With("run", runID[:8])

	var key string
	if treeHash, err := cache.HashTree(opts.Dir); err != nil {
		logger.Debug("source hash failed, caching disabled for this run", "error", err)
	} else {
		key = a.Keyer.AnalysisKey(treeHash, opts.keyOpts())
	}

	if key != "" && !opts.Refresh {
		if data, hit := cache.Lookup(ctx, a.Cache, key); hit {
			if res, err := a.fromCache(data); err == nil {
				res.RunID, res.Source = runID, opts.Dir
				logger.Info("analysis cache hit", "functions", res.Stats.Functions)
				return res, nil
			}
			logger.Debug("discarding unreadable cache entry", "key", key)
		}
	}

	loaded, err := a.load(ctx, opts.Patterns, gossa.Options{
		Dir:      opts.Dir,
		Tests:    opts.Tests,
		Function: opts.Function,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	g, offsets, err := a.builder.BuildAll(loaded.Functions)
	if stderrors.Is(err, build.ErrEmptyFunction) {
		return nil, errors.Wrap(errors.ErrCodeNoData, err, "no function bodies in %s", opts.Dir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build graphs")
	}
	calls := loaded.CallGraph()

	res = &Result{
		RunID:      runID,
		Source:     opts.Dir,
		Graph:      g,
		Calls:      calls,
		Offsets:    offsets,
		CallExport: graph.FromCallGraph(calls, opts.Dir, a.now()),
	}
	summary, err := json.Marshal(loaded.Summary)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode summary")
	}
	export, err := json.Marshal(res.CallExport)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode calls")
	}
	res.Document = graph.FromCFG(g, graph.Aux{AST: summary, FunctionCalls: export})
	res.Stats = statsOf(g, calls, len(offsets))

	logger.Info("analyzed",
		"functions", res.Stats.Functions,
		"blocks", res.Stats.Nodes,
		"calls", res.Stats.Calls)

	if key != "" {
		if data, err := json.Marshal(cached{Document: res.Document, Calls: res.CallExport, Offsets: offsets}); err == nil {
			if err := cache.Store(ctx, a.Cache, key, data, cache.TTLAnalysis); err != nil {
				logger.Warn("cache write failed", "error", err)
			}
		}
	}
	return res, nil
}

func (a *Analyzer) fromCache(data []byte) (*Result, error) {
	var c cached
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return nil, err
	}
	g, err := graph.ToCFG(c.Document)
	if err != nil {
		return nil, err
	}
	calls := graph.ToCallGraph(c.Calls)
	return &Result{
		Graph:      g,
		Calls:      calls,
		Offsets:    c.Offsets,
		Document:   c.Document,
		CallExport: c.Calls,
		Stats:      statsOf(g, calls, len(c.Offsets)),
		CacheHit:   true,
	}, nil
}

func statsOf(g *cfg.Graph, calls *callgraph.Graph, functions int) Stats {
	return Stats{
		Functions: functions,
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Calls:     calls.EdgeCount(),
	}
}

// Close releases the cache.
func (a *Analyzer) Close() error {
	return a.Cache.Close()
}
