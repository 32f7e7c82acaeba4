package analyzer

import (
	"context"
	"time"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/layout"
	"github.com/matzehuels/flowlens/pkg/observability"
)

// LayoutCFG lays out a control-flow graph. The boolean reports a cache hit.
func (a *Analyzer) LayoutCFG(ctx context.Context, g *cfg.Graph, opts LayoutOptions) (graph.Layout, bool, error) {
	if g == nil || g.NodeCount() == 0 {
		return graph.Layout{}, false, errors.New(errors.ErrCodeNoData, "graph has no nodes")
	}
	engine, err := opts.engine()
	if err != nil {
		return graph.Layout{}, false, err
	}
	data, err := graph.MarshalCFG(g, graph.Aux{})
	if err != nil {
		return graph.Layout{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	key := a.Keyer.LayoutKey(cache.Hash(data), opts.keyOpts(graph.KindCFG, engine.Algorithm))
	return a.layout(ctx, key, engine.Algorithm, g.NodeCount(), func() (graph.Layout, error) {
		pos, err := layout.Compute(layout.CFG(g), engine)
		if err != nil {
			return graph.Layout{}, err
		}
		return graph.LayoutFromCFG(g, engine.Algorithm, pos), nil
	})
}

// LayoutCalls lays out a call graph.
func (a *Analyzer) LayoutCalls(ctx context.Context, g *callgraph.Graph, opts LayoutOptions) (graph.Layout, bool, error) {
	if g == nil || g.Len() == 0 {
		return graph.Layout{}, false, errors.New(errors.ErrCodeNoData, "call graph has no functions")
	}
	engine, err := opts.engine()
	if err != nil {
		return graph.Layout{}, false, err
	}
	key := a.Keyer.LayoutKey(cache.Hash([]byte(g.ToDOT())), opts.keyOpts(graph.KindCalls, engine.Algorithm))
	return a.layout(ctx, key, engine.Algorithm, g.Len(), func() (graph.Layout, error) {
		pos, err := layout.Compute(layout.Calls(g), engine)
		if err != nil {
			return graph.Layout{}, err
		}
		return graph.LayoutFromCalls(g, engine.Algorithm, pos), nil
	})
}

func (a *Analyzer) layout(ctx context.Context, key string, algo layout.Algorithm, nodes int, compute func() (graph.Layout, error)) (l graph.Layout, hit bool, err error) {
	if data, ok := cache.Lookup(ctx, a.Cache, key); ok {
		if l, err := graph.UnmarshalLayout(data); err == nil {
			return l, true, nil
		}
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(algo), nodes)
	defer func() { hooks.OnLayoutComplete(ctx, string(algo), time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return graph.Layout{}, false, errors.Wrap(errors.ErrCodeTimeout, err, "layout")
	}
	l, err = compute()
	if err != nil {
		return graph.Layout{}, false, err
	}
	a.Logger.Debug("layout computed", "algorithm", algo, "nodes", nodes, "took", time.Since(start))

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := cache.Store(ctx, a.Cache, key, data, cache.TTLLayout); err != nil {
			a.Logger.Warn("cache write failed", "error", err)
		}
	}
	return l, false, nil
}
