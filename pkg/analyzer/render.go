package analyzer

import (
	"context"
	"time"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/layout"
	"github.com/matzehuels/flowlens/pkg/observability"
	"github.com/matzehuels/flowlens/pkg/render"
)

// RenderRequest describes one artifact.
type RenderRequest struct {
	Layout graph.Layout
	Format render.Format

	// Graphviz draws SVG with Graphviz instead of the built-in renderer.
	// PNG always goes through Graphviz.
	Graphviz bool
	// DOT is the source handed to Graphviz and returned for FormatDOT. When
	// empty it is derived from Layout.
	DOT string
	// Statements is recorded in the cache key; callers set it when DOT
	// carries statement text.
	Statements bool
}

func (r RenderRequest) engine() render.Engine {
	if r.Format == render.FormatPNG || (r.Format == render.FormatSVG && r.Graphviz) {
		return render.EngineFor(layout.Algorithm(r.Layout.Algorithm))
	}
	return ""
}

func (r RenderRequest) dot() string {
	if r.DOT != "" {
		return r.DOT
	}
	return render.LayoutDOT(r.Layout)
}

// Render produces the artifact described by req. Results are cached by the
// hash of the serialized layout.
func (a *Analyzer) Render(ctx context.Context, req RenderRequest) (out []byte, err error) {
	if req.Format == "" {
		req.Format = render.FormatSVG
	}
	if _, err := render.ParseFormat(string(req.Format)); err != nil {
		return nil, err
	}
	if len(req.Layout.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "layout has no nodes")
	}

	layoutData, err := graph.MarshalLayout(req.Layout)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	if req.Format == render.FormatJSON {
		return layoutData, nil
	}
	if req.Format == render.FormatDOT {
		return []byte(req.dot()), nil
	}

	engine := req.engine()
	source := cache.Hash(layoutData)
	if req.DOT != "" {
		source = cache.Hash(append(layoutData, req.DOT...))
	}
	key := a.Keyer.ArtifactKey(source, cache.ArtifactKeyOpts{
		Format:     string(req.Format),
		Engine:     string(engine),
		Statements: req.Statements,
	})
	if data, ok := cache.Lookup(ctx, a.Cache, key); ok {
		return data, nil
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, string(req.Format))
	defer func() { hooks.OnRenderComplete(ctx, string(req.Format), time.Since(start), err) }()

	if engine == "" {
		out = render.LayoutSVG(req.Layout)
	} else {
		out, err = render.Graphviz(ctx, req.dot(), req.Format, engine)
		if err != nil {
			return nil, err
		}
	}

	if err := cache.Store(ctx, a.Cache, key, out, cache.TTLArtifact); err != nil {
		a.Logger.Warn("cache write failed", "error", err)
	}
	return out, nil
}
