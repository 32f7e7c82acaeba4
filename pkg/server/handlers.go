package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/flowlens/pkg/analyzer"
	"github.com/matzehuels/flowlens/pkg/dot"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/graph"
	"github.com/matzehuels/flowlens/pkg/render"
)

type analyzeResponse struct {
	RunID    string          `json:"runId"`
	CacheHit bool            `json:"cacheHit"`
	Stats    analyzer.Stats  `json:"stats"`
	Document graph.Document  `json:"document"`
	Calls    graph.CallGraph `json:"calls"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var opts analyzer.Options
	if err := decodeJSON(r, &opts); err != nil {
		writeError(w, err)
		return
	}
	if err := opts.ValidateRelative(s.root); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.analyzer.TryAnalyze(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		RunID:    res.RunID,
		CacheHit: res.CacheHit,
		Stats:    res.Stats,
		Document: res.Document,
		Calls:    res.CallExport,
	})
}

type parseResponse struct {
	Name        string         `json:"name,omitempty"`
	Matched     int            `json:"matched"`
	Diagnostics []string       `json:"diagnostics"`
	Document    graph.Document `json:"document"`
}

// handleParse reads DOT text from the body.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	res, err := dot.Parse(body, dot.WithLogger(s.logger), dot.WithSource("request"))
	if err != nil {
		writeError(w, err)
		return
	}
	diags := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		diags[i] = d.String()
	}
	writeJSON(w, http.StatusOK, parseResponse{
		Name:        res.Name,
		Matched:     res.Matched,
		Diagnostics: diags,
		Document:    graph.FromCFG(res.Graph, graph.Aux{}),
	})
}

type layoutRequest struct {
	// Kind selects the input: "cfg" reads Document, "calls" reads Calls.
	Kind     string                 `json:"kind"`
	Document *graph.Document        `json:"document,omitempty"`
	Calls    *graph.CallGraph       `json:"calls,omitempty"`
	Layout   analyzer.LayoutOptions `json:"layout"`
	// Format is json (the default) or an artifact format.
	Format   string `json:"format,omitempty"`
	Graphviz bool   `json:"graphviz,omitempty"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	format := render.FormatJSON
	if req.Format != "" {
		f, err := render.ParseFormat(req.Format)
		if err != nil {
			writeError(w, err)
			return
		}
		format = f
	}

	var (
		l   graph.Layout
		err error
	)
	switch req.Kind {
	case graph.KindCFG, "":
		if req.Document == nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "cfg layout needs a document"))
			return
		}
		g, convErr := graph.ToCFG(*req.Document)
		if convErr != nil {
			writeError(w, convErr)
			return
		}
		l, _, err = s.analyzer.LayoutCFG(r.Context(), g, req.Layout)
	case graph.KindCalls:
		if req.Calls == nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "calls layout needs a call graph"))
			return
		}
		l, _, err = s.analyzer.LayoutCalls(r.Context(), graph.ToCallGraph(*req.Calls), req.Layout)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (want cfg or calls)", req.Kind)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := s.analyzer.Render(r.Context(), analyzer.RenderRequest{Layout: l, Format: format, Graphviz: req.Graphviz})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func contentType(f render.Format) string {
	switch f {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPNG:
		return "image/png"
	case render.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "application/json"
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, errors.HTTPStatus(err), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
