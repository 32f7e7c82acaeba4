package gossa

import (
	"cmp"
	"context"
	"go/types"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg/build"
	"github.com/matzehuels/flowlens/pkg/errors"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedTypesSizes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// Options configures [Load].
type Options struct {
	// Dir is the directory patterns are resolved in. Empty means the
	// current directory.
	Dir string
	// Tests includes test files and test packages.
	Tests bool
	// Function restricts the result to the functions with this name relative
	// to their package ("Run", "(*T).M", "Run$1"). Across several packages
	// it can match more than one.
	Function string
	// Env overrides the environment of the go command. Nil inherits.
	Env []string
	// Logger receives debug output. Nil discards.
	Logger *log.Logger
}

// Result is everything one load produced.
type Result struct {
	Functions []build.Function
	Calls     []callgraph.Call
	Summary   Summary
}

// CallGraph returns the dependency map of the recorded calls. Every function
// that was converted appears, including those that call nothing.
func (r *Result) CallGraph() *callgraph.Graph {
	g := callgraph.FromCalls(r.Calls)
	for _, fn := range r.Functions {
		g.AddFunction(fn.Name)
	}
	return g
}

// Load loads the packages matching patterns and converts their functions.
//
// Package errors (syntax or type errors, missing imports) fail the load with
// INVALID_INPUT. Loading packages that contain no function with a body is a
// NO_DATA error, and a Function filter that matches nothing is
// FUNCTION_NOT_FOUND.
func Load(ctx context.Context, patterns []string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Function != "" {
		if err := errors.ValidateFunctionName(opts.Function); err != nil {
			return nil, err
		}
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	conf := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     opts.Dir,
		Tests:   opts.Tests,
		Env:     opts.Env,
	}
	pkgs, err := packages.Load(conf, patterns...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "load %s", strings.Join(patterns, " "))
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load %s", strings.Join(patterns, " "))
	}
	if len(pkgs) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no packages match %s", strings.Join(patterns, " "))
	}

	var loadErrs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	})
	if len(loadErrs) > 0 {
		logger.Debug("package errors", "count", len(loadErrs))
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s", loadErrs[0])
	}

	prog, ssaPkgs := ssautil.Packages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	res := &Result{}
	nm := newNamer(ssaPkgs)
	seen := make(map[string]bool)
	for i, sp := range ssaPkgs {
		if sp == nil {
			continue
		}
		fns := packageFunctions(prog, sp)
		logger.Debug("converted package", "path", sp.Pkg.Path(), "functions", len(fns))
		res.Summary.Packages = append(res.Summary.Packages, summarize(pkgs[i], sp, fns))
		for _, fn := range fns {
			// Test variants of a package repeat its functions under the
			// same name.
			name := nm.name(fn)
			if seen[name] {
				continue
			}
			seen[name] = true
			if opts.Function != "" && functionName(fn) != opts.Function {
				continue
			}
			res.Functions = append(res.Functions, convert(fn, nm))
			res.Calls = append(res.Calls, staticCalls(fn, nm)...)
		}
	}

	if opts.Function != "" && len(res.Functions) == 0 {
		return nil, errors.New(errors.ErrCodeFunctionNotFound, "function %q not found", opts.Function)
	}
	if len(res.Functions) == 0 {
		return nil, errors.New(errors.ErrCodeNoData, "no functions with a body in %s", strings.Join(patterns, " "))
	}
	return res, nil
}

// packageFunctions returns the functions and methods declared in sp that have
// a body, each followed by its anonymous functions, in source order.
func packageFunctions(prog *ssa.Program, sp *ssa.Package) []*ssa.Function {
	var roots []*ssa.Function
	for _, m := range sp.Members {
		switch m := m.(type) {
		case *ssa.Function:
			roots = append(roots, m)
		case *ssa.Type:
			named, ok := m.Type().(*types.Named)
			if !ok {
				continue
			}
			for i := range named.NumMethods() {
				if fn := prog.FuncValue(named.Method(i)); fn != nil {
					roots = append(roots, fn)
				}
			}
		}
	}
	slices.SortFunc(roots, func(a, b *ssa.Function) int {
		return cmp.Or(cmp.Compare(a.Pos(), b.Pos()), strings.Compare(a.String(), b.String()))
	})

	var out []*ssa.Function
	var walk func(fn *ssa.Function)
	walk = func(fn *ssa.Function) {
		if fn.Synthetic != "" || fn.Blocks == nil {
			return
		}
		out = append(out, fn)
		for _, anon := range fn.AnonFuncs {
			walk(anon)
		}
	}
	for _, fn := range roots {
		walk(fn)
	}
	return out
}
