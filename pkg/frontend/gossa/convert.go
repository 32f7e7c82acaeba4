package gossa

import (
	"fmt"

	"golang.org/x/tools/go/ssa"

	"github.com/matzehuels/flowlens/pkg/callgraph"
	"github.com/matzehuels/flowlens/pkg/cfg/build"
)

// functionName names fn relative to its own package.
func functionName(fn *ssa.Function) string {
	if fn.Pkg == nil {
		return fn.String()
	}
	return fn.RelString(fn.Pkg.Pkg)
}

// namer gives every function one name used for CFG functions, callers and
// callees alike. A load of a single package names its own functions relative
// to it ("Run", "(*T).M") and everything else by import path; a load spanning
// several packages qualifies every name, so "a.Run" and "b.Run" stay apart.
type namer struct {
	local string // import path of the only loaded package, or ""
}

func newNamer(pkgs []*ssa.Package) namer {
	local := ""
	for _, sp := range pkgs {
		if sp == nil {
			continue
		}
		if local != "" && local != sp.Pkg.Path() {
			return namer{}
		}
		local = sp.Pkg.Path()
	}
	return namer{local: local}
}

func (n namer) name(fn *ssa.Function) string {
	if orig := fn.Origin(); orig != nil {
		fn = orig
	}
	if n.local != "" && fn.Pkg != nil && fn.Pkg.Pkg.Path() == n.local {
		return functionName(fn)
	}
	return fn.String()
}

// convert turns fn into a block stream. Statement ids run across the whole
// function in block order.
func convert(fn *ssa.Function, n namer) build.Function {
	first := make(map[*ssa.BasicBlock]int, len(fn.Blocks))
	next := 0
	for _, b := range fn.Blocks {
		first[b] = next
		next += len(b.Instrs)
	}

	// A function with a defer has a recover block; a panic that a deferred
	// call recovers resumes there.
	var handlers []int
	if fn.Recover != nil && len(fn.Recover.Instrs) > 0 {
		handlers = []int{first[fn.Recover]}
	}

	out := build.Function{Name: n.name(fn), Blocks: make([]build.Block, 0, len(fn.Blocks))}
	for _, b := range fn.Blocks {
		blk := build.Block{ID: b.Index, Label: blockLabel(b)}
		for i, instr := range b.Instrs {
			st := build.Statement{ID: first[b] + i, Text: statementText(instr)}
			switch instr.(type) {
			case *ssa.Panic:
				st.Throws = true
			case *ssa.Defer:
				if handlers != nil {
					st.Handlers = handlers
				}
			}
			blk.Statements = append(blk.Statements, st)
		}
		for _, s := range b.Succs {
			blk.Succs = append(blk.Succs, s.Index)
		}
		out.Blocks = append(out.Blocks, blk)
	}
	return out
}

func blockLabel(b *ssa.BasicBlock) string {
	if b.Comment == "" {
		return ""
	}
	return fmt.Sprintf("%d: %s", b.Index, b.Comment)
}

// statementText prints instr the way ssa's own function dump does: values as
// "t0 = <op>", everything else as the bare instruction.
func statementText(instr ssa.Instruction) string {
	if v, ok := instr.(ssa.Value); ok {
		return fmt.Sprintf("%s = %s", v.Name(), instr.String())
	}
	return instr.String()
}

// staticCalls records every call, go and defer whose callee is known
// statically. Builtins have no callee and are left out.
func staticCalls(fn *ssa.Function, n namer) []callgraph.Call {
	caller := n.name(fn)
	var out []callgraph.Call
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			site, ok := instr.(ssa.CallInstruction)
			if !ok {
				continue
			}
			callee := site.Common().StaticCallee()
			if callee == nil {
				continue
			}
			out = append(out, callgraph.Call{Caller: caller, Callee: n.name(callee)})
		}
	}
	return out
}
