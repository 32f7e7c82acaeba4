package gossa

import (
	"path/filepath"
	"slices"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

// Summary describes the loaded packages. It is what the CFG document carries
// in its "ast" field.
type Summary struct {
	Packages []PackageSummary `json:"packages"`
}

// PackageSummary lists the declarations of one package.
type PackageSummary struct {
	Path      string            `json:"path"`
	Name      string            `json:"name"`
	Files     []string          `json:"files"`
	Types     []string          `json:"types"`
	Functions []FunctionSummary `json:"functions"`
}

// FunctionSummary is one converted function.
type FunctionSummary struct {
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Params   int    `json:"params"`
	Results  int    `json:"results"`
	Blocks   int    `json:"blocks"`
	Recovers bool   `json:"recovers,omitempty"`
}

// Functions returns the number of functions across all packages.
func (s Summary) Functions() int {
	n := 0
	for _, p := range s.Packages {
		n += len(p.Functions)
	}
	return n
}

func summarize(p *packages.Package, sp *ssa.Package, fns []*ssa.Function) PackageSummary {
	out := PackageSummary{
		Path:      sp.Pkg.Path(),
		Name:      sp.Pkg.Name(),
		Files:     []string{},
		Types:     []string{},
		Functions: []FunctionSummary{},
	}
	for _, f := range p.GoFiles {
		out.Files = append(out.Files, filepath.Base(f))
	}
	for name, m := range sp.Members {
		if _, ok := m.(*ssa.Type); ok {
			out.Types = append(out.Types, name)
		}
	}
	slices.Sort(out.Types)

	for _, fn := range fns {
		fs := FunctionSummary{
			Name:     functionName(fn),
			Params:   fn.Signature.Params().Len(),
			Results:  fn.Signature.Results().Len(),
			Blocks:   len(fn.Blocks),
			Recovers: fn.Recover != nil,
		}
		if pos := fn.Pos(); pos.IsValid() {
			position := fn.Prog.Fset.Position(pos)
			position.Filename = filepath.Base(position.Filename)
			fs.Position = position.String()
		}
		if fn.Signature.Recv() != nil {
			fs.Params++
		}
		out.Functions = append(out.Functions, fs)
	}
	return out
}
