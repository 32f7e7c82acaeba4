package build

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlens/pkg/cfg"
)

var (
	// ErrEmptyFunction is returned when a function has no blocks.
	ErrEmptyFunction = errors.New("function has no blocks")

	// ErrDuplicateBlock is returned when two blocks share an id.
	ErrDuplicateBlock = errors.New("duplicate block id")

	// ErrUnknownBlock is returned when a successor references an undeclared block.
	ErrUnknownBlock = errors.New("unknown successor block")

	// ErrUnresolvedHandler is returned when a handler statement id is not
	// owned by any block of the function.
	ErrUnresolvedHandler = errors.New("unresolved handler statement")

	// ErrDuplicateStatement is returned when two statements share an id.
	ErrDuplicateStatement = errors.New("duplicate statement id")
)

// Function is the block stream of one function.
type Function struct {
	Name   string
	Blocks []Block
}

// Block describes one basic block.
type Block struct {
	ID         int
	Label      string // optional; the graph falls back to "Block <id>"
	Statements []Statement
	Succs      []int
}

// Statement is one statement of a block. IDs are unique within a function;
// handlers refer to statements by ID.
type Statement struct {
	ID       int
	Text     string
	Throws   bool  // the statement raises
	Handlers []int // non-nil: the statement opens a protected region
}

// IsTry reports whether the statement opens a protected region.
func (s Statement) IsTry() bool { return s.Handlers != nil }

// Options configures a [Builder].
type Options struct {
	// Cache interns statement text. When nil each Build call creates its own.
	Cache *StmtCache
	// Logger receives debug output. Nil discards.
	Logger *log.Logger
}

// Builder builds graphs from block streams.
type Builder struct {
	cache  *StmtCache
	logger *log.Logger
}

// New returns a Builder.
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Builder{cache: opts.Cache, logger: logger}
}

// Build builds the graph of fn. Every node gets fn.Name as function name.
func (b *Builder) Build(fn Function) (*cfg.Graph, error) {
	return b.build(fn, b.passCache())
}

func (b *Builder) passCache() *StmtCache {
	if b.cache != nil {
		return b.cache
	}
	return NewStmtCache(0)
}

func (b *Builder) build(fn Function, cache *StmtCache) (*cfg.Graph, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("%s: %w", fn.Name, ErrEmptyFunction)
	}

	declared := make(map[int]struct{}, len(fn.Blocks))
	owner := make(map[int]int)
	for _, blk := range fn.Blocks {
		if _, dup := declared[blk.ID]; dup {
			return nil, fmt.Errorf("%s: block %d: %w", fn.Name, blk.ID, ErrDuplicateBlock)
		}
		declared[blk.ID] = struct{}{}
		for _, st := range blk.Statements {
			if prev, dup := owner[st.ID]; dup {
				return nil, fmt.Errorf("%s: statement %d in blocks %d and %d: %w", fn.Name, st.ID, prev, blk.ID, ErrDuplicateStatement)
			}
			owner[st.ID] = blk.ID
		}
	}
	for _, blk := range fn.Blocks {
		for _, s := range blk.Succs {
			if _, ok := declared[s]; !ok {
				return nil, fmt.Errorf("%s: block %d -> %d: %w", fn.Name, blk.ID, s, ErrUnknownBlock)
			}
		}
		for _, st := range blk.Statements {
			for _, h := range st.Handlers {
				if _, ok := owner[h]; !ok {
					return nil, fmt.Errorf("%s: block %d handler statement %d: %w", fn.Name, blk.ID, h, ErrUnresolvedHandler)
				}
			}
		}
	}

	g := cfg.New()
	for _, blk := range fn.Blocks {
		if blk.Label != "" {
			g.AddLabeledNode(blk.ID, blk.Label)
		} else {
			g.AddNode(blk.ID)
		}
		if fn.Name != "" {
			g.SetFunctionName(blk.ID, fn.Name)
		}

		for _, st := range blk.Statements {
			g.AddStatement(blk.ID, cache.Intern(st.Text))
		}
		for _, st := range blk.Statements {
			if !st.IsTry() {
				continue
			}
			g.MarkTryBlock(blk.ID)
			for _, h := range st.Handlers {
				g.AddExceptionEdge(blk.ID, owner[h])
			}
		}
		for _, st := range blk.Statements {
			if st.Throws {
				g.MarkThrowing(blk.ID)
				break
			}
		}
		for _, s := range blk.Succs {
			g.AddEdge(blk.ID, s)
		}
	}

	hits, misses := cache.Stats()
	b.logger.Debug("built function", "name", fn.Name, "blocks", len(fn.Blocks), "cache_hits", hits, "cache_misses", misses)
	return g, nil
}

// BuildAll builds every function into one graph. Block ids of each function
// are shifted past the ids already used, see [cfg.Graph.Merge]. Functions
// without blocks are skipped; the returned map records each built function's
// id offset. If no function has blocks, BuildAll returns [ErrEmptyFunction].
func (b *Builder) BuildAll(fns []Function) (*cfg.Graph, map[string]int, error) {
	g := cfg.New()
	cache := b.passCache()
	offsets := make(map[string]int, len(fns))
	for _, fn := range fns {
		if len(fn.Blocks) == 0 {
			b.logger.Debug("skipping function without blocks", "name", fn.Name)
			continue
		}
		part, err := b.build(fn, cache)
		if err != nil {
			return nil, nil, err
		}
		offsets[fn.Name] = g.Merge(part)
	}
	if len(offsets) == 0 {
		return nil, nil, ErrEmptyFunction
	}
	return g, offsets, nil
}
