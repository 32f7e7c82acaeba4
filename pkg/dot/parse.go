package dot

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlens/pkg/cfg"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/observability"
)

// ErrNoStatements is returned by [Parse] when no statement in the input
// matched. It is wrapped in an [errors.Error] with code NO_DATA.
var ErrNoStatements = stderrors.New("no graph statements found")

// Diagnostic describes an input line that was skipped.
type Diagnostic struct {
	Line   int    // 1-based line number
	Text   string // the offending statement
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %q", d.Line, d.Reason, d.Text)
}

// Result is the outcome of a successful parse.
type Result struct {
	Graph       *cfg.Graph
	Name        string // digraph name, unquoted
	Matched     int    // statements that contributed to the graph
	Diagnostics []Diagnostic
	// Defaults holds the final global attribute tables keyed by "graph",
	// "node" and "edge".
	Defaults map[string]Attrs
}

// Option configures [Parse].
type Option func(*parser)

// WithLogger sends diagnostics to logger at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(p *parser) { p.logger = logger }
}

// WithSource names the input in log output and hook events.
func WithSource(name string) Option {
	return func(p *parser) { p.source = name }
}

var (
	idPattern   = `-?\d+|"(?:[^"\\]|\\.)*"|[A-Za-z_][\w.]*`
	idRe        = regexp.MustCompile(`^(?:` + idPattern + `)$`)
	globalRe    = regexp.MustCompile(`^(graph|node|edge)\s*\[(.*)\]$`)
	graphAttrRe = regexp.MustCompile(`^(\w+)\s*=\s*("(?:[^"\\]|\\.)*"|[^\s\[\]"]+)$`)
	keywordRe   = regexp.MustCompile(`^(?:strict\s+)?(?:digraph|graph|subgraph)\b`)
	declRe      = regexp.MustCompile(`^(?:strict\s+)?(digraph|graph|subgraph)(?:\s+(` + idPattern + `))?$`)
	digitsRe    = regexp.MustCompile(`\d+`)
)

type parser struct {
	logger *log.Logger
	source string

	g        *cfg.Graph
	res      *Result
	defaults map[string]Attrs
	names    map[string]int
	nextName int
	line     int
}

// ParseString parses DOT text.
func ParseString(s string, opts ...Option) (*Result, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseFile parses the DOT file at path.
func ParseFile(path string, opts ...Option) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f, append([]Option{WithSource(path)}, opts...)...)
}

// Parse reads a DOT-like graph from r. Unrecognised lines are skipped and
// recorded as diagnostics. Parse returns an error only when reading fails or
// no statement matched.
func Parse(r io.Reader, opts ...Option) (*Result, error) {
	p := &parser{
		g:        cfg.New(),
		defaults: map[string]Attrs{"graph": {}, "node": {}, "edge": {}},
		names:    make(map[string]int),
		nextName: -1,
		source:   "input",
	}
	for _, opt := range opts {
		opt(p)
	}
	p.res = &Result{Graph: p.g, Defaults: p.defaults}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		p.line++
		p.parseLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", p.source)
	}

	observability.Codec().OnDecode("dot", p.source, p.res.Matched, len(p.res.Diagnostics))
	if p.res.Matched == 0 {
		return nil, errors.Wrap(errors.ErrCodeNoData, ErrNoStatements, "parse %s", p.source)
	}
	if p.logger != nil {
		p.logger.Debug("parsed DOT", "source", p.source, "nodes", p.g.NodeCount(), "edges", p.g.EdgeCount(), "skipped", len(p.res.Diagnostics))
	}
	return p.res, nil
}

func (p *parser) parseLine(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") {
		return
	}
	if i := strings.Index(line, "//"); i > 0 && !strings.Contains(line[:i], `"`) {
		line = strings.TrimSpace(line[:i])
	}
	for _, stmt := range splitTop(line, ";") {
		p.parseStatement(strings.TrimSpace(stmt))
	}
}

func (p *parser) parseStatement(stmt string) {
	stmt = strings.TrimSpace(strings.Trim(stmt, "{}"))
	if stmt == "" {
		return
	}

	if m := globalRe.FindStringSubmatch(stmt); m != nil {
		for k, v := range parseAttrs(m[2]) {
			p.defaults[m[1]][k] = v
		}
		p.res.Matched++
		return
	}
	if keywordRe.MatchString(stmt) {
		header, rest, _ := strings.Cut(stmt, "{")
		if m := declRe.FindStringSubmatch(strings.TrimSpace(header)); m != nil {
			if p.res.Name == "" && m[1] != "subgraph" && m[2] != "" {
				p.res.Name = unescape(strings.Trim(m[2], `"`))
			}
			p.parseStatement(rest)
			return
		}
	}
	if m := graphAttrRe.FindStringSubmatch(stmt); m != nil {
		p.defaults["graph"][strings.ToLower(m[1])] = unescape(strings.Trim(m[2], `"`))
		p.res.Matched++
		return
	}

	head, attrText, ok := cutAttrs(stmt)
	if !ok {
		p.skip(stmt, "unbalanced attribute list")
		return
	}
	if ends := splitTop(head, "->"); len(ends) > 1 {
		p.parseEdges(stmt, ends, parseAttrs(attrText))
		return
	}
	if idRe.MatchString(head) {
		p.parseNode(head, parseAttrs(attrText))
		return
	}
	p.skip(stmt, "unrecognised statement")
}

func (p *parser) parseNode(tok string, attrs Attrs) {
	id := p.resolve(tok)
	attrs = attrs.merged(p.defaults["node"])
	if label, ok := attrs["label"]; ok && label != nodeNameEscape {
		p.g.AddLabeledNode(id, label)
	}
	if attrs.is("color", "red") {
		p.g.MarkThrowing(id)
	}
	if attrs.is("shape", "box") {
		p.g.MarkTryBlock(id)
	}
	p.res.Matched++
}

func (p *parser) parseEdges(stmt string, ends []string, attrs Attrs) {
	for i, end := range ends {
		ends[i] = strings.TrimSpace(end)
		if !idRe.MatchString(ends[i]) {
			p.skip(stmt, "invalid edge endpoint")
			return
		}
	}
	ids := make([]int, len(ends))
	for i, end := range ends {
		ids[i] = p.resolve(end)
	}

	attrs = attrs.merged(p.defaults["edge"])
	exception := attrs.is("color", "red") || strings.Contains(strings.ToLower(attrs["label"]), "exception")
	for i := 0; i+1 < len(ids); i++ {
		if exception {
			p.g.AddExceptionEdge(ids[i], ids[i+1])
		} else {
			p.g.AddEdge(ids[i], ids[i+1])
		}
	}
	p.res.Matched++
}

// resolve maps a node token to an id, creating the node.
func (p *parser) resolve(tok string) int {
	name := tok
	if strings.HasPrefix(tok, `"`) {
		name = unescape(tok[1 : len(tok)-1])
	}
	if id, err := strconv.Atoi(strings.TrimSpace(name)); err == nil {
		p.g.AddNode(id)
		return id
	}
	if d := digitsRe.FindString(name); d != "" {
		if id, err := strconv.Atoi(d); err == nil {
			p.g.AddNode(id)
			return id
		}
	}
	if id, ok := p.names[name]; ok {
		return id
	}
	id := p.nextName
	p.nextName--
	p.names[name] = id
	p.g.AddLabeledNode(id, name)
	return id
}

func (p *parser) skip(stmt, reason string) {
	d := Diagnostic{Line: p.line, Text: stmt, Reason: reason}
	p.res.Diagnostics = append(p.res.Diagnostics, d)
	if p.logger != nil {
		p.logger.Debug("skipping DOT statement", "source", p.source, "line", d.Line, "reason", reason, "text", stmt)
	}
}
