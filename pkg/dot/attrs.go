package dot

import (
	"maps"
	"regexp"
	"strings"
)

// nodeNameEscape is the Graphviz label that stands for the node's own name.
const nodeNameEscape = `\N`

// Attrs is a parsed attribute list. Keys are lower-cased.
type Attrs map[string]string

var attrRe = regexp.MustCompile(`(\w+)\s*=\s*(?:"((?:[^"\\]|\\.)*)"|([^\s,;"\]]+))`)

func parseAttrs(s string) Attrs {
	out := Attrs{}
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		key := strings.ToLower(m[1])
		switch {
		case m[3] != "":
			out[key] = m[3]
		case m[2] == nodeNameEscape:
			out[key] = m[2]
		default:
			out[key] = unescape(m[2])
		}
	}
	return out
}

// merged returns defaults overlaid with a.
func (a Attrs) merged(defaults Attrs) Attrs {
	out := maps.Clone(defaults)
	if out == nil {
		out = Attrs{}
	}
	maps.Copy(out, a)
	return out
}

func (a Attrs) is(key, value string) bool {
	return strings.EqualFold(a[key], value)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'l', 'r':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// splitTop splits s on sep outside double quotes and square brackets.
func splitTop(s, sep string) []string {
	var (
		parts   []string
		depth   int
		inQuote bool
		start   int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && inQuote:
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && strings.HasPrefix(s[i:], sep):
			parts = append(parts, s[start:i])
			i += len(sep) - 1
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// cutAttrs splits a statement into its head and the content of a trailing
// bracketed attribute list. ok is false when brackets are unbalanced.
func cutAttrs(s string) (head, attrs string, ok bool) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && inQuote:
			i++
		case c == '"':
			inQuote = !inQuote
		case c == '[' && !inQuote:
			end := strings.LastIndexByte(s, ']')
			if end < i {
				return "", "", false
			}
			if strings.TrimSpace(s[end+1:]) != "" {
				return "", "", false
			}
			return strings.TrimSpace(s[:i]), s[i+1 : end], true
		}
	}
	return strings.TrimSpace(s), "", true
}
