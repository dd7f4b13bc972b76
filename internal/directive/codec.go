package directive

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/quantmind-br/coversync/internal/domain"
)

// Well-known cover keys, rendered first in this order when present.
const (
	KeyPath = "path"
	KeyURL  = "url"
	KeyAlt  = "alt"
)

var preferredKeys = []string{KeyPath, KeyURL, KeyAlt}

var (
	coverOpenRe = regexp.MustCompile(`^([ \t]*):::[ \t]*cover\b`)
	kvRe        = regexp.MustCompile(`^([A-Za-z0-9_-]+)\s*=\s*"((?:[^"\\]|\\.)*)"$`)
)

// Block is the decoded form of one cover directive.
type Block struct {
	Fields map[string]string
	Order  []string

	Indent      string
	EOL         string
	OpenLine    string
	CloseLine   string
	TrailingEOL bool
}

// Decode parses the raw text of a cover span. Text that does not have the
// opening fence, at least one inner line and a matching closing fence yields
// ErrMalformedDirective.
func Decode(span []byte) (*Block, error) {
	s := string(span)

	eol := detectEOL(s)
	if eol == "" {
		return nil, fmt.Errorf("%w: single-line block", domain.ErrMalformedDirective)
	}

	trailing := strings.HasSuffix(s, eol)
	body := strings.TrimSuffix(s, eol)
	lines := strings.Split(body, eol)
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: missing body", domain.ErrMalformedDirective)
	}

	m := coverOpenRe.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, fmt.Errorf("%w: opening fence %q", domain.ErrMalformedDirective, lines[0])
	}
	indent := m[1]

	closeLine := lines[len(lines)-1]
	if closeLine != indent+":::" {
		return nil, fmt.Errorf("%w: closing fence %q", domain.ErrMalformedDirective, closeLine)
	}

	b := &Block{
		Fields:      make(map[string]string),
		Indent:      indent,
		EOL:         eol,
		OpenLine:    lines[0],
		CloseLine:   closeLine,
		TrailingEOL: trailing,
	}

	for _, line := range lines[1 : len(lines)-1] {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ":::") {
			return nil, fmt.Errorf("%w: nested fence %q", domain.ErrMalformedDirective, trimmed)
		}
		kv := kvRe.FindStringSubmatch(trimmed)
		if kv == nil {
			continue
		}
		if _, seen := b.Fields[kv[1]]; seen {
			continue
		}
		b.Fields[kv[1]] = kv[2]
		b.Order = append(b.Order, kv[1])
	}

	return b, nil
}

// detectEOL returns the line ending of the first line break in s.
func detectEOL(s string) string {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return ""
	}
	if i > 0 && s[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Get returns the raw value of key.
func (b *Block) Get(key string) (string, bool) {
	v, ok := b.Fields[key]
	return v, ok
}

// Set assigns key. New keys are placed by Keys, not appended to Order.
func (b *Block) Set(key, value string) {
	b.Fields[key] = value
}

// Path returns the asset reference, or "" when it is absent or blank.
func (b *Block) Path() string {
	p := b.Fields[KeyPath]
	if strings.TrimSpace(p) == "" {
		return ""
	}
	return p
}

// URL returns the current remote URL, or "" when absent or blank.
func (b *Block) URL() string {
	u := b.Fields[KeyURL]
	if strings.TrimSpace(u) == "" {
		return ""
	}
	return u
}

// Keys returns the render order: path, url, alt first, then the remaining keys
// in their original order, then brand-new keys alphabetically.
func (b *Block) Keys() []string {
	keys := make([]string, 0, len(b.Fields))
	for _, k := range preferredKeys {
		if _, ok := b.Fields[k]; ok {
			keys = append(keys, k)
		}
	}

	position := make(map[string]int, len(b.Order))
	for i, k := range b.Order {
		position[k] = i
	}

	var rest []string
	for k := range b.Fields {
		if isPreferred(k) {
			continue
		}
		rest = append(rest, k)
	}
	sort.Slice(rest, func(i, j int) bool {
		pi, iKnown := position[rest[i]]
		pj, jKnown := position[rest[j]]
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return rest[i] < rest[j]
		}
	})

	return append(keys, rest...)
}

func isPreferred(key string) bool {
	for _, k := range preferredKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Encode renders the block with its original fences, indentation and line
// endings.
func (b *Block) Encode() []byte {
	var sb strings.Builder
	sb.WriteString(b.OpenLine)
	sb.WriteString(b.EOL)
	for _, k := range b.Keys() {
		sb.WriteString(b.Indent)
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(b.Fields[k])
		sb.WriteString(`"`)
		sb.WriteString(b.EOL)
	}
	sb.WriteString(b.CloseLine)
	if b.TrailingEOL {
		sb.WriteString(b.EOL)
	}
	return []byte(sb.String())
}
