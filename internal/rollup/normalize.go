package rollup

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// optionSuffix matches "_<token>" followed by end of string, whitespace or a
// bracket. Tokens are a colour/size code (up to 3 digits with an optional
// word), up to 12 Latin letters, or up to 6 Hangul syllables.
var optionSuffix = regexp.MustCompile(`_(?:\d{1,3}(?:[A-Za-z]{1,12}|[가-힣]{1,6})?|[A-Za-z]{1,12}|[가-힣]{1,6})(\s|[\[\]()]|$)`)

type normalizeRule struct {
	name  string
	apply func(string) string
}

// NameNormalizer canonicalizes product and viewed-item labels into join keys
type NameNormalizer struct {
	protected    []string
	placeholders []string
	rules        []normalizeRule
}

// NewNameNormalizer creates a normalizer. Labels starting with a protected
// prefix keep it; labels equal to a placeholder normalize to "".
func NewNameNormalizer(protectedPrefixes, placeholders []string) *NameNormalizer {
	n := &NameNormalizer{}
	for _, p := range protectedPrefixes {
		if p = strings.TrimSpace(norm.NFKC.String(p)); p != "" {
			n.protected = append(n.protected, p)
		}
	}
	for _, p := range placeholders {
		if p = strings.TrimSpace(norm.NFKC.String(p)); p != "" {
			n.placeholders = append(n.placeholders, p)
		}
	}
	n.rules = []normalizeRule{
		{"trim_nfkc", n.trimFold},
		{"placeholder", n.dropPlaceholder},
		{"bracket_prefix", n.stripBracketPrefix},
		{"option_suffix", stripOptionSuffix},
		{"collapse_space", collapseSpace},
	}
	return n
}

// Normalize returns the join key for raw. It never fails; unusable input
// gives "". The rule pipeline is repeated until the value stops changing.
func (n *NameNormalizer) Normalize(raw string) string {
	s := raw
	for {
		next := n.once(s)
		if next == s {
			return next
		}
		s = next
	}
}

func (n *NameNormalizer) once(s string) string {
	for _, r := range n.rules {
		s = r.apply(s)
		if s == "" {
			return ""
		}
	}
	return s
}

func (n *NameNormalizer) trimFold(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

func (n *NameNormalizer) dropPlaceholder(s string) string {
	for _, p := range n.placeholders {
		if strings.EqualFold(s, p) {
			return ""
		}
	}
	return s
}

func (n *NameNormalizer) isProtected(s string) bool {
	for _, p := range n.protected {
		if strings.HasPrefix(strings.ToUpper(s), strings.ToUpper(p)) {
			return true
		}
	}
	return false
}

// stripBracketPrefix removes leading "[...]" groups until a protected prefix
// reaches the front. A bracket group with nothing after it is kept.
func (n *NameNormalizer) stripBracketPrefix(s string) string {
	for strings.HasPrefix(s, "[") && !n.isProtected(s) {
		end := strings.Index(s, "]")
		if end < 0 {
			break
		}
		rest := strings.TrimSpace(s[end+1:])
		if rest == "" {
			break
		}
		s = rest
	}
	return s
}

// stripOptionSuffix removes the last option suffix, keeping its boundary
func stripOptionSuffix(s string) string {
	matches := optionSuffix.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	m := matches[len(matches)-1]
	return s[:m[0]] + s[m[2]:]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
