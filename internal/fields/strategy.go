package fields

import (
	"regexp"
	"strings"

	"github.com/texqa/aql-extractor/internal/textnorm"
)

// Strategy is one ordered extraction rule for a field. Strategies are tried
// in sequence; the first non-empty value wins. Implementations are stateless
// and safe for concurrent use.
type Strategy interface {
	Name() string
	Extract(ct textnorm.CanonicalText) (string, bool)
}

// reParenNote matches short parenthetical unit notes such as "(PCS)".
var reParenNote = regexp.MustCompile(`\([^)\n]{0,24}\)`)

// PatternStrategy runs a regular expression over the full document text and
// returns one capture group. Used for constructs that span lines, like the
// PO header row or the delivered-quantity total.
type PatternStrategy struct {
	name        string
	re          *regexp.Regexp
	group       int
	stripParens bool
}

func (s *PatternStrategy) Name() string { return s.name }

func (s *PatternStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	text := ct.Full
	if s.stripParens {
		text = reParenNote.ReplaceAllString(text, "")
	}
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[s.group])
	return v, v != ""
}

// InlineStrategy anchors on the first line carrying a label and matches a
// value pattern against the rest of that line.
type InlineStrategy struct {
	name  string
	label *regexp.Regexp
	value *regexp.Regexp
}

func (s *InlineStrategy) Name() string { return s.name }

func (s *InlineStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	idx, ok := FindAnchor(ct.Lines, s.label)
	if !ok {
		return "", false
	}
	return matchValue(s.value, Remainder(ct.Lines[idx], s.label))
}

// NextLineStrategy anchors on the first line carrying a label and matches a
// value pattern against the following line. Templates that stack the value
// beneath its label land here after the inline pass fails.
type NextLineStrategy struct {
	name  string
	label *regexp.Regexp
	value *regexp.Regexp
}

func (s *NextLineStrategy) Name() string { return s.name }

func (s *NextLineStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	idx, ok := FindAnchor(ct.Lines, s.label)
	if !ok {
		return "", false
	}
	next, ok := NextLine(ct.Lines, idx)
	if !ok {
		return "", false
	}
	return matchValue(s.value, next)
}

func matchValue(re *regexp.Regexp, in string) (string, bool) {
	m := re.FindStringSubmatch(in)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// PairStrategy extracts one member of the slash-delimited pair anchored on a
// single label: the run after the label (or on the next line when nothing
// follows it) is pair-split and the first pair's name or code returned.
type PairStrategy struct {
	name  string
	label *regexp.Regexp
	code  bool
}

func (s *PairStrategy) Name() string { return s.name }

func (s *PairStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	idx, ok := FindAnchor(ct.Lines, s.label)
	if !ok {
		return "", false
	}
	run := strings.TrimSpace(Remainder(ct.Lines[idx], s.label))
	if run == "" {
		run, ok = NextLine(ct.Lines, idx)
		if !ok {
			return "", false
		}
	}
	pairs := SplitPairs(run)
	if len(pairs) == 0 {
		return "", false
	}
	if s.code {
		return pairs[0].Code, pairs[0].Code != ""
	}
	return pairs[0].Name, pairs[0].Name != ""
}

// HeaderRowStrategy handles the combined header template: one line carrying
// several pair labels in order with nothing after the last, and the value
// row beneath carrying the pair runs in the same order. Pair [index] belongs
// to label [index]. A line with trailing text after its last label is not a
// header row and is left to the single-label strategies.
type HeaderRowStrategy struct {
	name   string
	labels []*regexp.Regexp
	index  int
	code   bool
}

func (s *HeaderRowStrategy) Name() string { return s.name }

func (s *HeaderRowStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	idx, end, ok := findAnchorSeq(ct.Lines, s.labels)
	if !ok {
		return "", false
	}
	if strings.TrimSpace(ct.Lines[idx][end:]) != "" {
		return "", false
	}
	row, ok := NextLine(ct.Lines, idx)
	if !ok {
		return "", false
	}
	pairs := SplitPairs(row)
	if s.index >= len(pairs) {
		return "", false
	}
	p := pairs[s.index]
	if s.code {
		return p.Code, p.Code != ""
	}
	return p.Name, p.Name != ""
}

// SlashSplitStrategy is the loose composite fallback: the run after the
// label (or the next line) is cut at every slash and part [index] returned.
// It tolerates a missing code but will misread runs whose names contain
// slashes, so it always sits behind the pair-aware strategies in a chain.
type SlashSplitStrategy struct {
	name  string
	label *regexp.Regexp
	index int
}

func (s *SlashSplitStrategy) Name() string { return s.name }

func (s *SlashSplitStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	idx, ok := FindAnchor(ct.Lines, s.label)
	if !ok {
		return "", false
	}
	run := strings.TrimSpace(Remainder(ct.Lines[idx], s.label))
	if run == "" {
		run, ok = NextLine(ct.Lines, idx)
		if !ok {
			return "", false
		}
	}
	parts := SplitSlash(run)
	if s.index >= len(parts) || parts[s.index] == "" {
		return "", false
	}
	return parts[s.index], true
}

// KnownPairStrategy matches one configured factory literal followed by its
// numeric code anywhere in the document. It returns the canonical name (not
// the matched text), or the code.
type KnownPairStrategy struct {
	name      string
	canonical string
	re        *regexp.Regexp
	code      bool
}

func (s *KnownPairStrategy) Name() string { return s.name }

func (s *KnownPairStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	m := s.re.FindStringSubmatch(ct.Full)
	if m == nil {
		return "", false
	}
	if s.code {
		return m[1], true
	}
	return s.canonical, true
}

// newKnownPairStrategy builds the matcher for one configured factory name.
func newKnownPairStrategy(name, canonical string, code bool) *KnownPairStrategy {
	re := regexp.MustCompile(`(?i)` + labelExpr(canonical) + `\s*/\s*([0-9]+)`)
	return &KnownPairStrategy{name: name, canonical: canonical, re: re, code: code}
}

// WindowNumbersStrategy captures the line beneath an anchor within a bounded
// character window and picks one of the 6-8 digit tokens on it. It only
// fires when the row carries at least min such tokens, so a row listing just
// one number falls through to the labeled fallbacks.
type WindowNumbersStrategy struct {
	name string
	re   *regexp.Regexp
	pick int
	min  int
}

var reWindowToken = regexp.MustCompile(`\b[0-9]{6,8}\b`)

func (s *WindowNumbersStrategy) Name() string { return s.name }

func (s *WindowNumbersStrategy) Extract(ct textnorm.CanonicalText) (string, bool) {
	m := s.re.FindStringSubmatch(ct.Full)
	if m == nil {
		return "", false
	}
	tokens := reWindowToken.FindAllString(m[1], -1)
	if len(tokens) < s.min || s.pick >= len(tokens) {
		return "", false
	}
	return tokens[s.pick], true
}
