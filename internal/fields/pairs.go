package fields

import (
	"regexp"
	"strings"
)

// Pair is one "<name> / <code>" segment of a composite value run.
type Pair struct {
	Name string
	Code string
}

var rePairCode = regexp.MustCompile(`^[0-9.]+`)

// SplitPairs segments a composite value run at each "/" that is immediately
// followed by a numeric code token. Slashes inside names survive, so
// "A/B TEXTILE / 43.1 C MILL / 028288" yields two pairs with "A/B TEXTILE"
// intact. A run without any slash-delimited code yields no pairs.
func SplitPairs(run string) []Pair {
	var pairs []Pair
	rest := run
	for {
		name, code, tail, ok := splitOnce(rest)
		if !ok {
			break
		}
		pairs = append(pairs, Pair{Name: name, Code: code})
		rest = tail
	}
	return pairs
}

// splitOnce finds the first "/" in s followed by a numeric token and cuts
// the pair off the front.
func splitOnce(s string) (name, code, tail string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '/' {
			continue
		}
		after := strings.TrimLeft(s[i+1:], " \t")
		tok := rePairCode.FindString(after)
		if tok == "" {
			continue
		}
		return trimPairName(s[:i]), tok, after[len(tok):], true
	}
	return "", "", "", false
}

// trimPairName strips surrounding whitespace and trailing list punctuation
// from a pair name. Trailing periods stay: "Co., Ltd." keeps its dot.
func trimPairName(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, " \t,;"))
}

// SplitSlash is the loose fallback split: the run cut at every "/" with the
// parts trimmed, regardless of whether a code follows. Used when the
// pair-aware split finds nothing, e.g. a name present with its code missing.
func SplitSlash(run string) []string {
	parts := strings.Split(run, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
