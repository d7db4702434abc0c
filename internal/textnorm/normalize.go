package textnorm

import (
	"regexp"
	"strings"
)

var (
	reTabCR      = regexp.MustCompile(`[\t\r]+`)
	reSoftHyphen = regexp.MustCompile(`\x{00AD}`)
)

// Normalize collapses runs of tabs and carriage returns into single spaces
// and strips soft hyphens left behind by PDF text extraction.
// Conservative: keeps line breaks exactly as they arrived.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reTabCR.ReplaceAllString(s, " ")
	s = reSoftHyphen.ReplaceAllString(s, "")
	return s
}

// CanonicalText is the normalized view of one document that field
// strategies operate on: the full text for window scans plus the
// trimmed, non-empty line sequence for anchor lookups.
type CanonicalText struct {
	Full  string
	Lines []string
}

// Canonicalize normalizes raw document text and derives its line sequence.
func Canonicalize(raw string) CanonicalText {
	full := Normalize(raw)
	var lines []string
	for _, ln := range strings.Split(full, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		lines = append(lines, ln)
	}
	return CanonicalText{Full: full, Lines: lines}
}

// Empty reports whether the document had no extractable text at all.
func (ct CanonicalText) Empty() bool {
	return len(ct.Lines) == 0
}
