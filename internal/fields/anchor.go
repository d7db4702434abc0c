package fields

import (
	"regexp"
	"strings"
)

// labelExpr builds a case-insensitive, whitespace-tolerant expression for a
// field label phrase. Word gaps require at least one space; gaps around "/"
// accept zero, since report templates glue slashes both ways.
func labelExpr(label string) string {
	toks := strings.Fields(label)
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			if t == "/" || toks[i-1] == "/" {
				b.WriteString(`\s*`)
			} else {
				b.WriteString(`\s+`)
			}
		}
		b.WriteString(regexp.QuoteMeta(t))
	}
	return b.String()
}

// LabelPattern compiles the anchor matcher for a field label phrase.
func LabelPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + labelExpr(label))
}

// FindAnchor returns the index of the first line matched by label.
// Only the first hit counts; strategies never rescan past it.
func FindAnchor(lines []string, label *regexp.Regexp) (int, bool) {
	for i, ln := range lines {
		if label.MatchString(ln) {
			return i, true
		}
	}
	return -1, false
}

// Remainder returns the text following the first label match on line.
func Remainder(line string, label *regexp.Regexp) string {
	loc := label.FindStringIndex(line)
	if loc == nil {
		return ""
	}
	return line[loc[1]:]
}

// NextLine returns the line after idx, when there is one.
func NextLine(lines []string, idx int) (string, bool) {
	if idx+1 >= len(lines) {
		return "", false
	}
	return lines[idx+1], true
}

// findAnchorSeq locates the first line containing every label in order and
// returns the line index plus the offset just past the last label match.
func findAnchorSeq(lines []string, labels []*regexp.Regexp) (int, int, bool) {
	for i, ln := range lines {
		pos := 0
		matched := true
		for _, label := range labels {
			loc := label.FindStringIndex(ln[pos:])
			if loc == nil {
				matched = false
				break
			}
			pos += loc[1]
		}
		if matched {
			return i, pos, true
		}
	}
	return -1, 0, false
}
