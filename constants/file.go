package constants

import "strings"

// Source formats a document's text can arrive in.
const (
	FormatPDF  = "PDF"
	FormatText = "TXT"
)

// AllowedExtensions holds the file extensions accepted for report ingestion.
// Plain-text files carry pre-extracted report text verbatim.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its source format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return FormatPDF
	case "txt":
		return FormatText
	default:
		return ""
	}
}
