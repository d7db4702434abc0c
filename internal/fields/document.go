package fields

// Document is one report ready for field extraction: a display name and the
// raw text pulled out of it. Extraction never touches the source file.
type Document struct {
	Name string
	Text string
}
