package driven

// TextNormaliser rewrites pattern heading content before it is composed into
// the full-text facet (for example, stripping markdown syntax).
type TextNormaliser interface {
	// Normalise returns the plain-text form of content.
	Normalise(content string) string
}
