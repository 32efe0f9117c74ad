package ngram

import (
	"regexp"
	"strings"
)

// insightMarker matches a leading bracketed source tag (e.g. "[pmax] sofa bed")
// that some feeds prepend to the query text. It is stripped before tokenization
// but the raw text is kept around for display.
var insightMarker = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)

// Display strips the insight marker and trims, preserving the original casing.
func Display(term string) string {
	return strings.TrimSpace(insightMarker.ReplaceAllString(term, ""))
}

// Normalize returns the canonical identity of a search term: marker stripped,
// lowercased, trimmed. Two rows with the same Normalize value are the same term.
func Normalize(term string) string {
	return strings.ToLower(Display(term))
}

// Tokens splits a normalized term on whitespace. No stemming: exact
// surface-form matching only. Empty or whitespace-only input yields nil.
func Tokens(term string) []string {
	return strings.Fields(Normalize(term))
}
