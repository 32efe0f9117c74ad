package ngram

import (
	"regexp"
	"strings"

	"github.com/smendez/searchgram/internal/models"
)

// dimensionPat catches size/measurement strings like "120x200" or "3 4":
// must start with a digit, and contain only digits plus the separator set
// (space, comma, period, asterisk, x, multiplication sign) thereafter.
var dimensionPat = regexp.MustCompile(`^[0-9][0-9\s.,*x×]*$`)

// Classify assigns exactly one taxonomy label to a gram. The rule is a pure
// function of the text, applied first-match-wins: brand substring, then
// dimension pattern, then non-brand as the default. The brand check runs
// first so a brand term with numeric content is never mislabeled Dimension.
func (e *Engine) Classify(gram string) models.GramType {
	g := strings.ToLower(strings.TrimSpace(gram))
	for _, b := range e.brands {
		if strings.Contains(g, b) {
			return models.GramBrand
		}
	}
	if dimensionPat.MatchString(g) {
		return models.GramDimension
	}
	return models.GramNonBrand
}

// containsBrand reports whether the normalized text matches the brand
// allowlist. Used by the wasteful-term flow to keep brand queries out of
// the negative-keyword candidate set entirely.
func (e *Engine) containsBrand(normalized string) bool {
	for _, b := range e.brands {
		if strings.Contains(normalized, b) {
			return true
		}
	}
	return false
}
