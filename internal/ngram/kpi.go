package ngram

import (
	"math"

	"github.com/smendez/searchgram/internal/models"
)

// Summarize derives the headline KPIs from a classified n-gram set:
// top converting pattern, brand vs non-brand spend split, average ROAS
// over converting grams, and the best multi-word opportunity. A nil or
// empty input produces a zero Summary with nil pointers ("no data"),
// never a panic.
func Summarize(grams []models.NGram) models.Summary {
	var s models.Summary

	for i := range grams {
		g := &grams[i]

		switch g.Type {
		case models.GramBrand:
			s.BrandCost += g.Cost
		case models.GramNonBrand:
			s.NonBrandCost += g.Cost
		}
		// Dimension spend stays out of the brand-share ratio

		if g.Conversions <= 0 {
			continue
		}
		if s.TopPattern == nil || g.Conversions > s.TopPattern.Conversions {
			s.TopPattern = g
		}
		if g.N >= 2 && g.Type != models.GramDimension {
			if s.Opportunity == nil || roasOrZero(g) > roasOrZero(s.Opportunity) {
				s.Opportunity = g
			}
		}
	}

	if total := s.BrandCost + s.NonBrandCost; total > 0 {
		s.BrandSharePct = int(math.Round(s.BrandCost / total * 100))
	}

	var sum float64
	var n int
	for i := range grams {
		if grams[i].Conversions > 0 && grams[i].Roas != nil {
			sum += *grams[i].Roas
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		s.AvgRoas = &avg
	}
	return s
}

func roasOrZero(g *models.NGram) float64 {
	if g.Roas == nil {
		return 0
	}
	return *g.Roas
}
