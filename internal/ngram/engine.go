package ngram

import (
	"sort"
	"strings"

	"github.com/smendez/searchgram/internal/models"
)

// Defaults for the n-gram window and the minimum distinct-term support.
const (
	DefaultMaxN       = 3
	DefaultMinSupport = 2
)

// Engine is the n-gram mining core. It holds only the brand vocabulary;
// every method is a pure function of its arguments, no I/O and no shared
// mutable state, so a fresh result set comes out of every call.
type Engine struct {
	brands []string
}

// NewEngine builds an engine from the configured brand vocabulary.
// Entries are matched as exact lowercase substrings; transliterations and
// misspellings belong in the list itself, there is no fuzzy matching.
func NewEngine(brands []string) *Engine {
	out := make([]string, 0, len(brands))
	for _, b := range brands {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" {
			out = append(out, b)
		}
	}
	return &Engine{brands: out}
}

type gramKey struct {
	gram string
	n    int
}

type gramAcc struct {
	terms           map[string]struct{}
	impressions     int
	clicks          int
	cost            float64
	conversions     float64
	conversionValue float64
}

// Build produces the complete classified n-gram table for window sizes
// 1..maxN. For each row the token sequence is slid over once per window
// size; every occurrence position adds the full row metrics to its gram,
// while TermCount counts each distinct normalized search term once. Keys
// with support below minSupport are dropped. Malformed or empty input
// yields an empty slice, never an error.
func (e *Engine) Build(rows []models.SearchTermRow, maxN, minSupport int) []models.NGram {
	if maxN <= 0 {
		maxN = DefaultMaxN
	}
	if minSupport <= 0 {
		minSupport = 1
	}

	idx := make(map[gramKey]*gramAcc)
	for _, r := range rows {
		term := Normalize(r.SearchTerm)
		toks := strings.Fields(term)
		if len(toks) == 0 {
			continue
		}
		for n := 1; n <= maxN && n <= len(toks); n++ {
			for i := 0; i+n <= len(toks); i++ {
				k := gramKey{gram: strings.Join(toks[i:i+n], " "), n: n}
				acc, ok := idx[k]
				if !ok {
					acc = &gramAcc{terms: make(map[string]struct{})}
					idx[k] = acc
				}
				acc.terms[term] = struct{}{}
				acc.impressions += r.Impressions
				acc.clicks += r.Clicks
				acc.cost += r.Cost
				acc.conversions += r.Conversions
				acc.conversionValue += r.ConversionValue
			}
		}
	}

	out := make([]models.NGram, 0, len(idx))
	for k, acc := range idx {
		if len(acc.terms) < minSupport {
			continue
		}
		g := models.NGram{
			Gram:            k.gram,
			N:               k.n,
			TermCount:       len(acc.terms),
			Impressions:     acc.impressions,
			Clicks:          acc.clicks,
			Cost:            acc.cost,
			Conversions:     acc.conversions,
			ConversionValue: acc.conversionValue,
			Type:            e.Classify(k.gram),
		}
		if acc.cost > 0 {
			roas := acc.conversionValue / acc.cost
			g.Roas = &roas
		}
		out = append(out, g)
	}

	// deterministic order: biggest spend first, gram text as tiebreak
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].Gram < out[j].Gram
	})
	return out
}
