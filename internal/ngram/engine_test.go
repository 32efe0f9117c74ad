package ngram_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smendez/searchgram/internal/models"
	"github.com/smendez/searchgram/internal/ngram"
)

func row(term string, cost float64, clicks, imps int, convs, convVal float64) models.SearchTermRow {
	return models.SearchTermRow{
		SearchTerm:      term,
		Impressions:     imps,
		Clicks:          clicks,
		Cost:            cost,
		Conversions:     convs,
		ConversionValue: convVal,
	}
}

func find(grams []models.NGram, gram string) *models.NGram {
	for i := range grams {
		if grams[i].Gram == gram {
			return &grams[i]
		}
	}
	return nil
}

func TestBuildWindowCompleteness(t *testing.T) {
	// k tokens must yield k unigrams, k-1 bigrams, k-2 trigrams
	e := ngram.NewEngine(nil)
	out := e.Build([]models.SearchTermRow{row("modern corner sofa blue", 10, 1, 10, 0, 0)}, 3, 1)

	counts := map[int]int{}
	for _, g := range out {
		counts[g.N]++
	}
	assert.Equal(t, 4, counts[1])
	assert.Equal(t, 3, counts[2])
	assert.Equal(t, 2, counts[3])
}

func TestBuildShortTermContributesNoLargerWindows(t *testing.T) {
	e := ngram.NewEngine(nil)
	out := e.Build([]models.SearchTermRow{row("sofa", 5, 1, 10, 0, 0)}, 3, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "sofa", out[0].Gram)
	assert.Equal(t, 1, out[0].N)
}

func TestBuildSupportFilter(t *testing.T) {
	e := ngram.NewEngine(nil)
	out := e.Build([]models.SearchTermRow{
		row("modern corner sofa", 40, 10, 200, 0, 0),
		row("corner sofa bed", 30, 8, 150, 0, 0),
	}, 3, 2)

	for _, g := range out {
		assert.GreaterOrEqual(t, g.TermCount, 2, "gram %q below support", g.Gram)
	}
	// one-off phrases must be gone
	assert.Nil(t, find(out, "modern corner"))
	assert.Nil(t, find(out, "sofa bed"))
}

func TestBuildCornerSofaScenario(t *testing.T) {
	e := ngram.NewEngine(nil)
	out := e.Build([]models.SearchTermRow{
		row("modern corner sofa", 40, 10, 200, 0, 0),
		row("corner sofa bed", 30, 8, 150, 0, 0),
	}, 3, 2)

	g := find(out, "corner sofa")
	require.NotNil(t, g)
	assert.Equal(t, 2, g.N)
	assert.Equal(t, 2, g.TermCount)
	assert.InDelta(t, 70, g.Cost, 1e-9)
	assert.Zero(t, g.Conversions)
	require.NotNil(t, g.Roas, "roas is nil only when cost is zero")
	assert.Zero(t, *g.Roas)
	assert.Equal(t, models.GramNonBrand, g.Type)
}

func TestBuildRoasNullability(t *testing.T) {
	e := ngram.NewEngine(nil)
	out := e.Build([]models.SearchTermRow{
		row("free sofa", 0, 2, 50, 0, 0),
		row("free sofa guide", 0, 1, 20, 0, 0),
		row("buy sofa", 100, 10, 200, 2, 250),
		row("buy sofa online", 100, 5, 100, 1, 150),
	}, 3, 2)

	free := find(out, "free sofa")
	require.NotNil(t, free)
	assert.Nil(t, free.Roas, "roas must be nil iff cost is zero")

	buy := find(out, "buy sofa")
	require.NotNil(t, buy)
	require.NotNil(t, buy.Roas)
	assert.InDelta(t, 400.0/200.0, *buy.Roas, 1e-9)
}

func TestBuildDistinctTermCountAcrossRows(t *testing.T) {
	// same term in two campaigns: metrics sum, term counted once
	e := ngram.NewEngine(nil)
	a := row("corner sofa", 10, 2, 40, 0, 0)
	a.CampaignID = "c1"
	b := row("corner sofa", 15, 3, 60, 0, 0)
	b.CampaignID = "c2"
	out := e.Build([]models.SearchTermRow{a, b}, 3, 1)

	g := find(out, "corner sofa")
	require.NotNil(t, g)
	assert.Equal(t, 1, g.TermCount)
	assert.InDelta(t, 25, g.Cost, 1e-9)
	assert.Equal(t, 5, g.Clicks)
}

func TestBuildRepeatedTokenCountsMetricsPerOccurrence(t *testing.T) {
	// "sofa sofa" contributes the unigram twice; metrics double, support is 1
	e := ngram.NewEngine(nil)
	out := e.Build([]models.SearchTermRow{row("sofa sofa", 10, 1, 10, 0, 0)}, 1, 1)

	g := find(out, "sofa")
	require.NotNil(t, g)
	assert.Equal(t, 1, g.TermCount)
	assert.InDelta(t, 20, g.Cost, 1e-9)
}

func TestBuildStripsMarkerBeforeTokenizing(t *testing.T) {
	e := ngram.NewEngine(nil)
	out := e.Build([]models.SearchTermRow{
		row("[pmax] corner sofa", 10, 1, 10, 0, 0),
		row("corner sofa", 10, 1, 10, 0, 0),
	}, 2, 1)

	g := find(out, "corner sofa")
	require.NotNil(t, g)
	assert.Equal(t, 1, g.TermCount, "marker variant is the same normalized term")
	assert.Nil(t, find(out, "[pmax]"))
}

func TestBuildEmptyInput(t *testing.T) {
	e := ngram.NewEngine(nil)
	assert.Empty(t, e.Build(nil, 3, 2))
	assert.Empty(t, e.Build([]models.SearchTermRow{}, 3, 2))
	assert.Empty(t, e.Build([]models.SearchTermRow{row("   ", 10, 1, 10, 0, 0)}, 3, 1))
}

func TestBuildDeterministicOrder(t *testing.T) {
	e := ngram.NewEngine(nil)
	rows := []models.SearchTermRow{
		row("alpha beta", 10, 1, 10, 0, 0),
		row("beta gamma", 20, 1, 10, 0, 0),
		row("gamma alpha", 30, 1, 10, 0, 0),
	}
	first := e.Build(rows, 2, 1)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Build(rows, 2, 1))
	}
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Cost, first[i].Cost)
	}
}
