package ngram

import (
	"sort"

	"github.com/smendez/searchgram/internal/models"
)

// DefaultAvgCPA is the fallback cost-per-acquisition baseline used when the
// dataset has no converting terms at all.
const DefaultAvgCPA = 50.0

// WastefulParams configures the negative-keyword candidate aggregation.
type WastefulParams struct {
	MinCost           float64 // exclude terms below this spend
	MinClicks         int     // exclude terms below this click count
	PeriodDays        int     // inclusive day count of the selected range
	AvgCPA            float64 // dataset baseline, see DatasetStats
	AvgCTR            float64 // dataset baseline, see DatasetStats
	IncludeConverting bool    // default view hides terms that converted
}

type termAcc struct {
	display         string
	impressions     int
	clicks          int
	cost            float64
	conversions     float64
	conversionValue float64
	campaigns       map[string]string // id -> name
}

// DatasetStats computes the scoring baselines over the full row set:
// avgCPA is total cost over total conversions across converting terms only
// (falling back to DefaultAvgCPA when nothing converted), avgCTR is total
// clicks over total impressions across all terms.
func DatasetStats(rows []models.SearchTermRow) (avgCPA, avgCTR float64) {
	terms := aggregateTerms(rows)

	var convCost, convs float64
	var clicks, imps int
	for _, t := range terms {
		if t.conversions > 0 {
			convCost += t.cost
			convs += t.conversions
		}
		clicks += t.clicks
		imps += t.impressions
	}

	avgCPA = DefaultAvgCPA
	if convs > 0 {
		avgCPA = convCost / convs
	}
	if imps > 0 {
		avgCTR = float64(clicks) / float64(imps)
	}
	return avgCPA, avgCTR
}

// WastefulTerms aggregates rows by exact normalized search term and scores
// each surviving term for negative-keyword candidacy. Brand terms are
// excluded unconditionally; cost/click floors and the converting-terms
// toggle are applied before scoring.
func (e *Engine) WastefulTerms(rows []models.SearchTermRow, p WastefulParams) []models.WastefulTerm {
	if p.AvgCPA <= 0 {
		p.AvgCPA = DefaultAvgCPA
	}
	if p.PeriodDays <= 0 {
		p.PeriodDays = 1
	}

	terms := aggregateTerms(rows)

	out := make([]models.WastefulTerm, 0, len(terms))
	for norm, t := range terms {
		if e.containsBrand(norm) {
			continue // never recommend a brand term as negative
		}
		if t.cost < p.MinCost || t.clicks < p.MinClicks {
			continue
		}
		if !p.IncludeConverting && t.conversions > 0 {
			continue
		}

		w := models.WastefulTerm{
			SearchTerm:      t.display,
			Impressions:     t.impressions,
			Clicks:          t.clicks,
			Cost:            t.cost,
			Conversions:     t.conversions,
			ConversionValue: t.conversionValue,
			MonthlyCost:     t.cost / float64(p.PeriodDays) * 30,
			Confidence:      scoreTerm(t, p),
		}
		if t.clicks > 0 {
			w.CPC = t.cost / float64(t.clicks)
		}
		if t.impressions > 0 {
			w.CTR = float64(t.clicks) / float64(t.impressions)
		}
		for id, name := range t.campaigns {
			w.CampaignIDs = append(w.CampaignIDs, id)
			w.Campaigns = append(w.Campaigns, name)
		}
		sort.Strings(w.CampaignIDs)
		sort.Strings(w.Campaigns)
		out = append(out, w)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].SearchTerm < out[j].SearchTerm
	})
	return out
}

// scoreTerm walks the confidence ladder top to bottom, first match wins.
// High CTR deliberately downgrades the tier: a term attracting above-average
// click-through is presumed relevant even without conversions yet, and over a
// short window conversion lag alone could explain the absence. The ladder
// trades recall for precision so legitimately relevant traffic is not cut.
func scoreTerm(t *termAcc, p WastefulParams) models.ConfidenceTier {
	var ctr float64
	if t.impressions > 0 {
		ctr = float64(t.clicks) / float64(t.impressions)
	}
	isHighCTR := ctr > p.AvgCTR*1.2
	isShortPeriod := p.PeriodDays < 14
	isHighVolume := t.clicks >= 20

	switch {
	case t.conversions > 0:
		return models.ConfidenceLow // context only, it converted
	case isHighCTR && isShortPeriod:
		return models.ConfidenceLow // CTR signal unreliable over a short window
	case isHighCTR && isHighVolume:
		return models.ConfidenceLow // popular, apparently relevant term
	case t.cost >= p.AvgCPA*2:
		return models.ConfidenceHigh
	case t.cost >= p.AvgCPA:
		if isHighCTR {
			return models.ConfidenceLow
		}
		return models.ConfidenceMedium
	case t.clicks >= 5:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func aggregateTerms(rows []models.SearchTermRow) map[string]*termAcc {
	terms := make(map[string]*termAcc)
	for _, r := range rows {
		norm := Normalize(r.SearchTerm)
		if norm == "" {
			continue
		}
		t, ok := terms[norm]
		if !ok {
			t = &termAcc{display: Display(r.SearchTerm), campaigns: make(map[string]string)}
			terms[norm] = t
		}
		t.impressions += r.Impressions
		t.clicks += r.Clicks
		t.cost += r.Cost
		t.conversions += r.Conversions
		t.conversionValue += r.ConversionValue
		if r.CampaignID != "" {
			t.campaigns[r.CampaignID] = r.CampaignName
		}
	}
	return terms
}
