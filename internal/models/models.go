package models

import "time"

// GramType labels an n-gram along the brand / dimension / non-brand taxonomy.
type GramType string

const (
	GramBrand     GramType = "Brand"
	GramDimension GramType = "Dimension"
	GramNonBrand  GramType = "Non-brand"
)

// ConfidenceTier expresses how safe it is to add a term as a negative keyword.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// SearchTermRow is one search-term performance row as ingested from the
// Ads API or the Windsor connector: one row per term x campaign x device x day.
// Numeric fields are coerced to finite values >= 0 at ingest time.
type SearchTermRow struct {
	SearchTerm      string // display form, insight marker stripped
	RawTerm         string // original text incl. any bracketed marker
	CampaignID      string
	CampaignName    string
	Device          string
	Date            time.Time
	Impressions     int
	Clicks          int
	Cost            float64
	Conversions     float64
	ConversionValue float64
}

// RowKey identifies a stored row for upsert aggregation.
type RowKey struct {
	Term       string // normalized: lowercased, de-prefixed
	CampaignID string
	Device     string
	Date       time.Time
}

// NGram is one aggregated token sequence of length N across all search terms.
type NGram struct {
	Gram            string   `json:"gram"`
	N               int      `json:"n"`
	TermCount       int      `json:"term_count"`
	Impressions     int      `json:"impressions"`
	Clicks          int      `json:"clicks"`
	Cost            float64  `json:"cost"`
	Conversions     float64  `json:"conversions"`
	ConversionValue float64  `json:"conversion_value"`
	Roas            *float64 `json:"roas"` // nil when cost is zero
	Type            GramType `json:"gram_type"`
}

// WastefulTerm is one exact search term aggregated across campaigns and
// scored as a negative-keyword candidate.
type WastefulTerm struct {
	SearchTerm      string         `json:"search_term"`
	Impressions     int            `json:"impressions"`
	Clicks          int            `json:"clicks"`
	Cost            float64        `json:"cost"`
	Conversions     float64        `json:"conversions"`
	ConversionValue float64        `json:"conversion_value"`
	CPC             float64        `json:"cpc"`
	CTR             float64        `json:"ctr"`
	Campaigns       []string       `json:"campaigns"`
	CampaignIDs     []string       `json:"campaign_ids"`
	MonthlyCost     float64        `json:"monthly_cost"`
	Confidence      ConfidenceTier `json:"confidence"`
}

// Summary is the headline KPI block over a classified n-gram set.
// Pointer fields are nil when there is no data to derive them from.
type Summary struct {
	TopPattern    *NGram   `json:"top_pattern"`
	BrandCost     float64  `json:"brand_cost"`
	NonBrandCost  float64  `json:"non_brand_cost"`
	BrandSharePct int      `json:"brand_share_pct"`
	AvgRoas       *float64 `json:"avg_roas"`
	Opportunity   *NGram   `json:"opportunity"`
}
