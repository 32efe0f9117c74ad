package ingest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smendez/searchgram/internal/cache"
	"github.com/smendez/searchgram/internal/config"
	"github.com/smendez/searchgram/internal/models"
	"github.com/smendez/searchgram/internal/ngram"
	"github.com/smendez/searchgram/internal/obs"
	"github.com/smendez/searchgram/internal/store"
	"github.com/smendez/searchgram/internal/utils"
)

// ETL pulls flattened search-term report rows from the configured sources
// (the Ads API export and, optionally, a Windsor.ai connector), coerces the
// numerics, and upserts them into the store.
type ETL struct {
	c     HTTPClient
	st    *store.MemoryStore
	cache *cache.Cache
	log   *slog.Logger
	cfg   config.Config
	bo    utils.Backoff
	m     *obs.Metrics
}

func NewETL(c HTTPClient, st *store.MemoryStore, ca *cache.Cache, log *slog.Logger, cfg config.Config, m *obs.Metrics) *ETL {
	return &ETL{
		c:     c,
		st:    st,
		cache: ca,
		log:   log,
		cfg:   cfg,
		bo:    utils.NewBackoff(100*time.Millisecond, 150*time.Millisecond, 2),
		m:     m,
	}
}

type adsResp []struct {
	Date            string  `json:"date"`
	SearchTerm      string  `json:"search_term"`
	CampaignID      string  `json:"campaign_id"`
	CampaignName    string  `json:"campaign_name"`
	Device          string  `json:"device"`
	Impressions     int     `json:"impressions"`
	Clicks          int     `json:"clicks"`
	Cost            float64 `json:"cost"`
	Conversions     float64 `json:"conversions"`
	ConversionValue float64 `json:"conversion_value"`
}

// windsorResp is the Windsor.ai envelope; field names follow its connector.
type windsorResp struct {
	Data []struct {
		Date        string  `json:"date"`
		SearchTerm  string  `json:"search_term"`
		CampaignID  string  `json:"campaign_id"`
		Campaign    string  `json:"campaign"`
		Device      string  `json:"device"`
		Impressions int     `json:"impressions"`
		Clicks      int     `json:"clicks"`
		Spend       float64 `json:"spend"`
		Conversions float64 `json:"totalconversions"`
		Revenue     float64 `json:"totalconvvalue"`
	} `json:"data"`
}

// Run fetches every configured source and loads the rows at or after the
// optional since day. Rows already seen (same source, day, term, campaign,
// device) are skipped, so re-running is idempotent.
func (e *ETL) Run(ctx context.Context, since *time.Time) error {
	if e.cfg.AdsURL == "" && e.cfg.WindsorURL == "" {
		return errors.New("no ingest source configured")
	}

	if e.cfg.AdsURL != "" {
		var rows adsResp
		if err := e.fetchJSON(ctx, "ads", e.cfg.AdsURL, &rows); err != nil {
			return err
		}
		n := 0
		for _, r := range rows {
			if e.load("ads", since, models.SearchTermRow{
				RawTerm:         r.SearchTerm,
				CampaignID:      r.CampaignID,
				CampaignName:    r.CampaignName,
				Device:          r.Device,
				Impressions:     r.Impressions,
				Clicks:          r.Clicks,
				Cost:            r.Cost,
				Conversions:     r.Conversions,
				ConversionValue: r.ConversionValue,
			}, r.Date) {
				n++
			}
		}
		e.m.RowsIngested.WithLabelValues("ads").Add(float64(n))
		e.log.Info("ads ingest complete", slog.Int("rows", n))
	}

	if e.cfg.WindsorURL != "" {
		var resp windsorResp
		if err := e.fetchJSON(ctx, "windsor", e.windsorURL(), &resp); err != nil {
			return err
		}
		n := 0
		for _, r := range resp.Data {
			if e.load("windsor", since, models.SearchTermRow{
				RawTerm:         r.SearchTerm,
				CampaignID:      r.CampaignID,
				CampaignName:    r.Campaign,
				Device:          r.Device,
				Impressions:     r.Impressions,
				Clicks:          r.Clicks,
				Cost:            r.Spend,
				Conversions:     r.Conversions,
				ConversionValue: r.Revenue,
			}, r.Date) {
				n++
			}
		}
		e.m.RowsIngested.WithLabelValues("windsor").Add(float64(n))
		e.log.Info("windsor ingest complete", slog.Int("rows", n))
	}

	e.m.StoredRows.Set(float64(e.st.Len()))
	return nil
}

// load normalizes and stores one raw row; reports whether it was accepted.
func (e *ETL) load(source string, since *time.Time, r models.SearchTermRow, rawDate string) bool {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(rawDate))
	if err != nil {
		return false
	}
	if since != nil && dayUTC(d).Before(dayUTC(*since)) {
		return false
	}
	r.SearchTerm = ngram.Display(r.RawTerm)
	if r.SearchTerm == "" {
		return false
	}
	r.Date = d
	r.CampaignID = strings.TrimSpace(r.CampaignID)
	r.CampaignName = strings.TrimSpace(r.CampaignName)
	r.Device = strings.ToLower(strings.TrimSpace(r.Device))
	r.Impressions = sanI(r.Impressions)
	r.Clicks = sanI(r.Clicks)
	r.Cost = sanF(r.Cost)
	r.Conversions = sanF(r.Conversions)
	r.ConversionValue = sanF(r.ConversionValue)

	key := source + "|" + rawDate + "|" + ngram.Normalize(r.SearchTerm) + "|" + r.CampaignID + "|" + r.Device
	if !e.st.MarkSeen(key) {
		return false
	}
	e.st.Upsert(r)
	return true
}

func (e *ETL) windsorURL() string {
	if e.cfg.WindsorKey == "" {
		return e.cfg.WindsorURL
	}
	sep := "?"
	if strings.Contains(e.cfg.WindsorURL, "?") {
		sep = "&"
	}
	return e.cfg.WindsorURL + sep + "api_key=" + url.QueryEscape(e.cfg.WindsorKey)
}

// ExportNegatives pushes the scored negative-keyword list to the configured
// sink, signed with an HMAC over the JSON body.
func (e *ETL) ExportNegatives(ctx context.Context, terms []models.WastefulTerm) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, errors.New("sink not configured")
	}
	if len(terms) == 0 {
		return 0, nil
	}
	b, _ := json.Marshal(terms)
	mac := hmac.New(sha256.New, []byte(e.cfg.SinkSecret))
	mac.Write(b)
	sig := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, strings.NewReader(string(b)))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)
	resp, err := e.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New("export sink non-2xx")
	}
	return len(terms), nil
}

// Upstream feeds occasionally hand back negative or non-finite numbers;
// coerce them to zero so the core can assume clean inputs.
func sanF(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func sanI(i int) int {
	if i < 0 {
		return 0
	}
	return i
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
