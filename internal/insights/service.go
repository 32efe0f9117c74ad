package insights

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"hash/fnv"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smendez/searchgram/internal/config"
	"github.com/smendez/searchgram/internal/models"
	"github.com/smendez/searchgram/internal/ngram"
	"github.com/smendez/searchgram/internal/obs"
	"github.com/smendez/searchgram/internal/store"
)

// Service is the derive(state) -> view boundary: it filters the stored rows
// by the request parameters, runs the n-gram pipeline, and memoizes the
// result on a fingerprint of the filtered rows plus parameters so unrelated
// requests against unchanged data skip the recomputation.
type Service struct {
	st  *store.MemoryStore
	eng *ngram.Engine
	cfg config.Config
	m   *obs.Metrics

	mu   sync.Mutex
	memo map[uint64]*derived
}

type derived struct {
	grams   []models.NGram
	summary models.Summary
}

func NewService(st *store.MemoryStore, eng *ngram.Engine, cfg config.Config, m *obs.Metrics) *Service {
	return &Service{st: st, eng: eng, cfg: cfg, m: m, memo: make(map[uint64]*derived)}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		if p = norm(p); p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// filterRows applies the user-facing filters (date range, campaign scope,
// device) before anything reaches the core.
func (s *Service) filterRows(v url.Values) ([]models.SearchTermRow, time.Time, time.Time) {
	from, _ := time.Parse("2006-01-02", v.Get("from"))
	to, _ := time.Parse("2006-01-02", v.Get("to"))
	campSet := csvSet(v.Get("campaign"))
	device := norm(v.Get("device"))

	rows := s.st.Query(from, to, func(r models.SearchTermRow) bool {
		if len(campSet) > 0 {
			if _, ok := campSet[norm(r.CampaignID)]; !ok {
				return false
			}
		}
		if device != "" && norm(r.Device) != device {
			return false
		}
		return true
	})
	return rows, from, to
}

func (s *Service) derive(rows []models.SearchTermRow, maxN, minSupport int) *derived {
	fp := fingerprint(rows, uint64(maxN), uint64(minSupport))

	s.mu.Lock()
	if d, ok := s.memo[fp]; ok {
		s.mu.Unlock()
		return d
	}
	s.mu.Unlock()

	start := time.Now()
	grams := s.eng.Build(rows, maxN, minSupport)
	d := &derived{grams: grams, summary: ngram.Summarize(grams)}
	s.m.RebuildSeconds.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	if len(s.memo) >= 64 {
		s.memo = make(map[uint64]*derived)
	}
	s.memo[fp] = d
	s.mu.Unlock()
	return d
}

// NGrams returns the classified, support-filtered n-gram table for the
// requested filters, paginated.
func (s *Service) NGrams(v url.Values) ([]models.NGram, error) {
	rows, _, _ := s.filterRows(v)
	d := s.derive(rows, s.maxN(v), s.minSupport(v))

	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)
	limit, offset = clampLimitOffset(limit, offset, len(d.grams))
	return paginate(d.grams, limit, offset), nil
}

// KPIs returns the headline summary block for the requested filters.
func (s *Service) KPIs(v url.Values) (models.Summary, error) {
	rows, _, _ := s.filterRows(v)
	d := s.derive(rows, s.maxN(v), s.minSupport(v))
	return d.summary, nil
}

// Negatives returns the scored negative-keyword candidates for the
// requested filters.
func (s *Service) Negatives(v url.Values) ([]models.WastefulTerm, error) {
	rows, from, to := s.filterRows(v)

	avgCPA, avgCTR := ngram.DatasetStats(rows)
	p := ngram.WastefulParams{
		MinCost:           floatDef(v.Get("min_cost"), s.cfg.MinWasteCost),
		MinClicks:         atoiDef(v.Get("min_clicks"), s.cfg.MinWasteClicks),
		PeriodDays:        periodDays(rows, from, to),
		AvgCPA:            avgCPA,
		AvgCTR:            avgCTR,
		IncludeConverting: v.Get("include_converting") == "true",
	}
	out := s.eng.WastefulTerms(rows, p)

	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)
	limit, offset = clampLimitOffset(limit, offset, len(out))
	return paginate(out, limit, offset), nil
}

// NegativesCSV renders the negatives table as CSV for download.
func (s *Service) NegativesCSV(v url.Values) ([]byte, error) {
	terms, err := s.Negatives(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"search_term", "impressions", "clicks", "cost", "conversions", "cpc", "ctr", "monthly_cost", "confidence", "campaigns"})
	for _, t := range terms {
		w.Write([]string{
			t.SearchTerm,
			strconv.Itoa(t.Impressions),
			strconv.Itoa(t.Clicks),
			strconv.FormatFloat(t.Cost, 'f', 2, 64),
			strconv.FormatFloat(t.Conversions, 'f', 2, 64),
			strconv.FormatFloat(t.CPC, 'f', 2, 64),
			strconv.FormatFloat(t.CTR, 'f', 4, 64),
			strconv.FormatFloat(t.MonthlyCost, 'f', 2, 64),
			string(t.Confidence),
			strings.Join(t.Campaigns, "; "),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *Service) maxN(v url.Values) int       { return atoiDef(v.Get("max_n"), s.cfg.MaxN) }
func (s *Service) minSupport(v url.Values) int { return atoiDef(v.Get("min_support"), s.cfg.MinSupport) }

// periodDays is the inclusive day count of the selected range, falling back
// to the span of the data itself when no explicit range was given.
func periodDays(rows []models.SearchTermRow, from, to time.Time) int {
	if from.IsZero() || to.IsZero() {
		var min, max time.Time
		for i, r := range rows {
			if i == 0 || r.Date.Before(min) {
				min = r.Date
			}
			if i == 0 || r.Date.After(max) {
				max = r.Date
			}
		}
		from, to = min, max
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return 1
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// fingerprint hashes the row set and parameters so memoized results are
// reused only when the underlying data actually matches. Per-row hashes are
// combined with XOR because the store yields rows in map order.
func fingerprint(rows []models.SearchTermRow, params ...uint64) uint64 {
	var acc uint64
	for _, r := range rows {
		acc ^= rowHash(r)
	}
	h := fnv.New64a()
	var b [8]byte
	for _, p := range append(params, acc, uint64(len(rows))) {
		binary.LittleEndian.PutUint64(b[:], p)
		h.Write(b[:])
	}
	return h.Sum64()
}

func rowHash(r models.SearchTermRow) uint64 {
	h := fnv.New64a()
	var b [8]byte
	wu := func(u uint64) { binary.LittleEndian.PutUint64(b[:], u); h.Write(b[:]) }
	h.Write([]byte(r.SearchTerm))
	h.Write([]byte{0})
	h.Write([]byte(r.CampaignID))
	h.Write([]byte{0})
	h.Write([]byte(r.Device))
	h.Write([]byte{0})
	wu(uint64(r.Date.Unix()))
	wu(uint64(r.Impressions))
	wu(uint64(r.Clicks))
	wu(uint64(int64(r.Cost * 1e6)))
	wu(uint64(int64(r.Conversions * 1e6)))
	wu(uint64(int64(r.ConversionValue * 1e6)))
	return h.Sum64()
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func floatDef(s string, d float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
