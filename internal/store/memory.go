package store

import (
	"sync"
	"time"

	"github.com/smendez/searchgram/internal/models"
	"github.com/smendez/searchgram/internal/ngram"
)

// MemoryStore aggregates ingested search-term rows in memory, keyed by
// (normalized term, campaign, device, day). Re-ingesting the same feed is
// idempotent through MarkSeen; metric totals are summed on upsert.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[models.RowKey]*models.SearchTermRow
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[models.RowKey]*models.SearchTermRow),
		seen: make(map[string]struct{}),
	}
}

// MarkSeen registers a per-record idempotency key, reporting whether it was
// new. Records already seen should be skipped by the caller.
func (s *MemoryStore) MarkSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

func (s *MemoryStore) Upsert(r models.SearchTermRow) {
	k := models.RowKey{
		Term:       ngram.Normalize(r.SearchTerm),
		CampaignID: r.CampaignID,
		Device:     r.Device,
		Date:       day(r.Date),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[k]
	if !ok {
		cp := r
		cp.Date = k.Date
		s.rows[k] = &cp
		return
	}
	row.Impressions += r.Impressions
	row.Clicks += r.Clicks
	row.Cost += r.Cost
	row.Conversions += r.Conversions
	row.ConversionValue += r.ConversionValue
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *MemoryStore) All() []models.SearchTermRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SearchTermRow, 0, len(s.rows))
	for _, v := range s.rows {
		out = append(out, *v)
	}
	return out
}

// Query returns a fresh copy of the rows inside [from, to] that pass the
// filter. A zero from or to leaves that side of the range open.
func (s *MemoryStore) Query(from, to time.Time, f func(models.SearchTermRow) bool) []models.SearchTermRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SearchTermRow, 0)
	for _, v := range s.rows {
		if !from.IsZero() && v.Date.Before(from) {
			continue
		}
		if !to.IsZero() && v.Date.After(to) {
			continue
		}
		if f == nil || f(*v) {
			out = append(out, *v)
		}
	}
	return out
}

// Bounds reports the earliest and latest row dates, for deriving the
// period length when the caller gave no explicit range.
func (s *MemoryStore) Bounds() (min, max time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.rows {
		if !ok || v.Date.Before(min) {
			min = v.Date
		}
		if !ok || v.Date.After(max) {
			max = v.Date
		}
		ok = true
	}
	return min, max, ok
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
