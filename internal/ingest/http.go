package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// fetchJSON fetches a source URL through the response cache, retrying
// transient failures with the configured backoff. A hit inside the TTL
// window never touches the network, so re-running an ingest shortly after
// the last one is cheap.
func (e *ETL) fetchJSON(ctx context.Context, category, url string, dst any) error {
	if b, ok := e.cache.Get(category, url); ok {
		e.m.CacheHits.Inc()
		return json.Unmarshal(b, dst)
	}
	e.m.CacheMisses.Inc()

	var body []byte
	err := e.bo.Do(func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := e.c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return err
	}
	e.cache.Set(category, url, body)
	return json.Unmarshal(body, dst)
}
