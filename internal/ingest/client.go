package ingest

import (
	"net/http"
	"time"
)

// HTTPClient is the minimal client surface, satisfied by *http.Client and
// by test fakes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}
