package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smendez/searchgram/internal/ingest"
	"github.com/smendez/searchgram/internal/insights"
	"github.com/smendez/searchgram/internal/utils"
)

func NewRouter(log *slog.Logger, etl *ingest.ETL, svc *insights.Service, reg *prometheus.Registry) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("since")
		var since *time.Time
		if q != "" {
			if t, err := time.Parse("2006-01-02", q); err == nil {
				since = &t
			}
		}
		if err := etl.Run(r.Context(), since); err != nil {
			http.Error(w, err.Error(), 502)
			return
		}
		w.WriteHeader(202)
		w.Write([]byte("ingest started"))
	})

	mux.Get("/insights/ngrams", func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.NGrams(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, rows)
	})

	mux.Get("/insights/kpis", func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.KPIs(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, sum)
	})

	mux.Get("/insights/negatives", func(w http.ResponseWriter, r *http.Request) {
		terms, err := svc.Negatives(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, terms)
	})

	mux.Get("/insights/negatives.csv", func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.NegativesCSV(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="negatives.csv"`)
		w.Write(b)
	})

	mux.Post("/export/run", func(w http.ResponseWriter, r *http.Request) {
		terms, err := svc.Negatives(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		n, err := etl.ExportNegatives(r.Context(), terms)
		if err != nil {
			http.Error(w, err.Error(), 502)
			return
		}
		writeJSON(w, map[string]any{"exported": n})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
