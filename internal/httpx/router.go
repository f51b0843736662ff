package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahacrm/pulse/internal/fetch"
	"github.com/ahacrm/pulse/internal/kpi"
	"github.com/ahacrm/pulse/internal/models"
	"github.com/ahacrm/pulse/internal/snapshot"
	"github.com/ahacrm/pulse/internal/timewindow"
	"github.com/ahacrm/pulse/internal/utils"
)

type pulseResponse struct {
	Period     string          `json:"period"`
	Window     windowJSON      `json:"window"`
	KPIs       models.KPISet   `json:"kpis"`
	Comparison *kpi.Comparison `json:"comparison,omitempty"`
	AI         json.RawMessage `json:"ai,omitempty"`
	Source     string          `json:"source"`
	FetchedAt  time.Time       `json:"fetched_at"`
}

type windowJSON struct {
	StartUTC string `json:"start_utc"`
	EndUTC   string `json:"end_utc"`
}

func NewRouter(log *slog.Logger, fetcher *fetch.Fetcher, engine *kpi.Engine, trigger *fetch.Trigger) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/api/pulse", func(w http.ResponseWriter, r *http.Request) {
		label := r.URL.Query().Get("period")
		if label == "" {
			label = string(timewindow.Today)
		}
		period, err := timewindow.ParsePeriod(label)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res, err := fetcher.Fetch(r.Context(), period)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, fetch.ErrNoData) {
				status = http.StatusServiceUnavailable
			}
			var pe *snapshot.ParseError
			if errors.As(err, &pe) {
				log.Error("snapshot corrupt", slog.String("err", pe.Error()))
			}
			http.Error(w, err.Error(), status)
			return
		}

		kpis := kpi.Build(period, res.Payload, res.Window, res.FetchedAt)

		resp := pulseResponse{
			Period: string(period),
			Window: windowJSON{
				StartUTC: res.Window.StartParam(),
				EndUTC:   res.Window.EndParam(),
			},
			KPIs:      kpis,
			AI:        res.Payload.LatestAI(),
			Source:    string(res.Provenance),
			FetchedAt: res.FetchedAt,
		}
		if r.URL.Query().Get("compare") != "false" {
			resp.Comparison = engine.Compare(r.Context(), period, kpis)
		}
		writeJSON(w, resp)
	})

	mux.Post("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		fetcher.Clear()
		ok := trigger.Fire(r.Context())
		writeJSON(w, map[string]any{"cleared": true, "triggered": ok})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
