package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahacrm/pulse/internal/fetch"
	"github.com/ahacrm/pulse/internal/kpi"
	"github.com/ahacrm/pulse/internal/snapshot"
	"github.com/ahacrm/pulse/internal/timewindow"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T, upstream http.HandlerFunc, triggerURL string) http.Handler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := fetch.NewClient(srv.URL, "k", 2*time.Second)
	snaps := snapshot.New(filepath.Join(t.TempDir(), "absent.json"), discard())
	fetcher := fetch.NewFetcher(client, snaps, 30*time.Second, discard())
	engine := kpi.NewEngine(fetcher, discard())
	trigger := fetch.NewTrigger(triggerURL, time.Second, discard())
	return NewRouter(discard(), fetcher, engine, trigger)
}

func upstreamWith(leadTime time.Time) http.HandlerFunc {
	body := fmt.Sprintf(`{
		"leads": [{"lead_id": "L-1", "created_time": %q}],
		"deals": [{"deal_id": "D-1", "stage": "Closed Won", "amount": 50000, "created_time": %q}],
		"metrics": [],
		"ai_table": [{"id": 1, "payload": {"aiSummary": {"text": "ok"}}, "created_at": %q}]
	}`, leadTime.Format(time.RFC3339), leadTime.Format(time.RFC3339), leadTime.Format(time.RFC3339))
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}
}

func TestPulseEndpoint(t *testing.T) {
	// A record created an hour ago falls in both Today and its baseline
	// fetch (which returns the same fixture).
	h := newHarness(t, upstreamWith(time.Now().UTC().Add(-time.Hour)), "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pulse?period=this_month", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Period string `json:"period"`
		Window struct {
			StartUTC string `json:"start_utc"`
			EndUTC   string `json:"end_utc"`
		} `json:"window"`
		KPIs struct {
			Leads    int    `json:"leads"`
			WonCount int    `json:"won_count"`
			RevWon   string `json:"rev_won"`
		} `json:"kpis"`
		Comparison *kpi.Comparison `json:"comparison"`
		AI         json.RawMessage `json:"ai"`
		Source     string          `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "This Month", resp.Period)
	assert.Equal(t, "live", resp.Source)
	assert.NotEmpty(t, resp.Window.StartUTC)
	assert.Empty(t, resp.Window.EndUTC, "This Month is open-ended")
	assert.Equal(t, 1, resp.KPIs.Leads)
	assert.Equal(t, 1, resp.KPIs.WonCount)
	assert.Equal(t, "50000", resp.KPIs.RevWon)
	assert.JSONEq(t, `{"aiSummary": {"text": "ok"}}`, string(resp.AI))
	require.NotNil(t, resp.Comparison, "This Month compares against Last Month")
	assert.Equal(t, timewindow.LastMonth, resp.Comparison.Baseline)
}

func TestPulseDefaultsToToday(t *testing.T) {
	h := newHarness(t, upstreamWith(time.Now().UTC().Add(-time.Minute)), "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pulse", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"period": "Today"`)
}

func TestPulseSkipsComparisonOnRequest(t *testing.T) {
	var calls atomic.Int32
	upstream := upstreamWith(time.Now().UTC().Add(-time.Minute))
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		upstream(w, r)
	}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pulse?period=today&compare=false", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"comparison"`)
	assert.Equal(t, int32(1), calls.Load(), "no baseline fetch when comparison is off")
}

func TestPulseRejectsUnknownPeriod(t *testing.T) {
	h := newHarness(t, upstreamWith(time.Now().UTC()), "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pulse?period=fortnight", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPulseNoDataIs503(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pulse?period=today", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRefreshClearsAndTriggers(t *testing.T) {
	var triggered atomic.Int32
	trig := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		triggered.Add(1)
	}))
	defer trig.Close()

	var fetches atomic.Int32
	upstream := upstreamWith(time.Now().UTC().Add(-time.Minute))
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		upstream(w, r)
	}, trig.URL)

	// Prime the short-lived cache.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pulse?period=all_time&compare=false", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"triggered": true`)
	assert.Equal(t, int32(1), triggered.Load())

	// The cleared cache forces a refetch on the next render.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pulse?period=all_time&compare=false", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, upstreamWith(time.Now().UTC()), "")
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
