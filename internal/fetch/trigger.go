package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Trigger fires the best-effort upstream refresh signal. The response is
// ignored and failures are swallowed; the caller only learns whether the
// signal went out.
type Trigger struct {
	httpc *http.Client
	url   string
	log   *slog.Logger
}

func NewTrigger(url string, timeout time.Duration, log *slog.Logger) *Trigger {
	return &Trigger{
		httpc: &http.Client{Timeout: timeout},
		url:   url,
		log:   log,
	}
}

func (t *Trigger) Fire(ctx context.Context) bool {
	if t.url == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, nil)
	if err != nil {
		return false
	}
	resp, err := t.httpc.Do(req)
	if err != nil {
		t.log.Warn("refresh trigger unreachable", slog.String("err", err.Error()))
		return false
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.log.Warn("refresh trigger rejected", slog.Int("status", resp.StatusCode))
		return false
	}
	return true
}
