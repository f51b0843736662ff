package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ahacrm/pulse/internal/models"
	"github.com/ahacrm/pulse/internal/timewindow"
)

// Client queries the live dashboard-data endpoint. The service key rides in
// both the Authorization and apikey headers, the upstream store's convention.
type Client struct {
	httpc   *http.Client
	dataURL string
	key     string
}

func NewClient(dataURL, key string, timeout time.Duration) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		dataURL: dataURL,
		key:     key,
	}
}

// FetchWindow requests all entity sets for one resolved window. The request
// carries the period label plus the UTC bounds (empty when unbounded); the
// upstream does its own range filtering, which the caller re-applies locally
// rather than trusting.
func (c *Client) FetchWindow(ctx context.Context, p timewindow.Period, w timewindow.Window) (*models.Payload, error) {
	q := url.Values{}
	q.Set("range_label", string(p))
	q.Set("start_utc", w.StartParam())
	q.Set("end_utc", w.EndParam())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dataURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &Error{
			Kind:   KindStatus,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("body=%s", string(b)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), Err: err}
	}
	payload, err := models.DecodePayload(body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	return payload, nil
}

func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
