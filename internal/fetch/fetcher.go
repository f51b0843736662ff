// Package fetch owns the period data path: resolve the window, query the live
// endpoint, fall back to the local snapshot, and cache the result briefly so
// repeated renders of the same period don't refetch.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahacrm/pulse/internal/models"
	"github.com/ahacrm/pulse/internal/snapshot"
	"github.com/ahacrm/pulse/internal/timewindow"
	"github.com/ahacrm/pulse/internal/utils"
)

// Provenance records where a result came from, so degraded data can be shown
// as degraded instead of passing for live.
type Provenance string

const (
	Live   Provenance = "live"
	Cached Provenance = "cache"
)

// Result is one period fetch: the full entity payload, the resolved window it
// was fetched against, and where it came from.
type Result struct {
	Payload    *models.Payload
	Window     timewindow.Window
	Provenance Provenance
	FetchedAt  time.Time
}

type Fetcher struct {
	client *Client
	snaps  *snapshot.Cache
	cache  *resultCache
	retry  utils.Backoff
	log    *slog.Logger
	now    func() time.Time
}

func NewFetcher(client *Client, snaps *snapshot.Cache, ttl time.Duration, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		snaps:  snaps,
		cache:  newResultCache(ttl),
		retry:  utils.NewBackoff(100*time.Millisecond, 1),
		log:    log,
		now:    time.Now,
	}
}

// Fetch returns the entity sets for a period, live when possible, from the
// snapshot when not. Both outcomes are cached for the TTL. When the live
// source fails and no snapshot exists the error wraps ErrNoData; an empty
// result is never fabricated.
func (f *Fetcher) Fetch(ctx context.Context, p timewindow.Period) (Result, error) {
	if r, ok := f.cache.Get(p); ok {
		cacheHits.Inc()
		return r, nil
	}

	w := timewindow.Resolve(p, f.now())

	var payload *models.Payload
	start := f.now()
	liveErr := f.retry.Do(ctx, func(i int) error {
		var err error
		payload, err = f.client.FetchWindow(ctx, p, w)
		if err != nil && i > 0 {
			f.log.Debug("live fetch retry failed", slog.Int("attempt", i), slog.String("err", err.Error()))
		}
		return err
	})
	fetchDuration.Observe(f.now().Sub(start).Seconds())

	if liveErr == nil {
		r := Result{Payload: payload, Window: w, Provenance: Live, FetchedAt: f.now()}
		f.cache.Put(p, r)
		fetchTotal.WithLabelValues(string(p), string(Live)).Inc()
		return r, nil
	}

	var fe *Error
	if errors.As(liveErr, &fe) {
		fetchErrors.WithLabelValues(string(fe.Kind)).Inc()
	}
	f.log.Warn("live fetch failed, trying snapshot",
		slog.String("period", string(p)),
		slog.String("err", liveErr.Error()))

	snap, err := f.snaps.Load()
	if err != nil {
		// Parse failure is fatal for the request; it must not pass for
		// an absent snapshot.
		return Result{}, err
	}
	if snap == nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoData, liveErr)
	}

	r := Result{Payload: snap, Window: w, Provenance: Cached, FetchedAt: f.now()}
	f.cache.Put(p, r)
	fetchTotal.WithLabelValues(string(p), string(Cached)).Inc()
	return r, nil
}

// Clear invalidates the short-lived result cache so the next request for any
// period refetches regardless of expiry.
func (f *Fetcher) Clear() {
	f.cache.Clear()
}
