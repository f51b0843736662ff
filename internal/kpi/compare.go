package kpi

import (
	"context"
	"log/slog"
	"math"

	"github.com/ahacrm/pulse/internal/fetch"
	"github.com/ahacrm/pulse/internal/models"
	"github.com/ahacrm/pulse/internal/timewindow"
)

// Delta is one KPI's period-over-period movement. ChangePct is set when the
// baseline value is nonzero; Absolute carries the raw "+N" gain when the
// baseline was zero, avoiding the infinite-percent artifact.
type Delta struct {
	Current   float64  `json:"current"`
	Previous  float64  `json:"previous"`
	ChangePct *float64 `json:"change_pct,omitempty"`
	Absolute  *float64 `json:"absolute,omitempty"`
}

// Comparison is the full delta bundle against the canonical baseline period.
type Comparison struct {
	Baseline timewindow.Period `json:"baseline"`
	Deltas   map[string]Delta  `json:"deltas"`
}

// Engine resolves a period's baseline and re-runs the fetch/filter/aggregate
// pipeline for it independently of the primary request.
type Engine struct {
	fetcher *fetch.Fetcher
	log     *slog.Logger
}

func NewEngine(fetcher *fetch.Fetcher, log *slog.Logger) *Engine {
	return &Engine{fetcher: fetcher, log: log}
}

// Compare returns the deltas against the previous period, or nil when the
// period has no baseline or the baseline fetch fails. Baseline failure never
// fails the primary request; the comparison just degrades to absent.
func (e *Engine) Compare(ctx context.Context, p timewindow.Period, current models.KPISet) *Comparison {
	prev, ok := p.Previous()
	if !ok {
		return nil
	}
	res, err := e.fetcher.Fetch(ctx, prev)
	if err != nil {
		e.log.Warn("baseline fetch failed, comparison unavailable",
			slog.String("period", string(p)),
			slog.String("baseline", string(prev)),
			slog.String("err", err.Error()))
		return nil
	}
	baseline := Build(prev, res.Payload, res.Window, res.FetchedAt)
	return Diff(prev, current, baseline)
}

// Diff computes the per-KPI deltas of current against a baseline KPI set.
func Diff(baseline timewindow.Period, current, previous models.KPISet) *Comparison {
	cmp := &Comparison{Baseline: baseline, Deltas: make(map[string]Delta, 9)}
	for _, f := range kpiFields(current, previous) {
		cmp.Deltas[f.name] = newDelta(f.cur, f.prev)
	}
	return cmp
}

type kpiField struct {
	name      string
	cur, prev float64
}

func kpiFields(cur, prev models.KPISet) []kpiField {
	return []kpiField{
		{"leads", float64(cur.Leads), float64(prev.Leads)},
		{"won_count", float64(cur.WonCount), float64(prev.WonCount)},
		{"rev_won", cur.RevWon.InexactFloat64(), prev.RevWon.InexactFloat64()},
		{"rev_lost", cur.RevLost.InexactFloat64(), prev.RevLost.InexactFloat64()},
		{"rev_touched", cur.RevTouched.InexactFloat64(), prev.RevTouched.InexactFloat64()},
		{"win_rate", cur.WinRate, prev.WinRate},
		{"nego", float64(cur.Nego), float64(prev.Nego)},
		{"prop", float64(cur.Prop), float64(prev.Prop)},
		{"avg_deal", cur.AvgDeal.InexactFloat64(), prev.AvgDeal.InexactFloat64()},
	}
}

func newDelta(cur, prev float64) Delta {
	d := Delta{Current: cur, Previous: prev}
	switch {
	case prev != 0:
		pct := math.Round((cur-prev)/prev*100*10) / 10
		d.ChangePct = &pct
	case cur > 0:
		abs := cur
		d.Absolute = &abs
	}
	return d
}
