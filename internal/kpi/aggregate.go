package kpi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahacrm/pulse/internal/filter"
	"github.com/ahacrm/pulse/internal/models"
	"github.com/ahacrm/pulse/internal/timewindow"
)

var hundred = decimal.NewFromInt(100)

// Aggregate derives the KPI set from an already-filtered entity slice pair.
// For the exact period Today with a daily summary row present, the counted
// and summed fields come from the summary (the batch process is authoritative
// for today); rev_touched, win_rate and avg_deal are always derived.
func Aggregate(p timewindow.Period, leads []models.Lead, deals []models.Deal, summary *models.DailySummary) models.KPISet {
	k := models.KPISet{
		RevWon:     decimal.Zero,
		RevLost:    decimal.Zero,
		RevTouched: decimal.Zero,
		AvgDeal:    decimal.Zero,
	}

	for _, d := range deals {
		k.RevTouched = k.RevTouched.Add(d.Amount)
	}

	if p == timewindow.Today && summary != nil {
		k.Leads = summary.NewLeadsToday
		k.WonCount = summary.DealsClosed
		k.RevWon = summary.DealAmountWon
		k.RevLost = summary.DealAmountLost
		k.Nego = summary.NegotiationsActive
		k.Prop = summary.ProposalsSent
	} else {
		k.Leads = len(leads)
		for _, d := range deals {
			switch Classify(d.Stage) {
			case StageWon:
				k.WonCount++
				k.RevWon = k.RevWon.Add(d.Amount)
			case StageLost:
				k.RevLost = k.RevLost.Add(d.Amount)
			case StageNegotiation:
				k.Nego++
			case StageProposal:
				k.Prop++
			}
		}
	}

	if total := k.RevWon.Add(k.RevLost); total.IsPositive() {
		k.WinRate, _ = k.RevWon.Div(total).Mul(hundred).Float64()
	}
	if k.WonCount > 0 {
		k.AvgDeal = k.RevWon.Div(decimal.NewFromInt(int64(k.WonCount))).Round(2)
	}
	return k
}

// Build runs filter and aggregation over one fetch result. now closes the
// open end of unbounded-forward windows; callers pass the fetch instant so a
// cached result filters the same way every render. The daily summary row is
// consulted only when the period is Today.
func Build(p timewindow.Period, payload *models.Payload, w timewindow.Window, now time.Time) models.KPISet {
	leads := filter.Leads(payload.Leads, w, now)
	deals := filter.Deals(payload.Deals, w, now)
	var summary *models.DailySummary
	if len(payload.Metrics) > 0 {
		summary = &payload.Metrics[0]
	}
	return Aggregate(p, leads, deals, summary)
}
