package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Field names follow the upstream Supabase tables (crm_leads, crm_deals,
// daily_metrics_summary, ai_summaries). All timestamps are stored in UTC;
// a nil timestamp means the upstream value was missing or unparsable.

type Lead struct {
	ID        string
	OwnerName string
	Status    string
	Source    string
	Converted bool
	CreatedAt *time.Time
}

type Deal struct {
	ID         string
	LeadID     string
	Name       string
	OwnerName  string
	Stage      string // free text, classified by substring in kpi
	Source     string
	Amount     decimal.Decimal
	CreatedAt  *time.Time
	ModifiedAt *time.Time
	ClosedAt   *time.Time
}

// DailySummary is the precomputed daily_metrics_summary row written by the
// external batch process. It is authoritative only for the Today period.
type DailySummary struct {
	NewLeadsToday      int
	LeadsContacted     int
	QualifiedLeads     int
	DemosScheduled     int
	DemosHeld          int
	ProposalsSent      int
	NegotiationsActive int
	DealsClosed        int
	DealAmountWon      decimal.Decimal
	DealAmountLost     decimal.Decimal
	UpdatedAt          *time.Time
}

type AISummary struct {
	ID        string
	Payload   json.RawMessage
	CreatedAt *time.Time
}

// Payload is one full entity fetch: every table the dashboard reads, decoded
// through the single ingestion boundary in decode.go.
type Payload struct {
	Leads   []Lead
	Deals   []Deal
	Metrics []DailySummary
	AI      []AISummary
}

// LatestAI returns the payload of the newest AI summary row, or nil. Rows
// without created_at are considered only when no dated row exists.
func (p *Payload) LatestAI() json.RawMessage {
	var best *AISummary
	for i := range p.AI {
		r := &p.AI[i]
		if r.CreatedAt == nil {
			continue
		}
		if best == nil || r.CreatedAt.After(*best.CreatedAt) {
			best = r
		}
	}
	if best == nil && len(p.AI) > 0 {
		best = &p.AI[0]
	}
	if best == nil {
		return nil
	}
	return best.Payload
}

// KPISet is the fixed derived metrics bundle, the uniform shape for both the
// requested period and its comparison baseline.
type KPISet struct {
	Leads      int             `json:"leads"`
	WonCount   int             `json:"won_count"`
	RevWon     decimal.Decimal `json:"rev_won"`
	RevLost    decimal.Decimal `json:"rev_lost"`
	RevTouched decimal.Decimal `json:"rev_touched"`
	WinRate    float64         `json:"win_rate"`
	Nego       int             `json:"nego"`
	Prop       int             `json:"prop"`
	AvgDeal    decimal.Decimal `json:"avg_deal"`
}
