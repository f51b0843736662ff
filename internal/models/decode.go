package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// This file is the single ingestion boundary. Live responses and the local
// snapshot both decode through DecodePayload, so timestamp parsing and amount
// coercion happen exactly once, per record, with per-record recovery: a bad
// timestamp becomes nil, a bad amount becomes zero, and the record survives.

type rawLead struct {
	LeadID      string          `json:"lead_id"`
	OwnerName   string          `json:"owner_name"`
	Status      string          `json:"status"`
	Source      string          `json:"source"`
	IsConverted bool            `json:"is_converted"`
	CreatedTime json.RawMessage `json:"created_time"`
}

type rawDeal struct {
	DealID       string          `json:"deal_id"`
	LeadID       string          `json:"lead_id"`
	DealName     string          `json:"deal_name"`
	OwnerName    string          `json:"owner_name"`
	Stage        string          `json:"stage"`
	Source       string          `json:"source"`
	Amount       json.RawMessage `json:"amount"`
	CreatedTime  json.RawMessage `json:"created_time"`
	ModifiedTime json.RawMessage `json:"modified_time"`
	ClosedTime   json.RawMessage `json:"closed_time"`
}

type rawSummary struct {
	NewLeadsToday      json.RawMessage `json:"new_leads_today"`
	LeadsContacted     json.RawMessage `json:"leads_contacted"`
	QualifiedLeads     json.RawMessage `json:"qualified_leads"`
	DemosScheduled     json.RawMessage `json:"demos_scheduled"`
	DemosHeld          json.RawMessage `json:"demos_held"`
	ProposalsSent      json.RawMessage `json:"proposals_sent"`
	NegotiationsActive json.RawMessage `json:"negotiations_active"`
	DealsClosed        json.RawMessage `json:"deals_closed"`
	DealAmountWon      json.RawMessage `json:"deal_amount_won"`
	DealAmountLost     json.RawMessage `json:"deal_amount_lost"`
	UpdatedAt          json.RawMessage `json:"updated_at"`
}

type rawAISummary struct {
	ID        json.RawMessage `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt json.RawMessage `json:"created_at"`
}

type rawPayload struct {
	Leads   []rawLead      `json:"leads"`
	Deals   []rawDeal      `json:"deals"`
	Metrics []rawSummary   `json:"metrics"`
	AITable []rawAISummary `json:"ai_table"`
}

// DecodePayload decodes one full entity payload (live response body or the
// snapshot document) into typed records.
func DecodePayload(b []byte) (*Payload, error) {
	var raw rawPayload
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	p := &Payload{
		Leads:   make([]Lead, 0, len(raw.Leads)),
		Deals:   make([]Deal, 0, len(raw.Deals)),
		Metrics: make([]DailySummary, 0, len(raw.Metrics)),
		AI:      make([]AISummary, 0, len(raw.AITable)),
	}
	for _, r := range raw.Leads {
		p.Leads = append(p.Leads, Lead{
			ID:        strings.TrimSpace(r.LeadID),
			OwnerName: strings.TrimSpace(r.OwnerName),
			Status:    strings.TrimSpace(r.Status),
			Source:    strings.TrimSpace(r.Source),
			Converted: r.IsConverted,
			CreatedAt: coerceTime(r.CreatedTime),
		})
	}
	for _, r := range raw.Deals {
		p.Deals = append(p.Deals, Deal{
			ID:         strings.TrimSpace(r.DealID),
			LeadID:     strings.TrimSpace(r.LeadID),
			Name:       strings.TrimSpace(r.DealName),
			OwnerName:  strings.TrimSpace(r.OwnerName),
			Stage:      strings.TrimSpace(r.Stage),
			Source:     strings.TrimSpace(r.Source),
			Amount:     coerceAmount(r.Amount),
			CreatedAt:  coerceTime(r.CreatedTime),
			ModifiedAt: coerceTime(r.ModifiedTime),
			ClosedAt:   coerceTime(r.ClosedTime),
		})
	}
	for _, r := range raw.Metrics {
		p.Metrics = append(p.Metrics, DailySummary{
			NewLeadsToday:      coerceInt(r.NewLeadsToday),
			LeadsContacted:     coerceInt(r.LeadsContacted),
			QualifiedLeads:     coerceInt(r.QualifiedLeads),
			DemosScheduled:     coerceInt(r.DemosScheduled),
			DemosHeld:          coerceInt(r.DemosHeld),
			ProposalsSent:      coerceInt(r.ProposalsSent),
			NegotiationsActive: coerceInt(r.NegotiationsActive),
			DealsClosed:        coerceInt(r.DealsClosed),
			DealAmountWon:      coerceAmount(r.DealAmountWon),
			DealAmountLost:     coerceAmount(r.DealAmountLost),
			UpdatedAt:          coerceTime(r.UpdatedAt),
		})
	}
	for _, r := range raw.AITable {
		p.AI = append(p.AI, AISummary{
			ID:        rawString(r.ID),
			Payload:   r.Payload,
			CreatedAt: coerceTime(r.CreatedAt),
		})
	}
	return p, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerceTime parses an upstream timestamp. Stored values are UTC; layouts
// without an offset are taken as UTC. Anything unparsable becomes nil.
func coerceTime(raw json.RawMessage) *time.Time {
	s := rawString(raw)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// coerceAmount accepts a JSON number or a numeric string and clamps to a
// non-negative decimal. Invalid or missing values become zero.
func coerceAmount(raw json.RawMessage) decimal.Decimal {
	s := rawString(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func coerceInt(raw json.RawMessage) int {
	d := coerceAmount(raw)
	return int(d.IntPart())
}

// rawString unquotes a JSON scalar; null and non-scalars become "".
func rawString(raw json.RawMessage) string {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return ""
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	if b[0] == '{' || b[0] == '[' {
		return ""
	}
	return string(b)
}
