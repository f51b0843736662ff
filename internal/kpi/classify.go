// Package kpi derives the fixed KPI bundle from filtered entities and
// compares it against the canonical previous period.
package kpi

import "strings"

// StageCategory is the classification of a free-text CRM deal stage.
type StageCategory int

const (
	StageOther StageCategory = iota
	StageWon
	StageLost
	StageNegotiation
	StageProposal
)

// Classify maps a stage to its bucket by case-insensitive substring match,
// first match wins: won, lost, negotiation, proposal. The stage vocabulary is
// owned by the external CRM, so this stays a substring policy rather than an
// enum; all matching rules live here and nowhere else.
func Classify(stage string) StageCategory {
	s := strings.ToLower(stage)
	switch {
	case strings.Contains(s, "closed won"):
		return StageWon
	case strings.Contains(s, "closed lost"):
		return StageLost
	case strings.Contains(s, "negotiation"):
		return StageNegotiation
	case strings.Contains(s, "proposal"), strings.Contains(s, "quote"):
		return StageProposal
	}
	return StageOther
}
