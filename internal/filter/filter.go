// Package filter applies a resolved window to fetched entities. The upstream
// query endpoint filters too, but only with a lower bound, so results are
// always re-filtered here.
package filter

import (
	"time"

	"github.com/ahacrm/pulse/internal/models"
	"github.com/ahacrm/pulse/internal/timewindow"
)

// InWindow is the membership test for an optional timestamp. An unset end
// bound means "up to the current moment", so now substitutes for it —
// future-dated records never count toward an open-ended period. A nil
// timestamp (missing or unparsable upstream value) is excluded from any
// bounded window and included only under the unbounded All Time window.
func InWindow(t *time.Time, w timewindow.Window, now time.Time) bool {
	if t == nil {
		return w.Unbounded()
	}
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	end := now
	if w.End != nil {
		end = *w.End
	}
	return t.Before(end)
}

// Leads keeps leads created inside the window. Leads are immutable records:
// created_time is the only timestamp that counts.
func Leads(leads []models.Lead, w timewindow.Window, now time.Time) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if InWindow(l.CreatedAt, w, now) {
			out = append(out, l)
		}
	}
	return out
}

// Deals keeps deals touched during the window: created, modified, or closed
// inside it. This is deliberately looser than the lead rule — the dashboard's
// figures depend on the "touched during period" semantic. Inherited policy;
// flagged to the domain owners as a possible inconsistency, not fixed here.
func Deals(deals []models.Deal, w timewindow.Window, now time.Time) []models.Deal {
	out := make([]models.Deal, 0, len(deals))
	for _, d := range deals {
		if InWindow(d.CreatedAt, w, now) || InWindow(d.ModifiedAt, w, now) || InWindow(d.ClosedAt, w, now) {
			out = append(out, d)
		}
	}
	return out
}
