package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahacrm/pulse/internal/models"
	"github.com/ahacrm/pulse/internal/timewindow"
)

func at(year int, month time.Month, day, hour, min int) *time.Time {
	t := time.Date(year, month, day, hour, min, 0, 0, timewindow.BusinessZone).UTC()
	return &t
}

func TestTodayExcludesFutureDatedLeads(t *testing.T) {
	// Three leads created 08:00, 13:00 and 23:30 business-time today;
	// the clock reads 14:00. The 23:30 lead is future-dated and must not
	// count toward the open-ended Today window.
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, timewindow.BusinessZone)
	leads := []models.Lead{
		{ID: "a", CreatedAt: at(2026, 3, 15, 8, 0)},
		{ID: "b", CreatedAt: at(2026, 3, 15, 13, 0)},
		{ID: "c", CreatedAt: at(2026, 3, 15, 23, 30)},
	}
	w := timewindow.Resolve(timewindow.Today, now)

	got := Leads(leads, w, now.UTC())
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestFilterIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	w := timewindow.Resolve(timewindow.ThisMonth, now)
	leads := []models.Lead{
		{ID: "in", CreatedAt: at(2026, 3, 2, 10, 0)},
		{ID: "out", CreatedAt: at(2026, 2, 2, 10, 0)},
	}

	once := Leads(leads, w, now)
	twice := Leads(once, w, now)
	assert.Equal(t, once, twice)
}

func TestDealLeadAsymmetry(t *testing.T) {
	// A deal created outside the window but closed inside it is in; an
	// equivalent lead is out. The asymmetry is load-bearing for the
	// dashboard's figures.
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	w := timewindow.Resolve(timewindow.ThisMonth, now)

	created := at(2026, 1, 10, 9, 0) // before the window
	closed := at(2026, 3, 10, 9, 0)  // inside it

	deals := Deals([]models.Deal{{ID: "d", CreatedAt: created, ClosedAt: closed}}, w, now)
	assert.Len(t, deals, 1, "deal counts by any touched timestamp")

	leads := Leads([]models.Lead{{ID: "l", CreatedAt: created}}, w, now)
	assert.Empty(t, leads, "lead counts by created_time only")
}

func TestDealModifiedTimeCounts(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	w := timewindow.Resolve(timewindow.ThisMonth, now)

	d := models.Deal{
		ID:         "d",
		CreatedAt:  at(2025, 11, 1, 9, 0),
		ModifiedAt: at(2026, 3, 5, 9, 0),
	}
	assert.Len(t, Deals([]models.Deal{d}, w, now), 1)
}

func TestNilTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	bounded := timewindow.Resolve(timewindow.Yesterday, now)
	allTime := timewindow.Resolve(timewindow.AllTime, now)

	assert.False(t, InWindow(nil, bounded, now), "nil excluded from bounded windows")
	assert.True(t, InWindow(nil, allTime, now), "nil included under All Time")

	// A deal whose only timestamps are nil never matches a bounded window.
	d := models.Deal{ID: "d"}
	assert.Empty(t, Deals([]models.Deal{d}, bounded, now))
	assert.Len(t, Deals([]models.Deal{d}, allTime, now), 1)
}

func TestHalfOpenEndBound(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	w := timewindow.Resolve(timewindow.Yesterday, now)

	assert.True(t, InWindow(w.Start, w, now))
	assert.False(t, InWindow(w.End, w, now))
}
