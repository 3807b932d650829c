package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/fantacourt/valuation-api/internal/models"
)

func day(n int) time.Time {
	return time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func entriesWithScores(scores []*float64) []models.LedgerEntry {
	entries := make([]models.LedgerEntry, len(scores))
	for i, s := range scores {
		entries[i] = models.LedgerEntry{
			GameID:     string(rune('a' + i)),
			AthleteID:  "p1",
			Date:       day(i),
			FantaScore: s,
		}
	}
	return entries
}

func TestRecurrenceBootstrapPriority(t *testing.T) {
	// Supplied bootstrap wins over the first-score/2 fallback.
	entries := entriesWithScores([]*float64{models.Float64Ptr(20)})
	ApplyRecurrence(entries, models.Float64Ptr(12))

	if entries[0].ValueBefore != 12 {
		t.Fatalf("value_before = %v, want 12 (bootstrap)", entries[0].ValueBefore)
	}
}

func TestRecurrenceBootstrapFallbackHalfFirstScore(t *testing.T) {
	entries := entriesWithScores([]*float64{models.Float64Ptr(20)})
	ApplyRecurrence(entries, nil)

	if entries[0].ValueBefore != 10 {
		t.Fatalf("value_before = %v, want 10 (first score / 2)", entries[0].ValueBefore)
	}
	// gain = 0.025*20 - 0.045*10 = 0.05
	if math.Abs(entries[0].Gain-0.05) > 1e-12 {
		t.Fatalf("gain = %v, want 0.05", entries[0].Gain)
	}
	if math.Abs(entries[0].ValueAfter-10.05) > 1e-12 {
		t.Fatalf("value_after = %v, want 10.05", entries[0].ValueAfter)
	}
}

func TestRecurrenceBootstrapFallbackDefault(t *testing.T) {
	// No bootstrap, first game not played: default 4.0 and the flat -0.1
	// decay floor-clamped right back to 4.0 until a real score appears.
	entries := entriesWithScores([]*float64{nil, nil, models.Float64Ptr(40)})
	ApplyRecurrence(entries, nil)

	if entries[0].ValueBefore != 4.0 {
		t.Fatalf("first value_before = %v, want default 4.0", entries[0].ValueBefore)
	}
	for i := 0; i < 2; i++ {
		if entries[i].Gain != -0.1 {
			t.Errorf("entry %d gain = %v, want -0.1", i, entries[i].Gain)
		}
		if entries[i].ValueAfter != 4.0 {
			t.Errorf("entry %d value_after = %v, want floor 4.0", i, entries[i].ValueAfter)
		}
	}
	// gain = 0.025*40 - 0.045*4 = 1 - 0.18 = 0.82
	if math.Abs(entries[2].Gain-0.82) > 1e-12 {
		t.Fatalf("entry 2 gain = %v, want 0.82", entries[2].Gain)
	}
}

func TestRecurrenceChainingInvariant(t *testing.T) {
	entries := entriesWithScores([]*float64{
		models.Float64Ptr(30), nil, models.Float64Ptr(12), models.Float64Ptr(55), nil, nil,
	})
	ApplyRecurrence(entries, models.Float64Ptr(9))

	for i := 0; i+1 < len(entries); i++ {
		if entries[i].ValueAfter != entries[i+1].ValueBefore {
			t.Fatalf("chaining broken at %d: value_after %v != next value_before %v",
				i, entries[i].ValueAfter, entries[i+1].ValueBefore)
		}
	}
	for i, e := range entries {
		if e.ValueAfter < FloorValue {
			t.Fatalf("entry %d value_after %v below floor", i, e.ValueAfter)
		}
	}
}

func TestRecurrenceSortsByDate(t *testing.T) {
	// Entries arriving out of order must still fold in date order.
	entries := []models.LedgerEntry{
		{GameID: "g2", AthleteID: "p1", Date: day(1), FantaScore: models.Float64Ptr(10)},
		{GameID: "g1", AthleteID: "p1", Date: day(0), FantaScore: models.Float64Ptr(40)},
	}
	ApplyRecurrence(entries, nil)

	if entries[0].GameID != "g1" {
		t.Fatalf("entries not sorted by date, first is %s", entries[0].GameID)
	}
	// Fallback uses the chronologically first score: 40/2 = 20.
	if entries[0].ValueBefore != 20 {
		t.Fatalf("value_before = %v, want 20", entries[0].ValueBefore)
	}
}

func TestRecurrenceEmpty(t *testing.T) {
	ApplyRecurrence(nil, nil) // must not panic
	ApplyRecurrence([]models.LedgerEntry{}, models.Float64Ptr(5))
}

func TestRecurrenceFloorFromBelow(t *testing.T) {
	// A terrible score can push value below the floor; it clamps at 4.0.
	entries := entriesWithScores([]*float64{models.Float64Ptr(-50)})
	ApplyRecurrence(entries, models.Float64Ptr(4.2))

	// gain = 0.025*(-50) - 0.045*4.2 = -1.25 - 0.189 = -1.439
	if math.Abs(entries[0].Gain-(-1.439)) > 1e-12 {
		t.Fatalf("gain = %v, want -1.439", entries[0].Gain)
	}
	if entries[0].ValueAfter != 4.0 {
		t.Fatalf("value_after = %v, want clamped 4.0", entries[0].ValueAfter)
	}
}
