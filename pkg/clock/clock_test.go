package clock

import (
	"testing"
	"time"
)

func TestSystem_IsUTC(t *testing.T) {
	if loc := System().Now().Location(); loc != time.UTC {
		t.Fatalf("location = %v, want UTC", loc)
	}
}

func TestManual_SetAndAdvance(t *testing.T) {
	start := time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)
	m := NewManual(start)
	if !m.Now().Equal(start) {
		t.Fatalf("Now = %v, want %v", m.Now(), start)
	}
	got := m.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !got.Equal(want) || !m.Now().Equal(want) {
		t.Fatalf("Advance = %v, want %v", got, want)
	}
	later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	m.Set(later)
	if m.Now().Location() != time.UTC || !m.Now().Equal(later) {
		t.Fatalf("Set did not normalize: %v", m.Now())
	}
}
