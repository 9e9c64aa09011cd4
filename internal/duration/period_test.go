package duration

import (
	"testing"

	"tempical/internal/instant"
)

func TestPeriodContainsAndOverlap(t *testing.T) {
	start := instant.New(2024, 1, 1, 10, 0, 0)
	end := instant.New(2024, 1, 1, 11, 0, 0)
	p := NewWithEnd(start, end)

	if !p.Contains(start) {
		t.Errorf("period should contain its own start")
	}
	if p.Contains(end) {
		t.Errorf("period must be half-open: must not contain its own end")
	}

	other := NewWithEnd(instant.New(2024, 1, 1, 10, 30, 0), instant.New(2024, 1, 1, 12, 0, 0))
	if !p.Overlaps(other) {
		t.Errorf("overlapping periods must report Overlaps = true")
	}

	disjoint := NewWithEnd(instant.New(2024, 1, 1, 11, 0, 0), instant.New(2024, 1, 1, 12, 0, 0))
	if p.Overlaps(disjoint) {
		t.Errorf("half-open adjacent periods must not overlap")
	}
}

func TestPeriodDurationForm(t *testing.T) {
	start := instant.New(2024, 1, 1, 10, 0, 0)
	d, _ := Parse("PT1H", ModeRaise)
	p := NewWithDuration(start, d)
	if !p.UsesDuration() {
		t.Fatalf("expected UsesDuration() = true")
	}
	wantEnd := instant.New(2024, 1, 1, 11, 0, 0)
	if !p.End().StructuralEqual(wantEnd) {
		t.Errorf("End() = %+v, want %+v", p.End(), wantEnd)
	}
}
