package timezone

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tempical/internal/instant"
	"tempical/internal/recur"
)

// usEastern builds a descriptor with the post-2007 US eastern rules:
// standard time UTC-5, daylight UTC-4, spring forward second Sunday of
// March, fall back first Sunday of November.
func usEastern(t *testing.T) *Descriptor {
	t.Helper()
	dayRule, err := recur.Parse("FREQ=YEARLY;BYMONTH=3;BYDAY=2SU")
	if err != nil {
		t.Fatal(err)
	}
	stdRule, err := recur.Parse("FREQ=YEARLY;BYMONTH=11;BYDAY=1SU")
	if err != nil {
		t.Fatal(err)
	}
	dayStart := instant.New(2007, 3, 11, 2, 0, 0)
	stdStart := instant.New(2007, 11, 4, 2, 0, 0)
	return &Descriptor{
		ID: "America/New_York",
		Regimes: []*Regime{
			{
				Kind: Daylight, OffsetFrom: -18000, OffsetTo: -14400, Name: "EDT",
				Start:      dayStart,
				Recurrence: &recur.Set{DTStart: dayStart, IncludeRules: []*recur.Rule{dayRule}},
			},
			{
				Kind: Standard, OffsetFrom: -14400, OffsetTo: -18000, Name: "EST",
				Start:      stdStart,
				Recurrence: &recur.Set{DTStart: stdStart, IncludeRules: []*recur.Rule{stdRule}},
			},
		},
	}
}

func TestOffsetAcrossSpringForward(t *testing.T) {
	d := usEastern(t)

	tests := []struct {
		name          string
		at            instant.Instant
		relativeToUTC bool
		want          int
	}{
		{"winter wall time", instant.New(2024, 1, 15, 12, 0, 0), false, -18000},
		{"summer wall time", instant.New(2024, 6, 15, 12, 0, 0), false, -14400},
		{"before transition wall", instant.New(2024, 3, 10, 1, 59, 59), false, -18000},
		{"after transition wall", instant.New(2024, 3, 10, 2, 30, 0), false, -14400},
		{"before transition utc", instant.New(2024, 3, 10, 6, 59, 59), true, -18000},
		{"at transition utc", instant.New(2024, 3, 10, 7, 0, 0), true, -14400},
		{"fall back wall", instant.New(2024, 11, 3, 2, 0, 0), false, -18000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.OffsetSeconds(tt.at, tt.relativeToUTC)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("offset = %d, want %d", got, tt.want)
			}
		})
	}
}

// The sandwich property: one second before a transition's local
// instant the old offset applies; at the post-transition wall instant
// the new offset applies.
func TestTransitionSandwich(t *testing.T) {
	d := usEastern(t)
	// Spring 2024: transition at local 02:00 (old wall), 07:00Z.
	before := instant.New(2024, 3, 10, 1, 59, 59)
	after := instant.New(2024, 3, 10, 3, 0, 0) // 07:00Z + new offset
	offBefore, err := d.OffsetSeconds(before, false)
	if err != nil {
		t.Fatal(err)
	}
	offAfter, err := d.OffsetSeconds(after, false)
	if err != nil {
		t.Fatal(err)
	}
	if offBefore != -18000 || offAfter != -14400 {
		t.Errorf("sandwich = %d / %d", offBefore, offAfter)
	}
}

func TestOffsetBeforeAnyTransition(t *testing.T) {
	d := usEastern(t)
	got, err := d.OffsetSeconds(instant.New(1900, 6, 1, 0, 0, 0), false)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("pre-history offset = %d, want 0", got)
	}
}

func TestNameAt(t *testing.T) {
	d := usEastern(t)
	name, err := d.NameAt(instant.New(2024, 6, 15, 12, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if name != "EDT" {
		t.Errorf("summer name = %q", name)
	}
	name, err = d.NameAt(instant.New(2024, 1, 15, 12, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if name != "EST" {
		t.Errorf("winter name = %q", name)
	}
}

func TestNameSynthesised(t *testing.T) {
	d := &Descriptor{
		ID: "Fixed/Zone",
		Regimes: []*Regime{{
			Kind: Standard, OffsetFrom: 19800, OffsetTo: 19800,
			Start: instant.New(1950, 1, 1, 0, 0, 0),
		}},
	}
	name, err := d.NameAt(instant.New(2024, 6, 1, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if name != "+0530" {
		t.Errorf("synthesised name = %q", name)
	}
}

func TestExpandTransitionsSorted(t *testing.T) {
	d := usEastern(t)
	ts, err := d.ExpandTransitions(instant.New(2023, 1, 1, 0, 0, 0), instant.New(2026, 1, 1, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 6 {
		t.Fatalf("transitions = %d, want 6 (two per year over three years)", len(ts))
	}
	for i := 1; i < len(ts); i++ {
		if !ts[i-1].UTC.Before(ts[i].UTC) {
			t.Error("transitions not sorted by UTC")
		}
	}
	// Alternating offsets.
	for i, tr := range ts {
		wantTo := -14400
		if i%2 == 1 {
			wantTo = -18000
		}
		if tr.OffsetTo != wantTo {
			t.Errorf("transition %d offsetTo = %d, want %d", i, tr.OffsetTo, wantTo)
		}
	}
}

func TestDatabaseMergeIdempotent(t *testing.T) {
	db := NewDatabase()
	a := &Descriptor{ID: "Zone/A"}
	db.Merge([]*Descriptor{a})
	replacement := &Descriptor{ID: "Zone/A", Regimes: []*Regime{{}}}
	db.Merge([]*Descriptor{replacement})
	got, err := db.Get("Zone/A")
	if err != nil {
		t.Fatal(err)
	}
	if got != a {
		t.Error("merge replaced an existing descriptor")
	}
}

func TestDatabaseAlias(t *testing.T) {
	db := NewDatabase()
	db.Add(&Descriptor{ID: "Europe/Oslo"})
	db.AddAlias("Arctic/Longyearbyen", "Europe/Oslo")
	got, err := db.Get("Arctic/Longyearbyen")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "Europe/Oslo" {
		t.Errorf("alias resolved to %q", got.ID)
	}
}

func TestPathConfinement(t *testing.T) {
	root := t.TempDir()
	// Plant a file outside the root that an escape would reach.
	outside := filepath.Join(filepath.Dir(root), "secret.ics")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := false
	db := NewDatabase()
	db.SetRoot(root)
	db.SetLoader(func(path string) ([]*Descriptor, error) {
		loaded = true
		return nil, nil
	})

	for _, tzid := range []string{"../secret", "a/../../secret", "/etc/passwd"} {
		_, err := db.Get(tzid)
		var nf *NoTimezoneError
		if !errors.As(err, &nf) {
			t.Errorf("Get(%q) error = %v, want NoTimezoneError", tzid, err)
		}
	}
	if loaded {
		t.Error("loader invoked for an escaping path")
	}
}

func TestDatabaseOnDemandLoad(t *testing.T) {
	root := t.TempDir()
	db := NewDatabase()
	db.SetRoot(root)
	db.SetLoader(func(path string) ([]*Descriptor, error) {
		if filepath.Base(path) != "Zone.ics" {
			t.Errorf("unexpected path %q", path)
		}
		return []*Descriptor{{ID: "Test/Zone"}}, nil
	})
	// The loader keys on the file path; the database indexes whatever
	// descriptors come back.
	got, err := db.Get("Test/Zone")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "Test/Zone" {
		t.Errorf("loaded %q", got.ID)
	}
}

func TestIsStandard(t *testing.T) {
	db := NewDatabase()
	if !db.IsStandard("Europe/Berlin") {
		t.Error("Berlin should classify standard")
	}
	if db.IsStandard("My/Custom_Zone") {
		t.Error("unknown zone should classify non-standard")
	}
}

func TestOffsetCacheReset(t *testing.T) {
	d := usEastern(t)
	if _, err := d.OffsetSeconds(instant.New(2024, 6, 1, 0, 0, 0), false); err != nil {
		t.Fatal(err)
	}
	if len(d.offsetCache) == 0 {
		t.Fatal("lookup did not memoise")
	}
	d.ClearCache()
	if d.cachedTransitions != nil || d.offsetCache != nil {
		t.Error("ClearCache left state behind")
	}
}
