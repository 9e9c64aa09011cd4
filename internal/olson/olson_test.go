package olson

import (
	"strings"
	"testing"

	"tempical/internal/instant"
	"tempical/internal/timezone"
)

const usEasternSource = `
# Simplified post-2007 US rules.
Rule	US	2007	max	-	Mar	Sun>=8	2:00	1:00	D
Rule	US	2007	max	-	Nov	Sun>=1	2:00	0	S

Zone	America/New_York	-5:00	US	E%sT

Link	America/New_York	US/Eastern
`

func parseSource(t *testing.T, src string) *Set {
	t.Helper()
	s := NewSet()
	if err := s.Parse(strings.NewReader(src), "test"); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseRuleLine(t *testing.T) {
	s := parseSource(t, usEasternSource)
	rules := s.Rules["US"]
	if len(rules) != 2 {
		t.Fatalf("rules = %d", len(rules))
	}
	dst := rules[0]
	if dst.FromYear != 2007 || dst.ToYear != MaxYear {
		t.Errorf("years = %d..%d", dst.FromYear, dst.ToYear)
	}
	if dst.InMonth != 3 {
		t.Errorf("month = %d", dst.InMonth)
	}
	if dst.OnDay.Kind != DayOnOrAfter || dst.OnDay.Day != 8 || dst.OnDay.Weekday != 0 {
		t.Errorf("on-day = %+v", dst.OnDay)
	}
	if dst.AtSecs != 2*3600 || dst.AtRef != WallClock {
		t.Errorf("at = %d ref %d", dst.AtSecs, dst.AtRef)
	}
	if dst.SaveSecs != 3600 || dst.Letter != "D" {
		t.Errorf("save = %d letter %q", dst.SaveSecs, dst.Letter)
	}
}

func TestParseZoneAndLink(t *testing.T) {
	s := parseSource(t, usEasternSource)
	z, ok := s.Zones["America/New_York"]
	if !ok {
		t.Fatal("zone missing")
	}
	if len(z.Rules) != 1 || z.Rules[0].GMTOffSecs != -5*3600 || z.Rules[0].RuleRef != "US" {
		t.Errorf("zone rules = %+v", z.Rules[0])
	}
	if s.Links["US/Eastern"] != "America/New_York" {
		t.Errorf("links = %v", s.Links)
	}
}

func TestParseZoneContinuation(t *testing.T) {
	src := `
Zone	Europe/Test	1:00	-	CET	1996 Oct 27 3:00
	1:00	EU	CE%sT
Rule	EU	1996	max	-	Oct	lastSun	1:00u	0	-
Rule	EU	1981	max	-	Mar	lastSun	1:00u	1:00	S
`
	s := parseSource(t, src)
	z := s.Zones["Europe/Test"]
	if len(z.Rules) != 2 {
		t.Fatalf("segments = %d", len(z.Rules))
	}
	if z.Rules[0].Until == nil || z.Rules[0].Until.Year != 1996 || z.Rules[0].Until.Month != 10 {
		t.Errorf("until = %+v", z.Rules[0].Until)
	}
	if z.Rules[1].RuleRef != "EU" {
		t.Errorf("continuation = %+v", z.Rules[1])
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"Bogus line here",
		"Rule US 2007", // too few fields
		"\t1:00 - CET", // continuation with no zone
	} {
		s := NewSet()
		if err := s.Parse(strings.NewReader(src), "bad"); err == nil {
			t.Errorf("no error for %q", src)
		}
	}
}

func TestExpandZoneTransitions(t *testing.T) {
	s := parseSource(t, usEasternSource)
	ts, err := s.ExpandZone("America/New_York", 2023, 2025)
	if err != nil {
		t.Fatal(err)
	}
	var spring, fall []Transition
	for _, tr := range ts {
		if tr.Rule == nil {
			continue
		}
		if tr.Rule.SaveSecs > 0 {
			spring = append(spring, tr)
		} else {
			fall = append(fall, tr)
		}
	}
	if len(spring) != 3 || len(fall) != 3 {
		t.Fatalf("spring %d fall %d", len(spring), len(fall))
	}
	// 2024: DST begins March 10 at 07:00Z (02:00 EST wall clock).
	got := spring[1]
	if got.UTC.Month != 3 || got.UTC.Day != 10 || got.UTC.Hour != 7 {
		t.Errorf("spring 2024 UTC = %+v", got.UTC)
	}
	if got.Local.Hour != 2 {
		t.Errorf("spring local hour = %d", got.Local.Hour)
	}
	if got.OffsetFrom != -5*3600 || got.OffsetTo != -4*3600 {
		t.Errorf("offsets = %d -> %d", got.OffsetFrom, got.OffsetTo)
	}
	if got.Name != "EDT" {
		t.Errorf("name = %q", got.Name)
	}
	// Fall back: November 3 2024 at 06:00Z (02:00 EDT wall clock).
	gotFall := fall[1]
	if gotFall.UTC.Month != 11 || gotFall.UTC.Day != 3 || gotFall.UTC.Hour != 6 {
		t.Errorf("fall 2024 UTC = %+v", gotFall.UTC)
	}
	if gotFall.Name != "EST" {
		t.Errorf("fall name = %q", gotFall.Name)
	}
}

func TestExpandZoneThroughLink(t *testing.T) {
	s := parseSource(t, usEasternSource)
	if _, err := s.ExpandZone("US/Eastern", 2023, 2024); err != nil {
		t.Fatal(err)
	}
}

func TestCompileZoneEmitsYearlyRules(t *testing.T) {
	s := parseSource(t, usEasternSource)
	d, err := s.CompileZone("America/New_York", 2007, 2030)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "America/New_York" {
		t.Errorf("id = %q", d.ID)
	}

	var daylight, standard *timezone.Regime
	for _, r := range d.Regimes {
		if r.Recurrence == nil || len(r.Recurrence.IncludeRules) == 0 {
			continue
		}
		switch r.Kind {
		case timezone.Daylight:
			daylight = r
		case timezone.Standard:
			standard = r
		}
	}
	if daylight == nil || standard == nil {
		t.Fatalf("missing recurring regimes: %+v", d.Regimes)
	}

	rule := daylight.Recurrence.IncludeRules[0]
	text := rule.Text(func(i instant.Instant) string { return "" })
	if !strings.Contains(text, "FREQ=YEARLY") || !strings.Contains(text, "BYMONTH=3") {
		t.Errorf("daylight rule = %q", text)
	}
	// Sun>=8 is the second Sunday.
	if !strings.Contains(text, "BYDAY=2SU") {
		t.Errorf("daylight by-day = %q", text)
	}
	if rule.UseUntil {
		t.Error("open-ended rule should carry no UNTIL")
	}
	if daylight.OffsetFrom != -5*3600 || daylight.OffsetTo != -4*3600 {
		t.Errorf("daylight offsets = %d -> %d", daylight.OffsetFrom, daylight.OffsetTo)
	}
	if daylight.Name != "EDT" || standard.Name != "EST" {
		t.Errorf("names = %q / %q", daylight.Name, standard.Name)
	}

	stdText := standard.Recurrence.IncludeRules[0].Text(func(i instant.Instant) string { return "" })
	if !strings.Contains(stdText, "BYMONTH=11") || !strings.Contains(stdText, "BYDAY=1SU") {
		t.Errorf("standard rule = %q", stdText)
	}
}

func TestCompiledDescriptorAnswersOffsets(t *testing.T) {
	s := parseSource(t, usEasternSource)
	d, err := s.CompileZone("America/New_York", 2007, 2030)
	if err != nil {
		t.Fatal(err)
	}
	off, err := d.OffsetSeconds(instant.New(2024, 6, 15, 12, 0, 0), false)
	if err != nil {
		t.Fatal(err)
	}
	if off != -4*3600 {
		t.Errorf("summer offset = %d", off)
	}
	off, err = d.OffsetSeconds(instant.New(2024, 1, 15, 12, 0, 0), false)
	if err != nil {
		t.Fatal(err)
	}
	if off != -5*3600 {
		t.Errorf("winter offset = %d", off)
	}
}

func TestOrdinalDayMapsToByMonthDay(t *testing.T) {
	src := `
Rule	Fix	1990	2000	-	Apr	15	2:00	1:00	S
Rule	Fix	1990	2000	-	Oct	15	2:00	0	-
Zone	Test/Fixed	3:00	Fix	T%sT
`
	s := parseSource(t, src)
	d, err := s.CompileZone("Test/Fixed", 1990, 2010)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, r := range d.Regimes {
		if r.Recurrence == nil || len(r.Recurrence.IncludeRules) == 0 {
			continue
		}
		rule := r.Recurrence.IncludeRules[0]
		if len(rule.ByMonthDay) == 1 && rule.ByMonthDay[0] == 15 {
			found = true
			if !rule.UseUntil {
				t.Error("bounded rule set should carry UNTIL")
			}
		}
	}
	if !found {
		t.Error("no BYMONTHDAY=15 rule emitted")
	}
}

func TestLastDayMapsToMinusOne(t *testing.T) {
	src := `
Rule	EU	1981	max	-	Mar	lastSun	1:00u	1:00	S
Rule	EU	1996	max	-	Oct	lastSun	1:00u	0	-
Zone	Europe/Test	1:00	EU	CE%sT
`
	s := parseSource(t, src)
	d, err := s.CompileZone("Europe/Test", 2000, 2030)
	if err != nil {
		t.Fatal(err)
	}
	var sawLast bool
	for _, r := range d.Regimes {
		if r.Recurrence == nil || len(r.Recurrence.IncludeRules) == 0 {
			continue
		}
		rule := r.Recurrence.IncludeRules[0]
		for _, w := range rule.ByDay {
			if w.Ordinal == -1 && w.Weekday == 0 {
				sawLast = true
			}
		}
	}
	if !sawLast {
		t.Error("lastSun did not map to BYDAY=-1SU")
	}
}

func TestRDateCompression(t *testing.T) {
	// A zone whose rule fires in scattered single years produces
	// one-activation runs; those sharing offsets and name must merge.
	src := `
Rule	Odd	1950	only	-	May	1	2:00	1:00	-
Rule	Odd	1955	only	-	Jun	1	2:00	1:00	-
Rule	Odd	1951	only	-	Oct	1	2:00	0	-
Rule	Odd	1956	only	-	Oct	1	2:00	0	-
Zone	Test/Odd	2:00	Odd	TO%sT
`
	s := parseSource(t, src)
	d, err := s.CompileZone("Test/Odd", 1949, 1960)
	if err != nil {
		t.Fatal(err)
	}
	daylightCount := 0
	for _, r := range d.Regimes {
		if r.Kind == timezone.Daylight {
			daylightCount++
		}
	}
	if daylightCount != 1 {
		t.Errorf("daylight regimes after compression = %d, want 1", daylightCount)
	}
}
