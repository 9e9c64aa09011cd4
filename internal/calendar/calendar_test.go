package calendar

import (
	"strings"
	"testing"

	"tempical/internal/instant"
	"tempical/internal/property"
	"tempical/internal/recur"
	"tempical/internal/timezone"
	"tempical/internal/value"
)

func mustProp(t *testing.T, line string) *property.Property {
	t.Helper()
	p, err := property.ParseLine(line, value.Default())
	if err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	p.BindTZID()
	return p
}

func newTestEvent(t *testing.T, lines ...string) *Component {
	t.Helper()
	e := NewComponent(TypeVEvent)
	for _, l := range lines {
		e.AddProperty(mustProp(t, l))
	}
	return e
}

func TestComponentOwnershipAndDuplicate(t *testing.T) {
	cal := NewCalendar()
	ev := newTestEvent(t, "UID:1@test", "DTSTAMP:20240101T000000Z", "SUMMARY:one")
	cal.AddComponent(ev)
	if ev.Parent() != cal {
		t.Error("parent link not set")
	}

	d := cal.Duplicate()
	if d.Parent() != nil {
		t.Error("duplicate should be detached")
	}
	dup := d.Components(TypeVEvent)[0]
	dup.FirstProperty("SUMMARY").SetValue(value.NewText("changed"))
	if got := ev.PropertyText("SUMMARY"); got != "one" {
		t.Errorf("duplicate shares property storage: %q", got)
	}

	cal.RemoveComponent(ev)
	if ev.Parent() != nil {
		t.Error("detach should clear parent")
	}
}

func TestValidateMissingRequired(t *testing.T) {
	ev := newTestEvent(t, "SUMMARY:no uid")
	_, unfixed := ev.Validate(false)
	if len(unfixed) < 2 {
		t.Fatalf("expected missing UID and DTSTAMP diagnostics, got %v", unfixed)
	}

	fixed, unfixed := ev.Validate(true)
	if len(fixed) != 2 {
		t.Fatalf("doFix should add UID and DTSTAMP, got fixed=%v unfixed=%v", fixed, unfixed)
	}
	if !ev.HasProperty("UID") || !ev.HasProperty("DTSTAMP") {
		t.Error("fix did not add the missing properties")
	}
}

func TestValidateDuplicateStatusKeepsCancelled(t *testing.T) {
	ev := newTestEvent(t,
		"UID:1@test", "DTSTAMP:20240101T000000Z",
		"STATUS:CONFIRMED", "STATUS:CANCELLED",
	)
	fixed, _ := ev.Validate(true)
	if len(fixed) == 0 {
		t.Fatal("expected a duplicate-STATUS fix")
	}
	if ev.CountProperty("STATUS") != 1 {
		t.Fatalf("STATUS count = %d", ev.CountProperty("STATUS"))
	}
	if got := ev.PropertyText("STATUS"); got != "CANCELLED" {
		t.Errorf("kept STATUS = %q, want CANCELLED", got)
	}
}

func TestValidateValueChecks(t *testing.T) {
	ev := newTestEvent(t,
		"UID:1@test",
		"DTSTAMP:20240101T000000",  // not UTC
		"PRIORITY:12",              // out of range
		"STATUS:SOMETHING",         // not allowed
		"SEQUENCE:-1",              // negative
	)
	_, unfixed := ev.Validate(false)
	if len(unfixed) != 4 {
		t.Fatalf("expected 4 diagnostics, got %v", unfixed)
	}
}

func TestEmissionOrderDeterministic(t *testing.T) {
	ev := newTestEvent(t,
		"SUMMARY:s", "DTSTART:20240101T090000Z", "UID:1@test",
		"DTSTAMP:20240101T000000Z", "LOCATION:here",
	)
	text := ev.Text()
	uidIdx := strings.Index(text, "UID:")
	dtstampIdx := strings.Index(text, "DTSTAMP:")
	dtstartIdx := strings.Index(text, "DTSTART:")
	locIdx := strings.Index(text, "LOCATION:")
	sumIdx := strings.Index(text, "SUMMARY:")
	if !(uidIdx < dtstampIdx && dtstampIdx < dtstartIdx && dtstartIdx < locIdx && locIdx < sumIdx) {
		t.Errorf("unexpected order:\n%s", text)
	}
}

func TestVTimezonePreservesRegimeOrder(t *testing.T) {
	tz := NewComponent(TypeVTimezone)
	tz.AddProperty(mustProp(t, "TZID:Test/Zone"))
	day := NewComponent(TypeDaylight)
	day.AddProperty(mustProp(t, "DTSTART:19870405T020000"))
	day.AddProperty(mustProp(t, "TZOFFSETFROM:-0500"))
	day.AddProperty(mustProp(t, "TZOFFSETTO:-0400"))
	std := NewComponent(TypeStandard)
	std.AddProperty(mustProp(t, "DTSTART:19671029T020000"))
	std.AddProperty(mustProp(t, "TZOFFSETFROM:-0400"))
	std.AddProperty(mustProp(t, "TZOFFSETTO:-0500"))
	tz.AddComponent(day)
	tz.AddComponent(std)

	text := tz.Text()
	if strings.Index(text, "BEGIN:DAYLIGHT") > strings.Index(text, "BEGIN:STANDARD") {
		t.Error("VTIMEZONE reordered its regimes")
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	rule, err := recur.Parse("FREQ=YEARLY;BYMONTH=3;BYDAY=2SU")
	if err != nil {
		t.Fatal(err)
	}
	start := instant.New(2007, 3, 11, 2, 0, 0)
	desc := &timezone.Descriptor{
		ID: "Test/East",
		Regimes: []*timezone.Regime{
			{
				Kind: timezone.Daylight, OffsetFrom: -18000, OffsetTo: -14400,
				Name: "EDT", Start: start,
				Recurrence: &recur.Set{DTStart: start, IncludeRules: []*recur.Rule{rule}},
			},
		},
	}
	comp := NewVTimezone(desc)
	if got := comp.PropertyText("TZID"); got != "Test/East" {
		t.Errorf("TZID = %q", got)
	}
	back, err := DescriptorFromVTimezone(comp)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Regimes) != 1 {
		t.Fatalf("regimes = %d", len(back.Regimes))
	}
	r := back.Regimes[0]
	if r.Kind != timezone.Daylight || r.OffsetFrom != -18000 || r.OffsetTo != -14400 || r.Name != "EDT" {
		t.Errorf("regime = %+v", r)
	}
	if r.Recurrence == nil || len(r.Recurrence.IncludeRules) != 1 {
		t.Fatal("recurrence lost in round trip")
	}
}

func TestRecurrenceSetFromProperties(t *testing.T) {
	ev := newTestEvent(t,
		"UID:1@test", "DTSTAMP:20240101T000000Z",
		"DTSTART:20240101T090000Z",
		"RRULE:FREQ=DAILY;COUNT=5",
		"EXDATE:20240103T090000Z",
	)
	ws := instant.New(2024, 1, 1, 0, 0, 0)
	we := instant.New(2024, 2, 1, 0, 0, 0)
	got, limited, err := ev.ExpandOccurrences(ws, we, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("instances = %d, want 4 (5 minus one EXDATE)", len(got))
	}
	for _, inst := range got {
		if inst.Day == 3 {
			t.Error("EXDATE not applied")
		}
	}
	if !limited {
		t.Error("COUNT-terminated stream should report limited")
	}
}

func TestIncludeMissingTimezones(t *testing.T) {
	db := timezone.NewDatabase()
	berlin := &timezone.Descriptor{
		ID: "Europe/Berlin",
		Regimes: []*timezone.Regime{{
			Kind: timezone.Standard, OffsetFrom: 3600, OffsetTo: 3600,
			Name: "CET", Start: instant.New(1996, 10, 27, 3, 0, 0),
		}},
	}
	db.Add(berlin)

	cal := NewCalendar()
	ev := newTestEvent(t,
		"UID:1@test", "DTSTAMP:20240101T000000Z",
		"DTSTART;TZID=Europe/Berlin:20240601T100000",
	)
	cal.AddComponent(ev)

	cal.IncludeMissingTimezones(db, NoTimezones)
	if len(cal.Components(TypeVTimezone)) != 0 {
		t.Error("NoTimezones must be a no-op")
	}

	cal.IncludeMissingTimezones(db, NonStandardTimezones)
	if len(cal.Components(TypeVTimezone)) != 0 {
		t.Error("Berlin is standard; NonStandardTimezones must not inject it")
	}

	cal.IncludeMissingTimezones(db, AllTimezones)
	tzs := cal.Components(TypeVTimezone)
	if len(tzs) != 1 {
		t.Fatalf("expected injected VTIMEZONE, got %d", len(tzs))
	}
	if cal.Components("")[0] != tzs[0] {
		t.Error("injected VTIMEZONE should sit at the top of the container")
	}

	// Idempotent: injecting again adds nothing.
	cal.IncludeMissingTimezones(db, AllTimezones)
	if len(cal.Components(TypeVTimezone)) != 1 {
		t.Error("second injection duplicated the VTIMEZONE")
	}
}

func TestMergeTimezonesIdempotent(t *testing.T) {
	a := NewCalendar()
	b := NewCalendar()
	tz := NewComponent(TypeVTimezone)
	tz.AddProperty(mustProp(t, "TZID:Test/Zone"))
	b.AddComponent(tz)

	a.MergeTimezones(b)
	a.MergeTimezones(b)
	if len(a.Components(TypeVTimezone)) != 1 {
		t.Errorf("merge not idempotent: %d", len(a.Components(TypeVTimezone)))
	}
}

func TestUntilPrecisionCoercion(t *testing.T) {
	ev := newTestEvent(t,
		"UID:1@test", "DTSTAMP:20240101T000000Z",
		"DTSTART:20240101T090000Z",
		"RRULE:FREQ=DAILY;UNTIL=20240105",
	)
	set := ev.RecurrenceSet()
	if set == nil || len(set.IncludeRules) != 1 {
		t.Fatal("missing rule")
	}
	until := set.IncludeRules[0].Until
	if until.DateOnly {
		t.Error("UNTIL should be coerced to date-time precision")
	}
	if until.Hour != 9 {
		t.Errorf("coerced UNTIL hour = %d, want 9", until.Hour)
	}
}
