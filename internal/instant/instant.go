// Package instant implements the library's civil-timestamp-plus-zone-
// binding data model: the shared type underlying date/date-time
// values, periods, recurrence rule DTSTART/UNTIL, and timezone regime
// activation instants.
package instant

import "tempical/internal/caldate"

// Binding selects how an Instant relates to UTC.
type Binding int

const (
	// BindingFloating has no timezone: compared structurally, never converted.
	BindingFloating Binding = iota
	BindingUTC
	BindingNamed       // bound to a TZID, resolved via the timezone engine
	BindingFixedOffset // a literal signed UTC-offset in seconds
)

// Instant is a local-civil timestamp plus a zone binding. It caches no
// POSIX seconds: LocalPosix recomputes them on every call. Instant is
// treated as a value type everywhere in this library rather than
// mutated in place.
type Instant struct {
	Year, Month, Day       int
	Hour, Minute, Second   int
	DateOnly               bool
	Binding                Binding
	TZID                   string // valid when Binding == BindingNamed
	OffsetSeconds          int    // valid when Binding == BindingFixedOffset
}

// New builds a floating Instant (no zone binding).
func New(year, month, day, hour, minute, second int) Instant {
	return Instant{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}
}

// NewDate builds a date-only floating Instant with a zeroed time-of-day.
func NewDate(year, month, day int) Instant {
	return Instant{Year: year, Month: month, Day: day, DateOnly: true}
}

// UTC returns a copy bound to UTC.
func (i Instant) UTC() Instant {
	i.Binding = BindingUTC
	i.TZID = ""
	return i
}

// Named returns a copy bound to the given TZID.
func (i Instant) Named(tzid string) Instant {
	i.Binding = BindingNamed
	i.TZID = tzid
	return i
}

// FixedOffset returns a copy bound to a literal UTC offset in seconds.
func (i Instant) FixedOffset(seconds int) Instant {
	i.Binding = BindingFixedOffset
	i.OffsetSeconds = seconds
	i.TZID = ""
	return i
}

// Floating reports whether the instant carries no zone binding.
func (i Instant) Floating() bool { return i.Binding == BindingFloating }

// Valid reports whether the civil fields are in range: 1<=M<=12,
// 1<=D<=daysInMonth(M,Y), 0<=h<=23 (23:59:59 permitted as an
// end-of-day boundary encoding), 0<=m,s<=59.
func (i Instant) Valid() bool {
	if i.Month < 1 || i.Month > 12 {
		return false
	}
	if i.Day < 1 || i.Day > caldate.DaysInMonth(i.Year, i.Month) {
		return false
	}
	if i.Hour < 0 || i.Hour > 23 {
		return false
	}
	if i.Minute < 0 || i.Minute > 59 || i.Second < 0 || i.Second > 59 {
		return false
	}
	return true
}

// LocalPosix returns the POSIX-seconds encoding of the civil fields,
// ignoring the zone binding entirely (a "naive" conversion used as the
// comparison/sort key for structural ordering within one zone, and as
// the wall-clock input to the timezone engine).
func (i Instant) LocalPosix() int64 {
	return caldate.ToPosixSeconds(i.Year, i.Month, i.Day, i.Hour, i.Minute, i.Second)
}

// AddSeconds returns a new Instant with delta seconds added to the
// civil fields, cascading/normalising via caldate.
func (i Instant) AddSeconds(delta int64) Instant {
	y, mo, d, h, mi, s := caldate.FromPosixSeconds(i.LocalPosix() + delta)
	i.Year, i.Month, i.Day, i.Hour, i.Minute, i.Second = y, mo, d, h, mi, s
	return i
}

// Weekday returns 0=Sunday..6=Saturday for the civil date.
func (i Instant) Weekday() int {
	return caldate.DayOfWeek(i.Year, i.Month, i.Day)
}

// StructuralEqual compares all fields directly, including the zone
// binding, with no conversion to a common UTC axis.
func (i Instant) StructuralEqual(o Instant) bool {
	return i.Year == o.Year && i.Month == o.Month && i.Day == o.Day &&
		i.Hour == o.Hour && i.Minute == o.Minute && i.Second == o.Second &&
		i.DateOnly == o.DateOnly && i.Binding == o.Binding &&
		i.TZID == o.TZID && i.OffsetSeconds == o.OffsetSeconds
}

// Compare orders two instants by their local POSIX value, usable for
// sorting instants that share a zone binding (e.g. within one
// recurrence expansion). It does not resolve different TZIDs to a
// common UTC axis; callers needing cross-zone ordering must convert
// via the timezone engine first.
func (i Instant) Compare(o Instant) int {
	a, b := i.LocalPosix(), o.LocalPosix()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether i sorts strictly before o under Compare.
func (i Instant) Before(o Instant) bool { return i.Compare(o) < 0 }
