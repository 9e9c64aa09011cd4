package caldate

import "testing"

func TestIsLeapYear(t *testing.T) {
	cases := []struct {
		year int
		want bool
	}{
		{1700, true},  // Julian rule: divisible by 4
		{1752, true},  // pivot year, Julian rule
		{1800, false}, // Gregorian rule: divisible by 100, not 400
		{2000, true},  // Gregorian rule: divisible by 400
		{2024, true},
		{2023, false},
	}
	for _, c := range cases {
		if got := IsLeapYear(c.year); got != c.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", c.year, got, c.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	if DaysInMonth(2024, 2) != 29 {
		t.Fatalf("expected 29 days in Feb 2024")
	}
	if DaysInMonth(2023, 2) != 28 {
		t.Fatalf("expected 28 days in Feb 2023")
	}
	if DaysInMonth(2024, 4) != 30 {
		t.Fatalf("expected 30 days in April")
	}
}

func TestPosixRoundTrip(t *testing.T) {
	cases := [][6]int{
		{2024, 3, 10, 1, 30, 0},
		{1970, 1, 1, 0, 0, 0},
		{1999, 12, 31, 23, 59, 59},
		{1800, 1, 1, 0, 0, 0},
	}
	for _, c := range cases {
		posix := ToPosixSeconds(c[0], c[1], c[2], c[3], c[4], c[5])
		y, mo, d, h, mi, s := FromPosixSeconds(posix)
		if [6]int{y, mo, d, h, mi, s} != c {
			t.Errorf("round trip for %v got %v (posix=%d)", c, [6]int{y, mo, d, h, mi, s}, posix)
		}
	}
}

func TestEpochIsZero(t *testing.T) {
	if got := ToPosixSeconds(1970, 1, 1, 0, 0, 0); got != 0 {
		t.Fatalf("epoch should be 0, got %d", got)
	}
}

func TestDayOfWeekKnownDate(t *testing.T) {
	// 2024-03-10 is a Sunday.
	if got := DayOfWeek(2024, 3, 10); got != Sunday {
		t.Errorf("DayOfWeek(2024,3,10) = %d, want Sunday", got)
	}
	// 2000-01-01 is a Saturday.
	if got := DayOfWeek(2000, 1, 1); got != Saturday {
		t.Errorf("DayOfWeek(2000,1,1) = %d, want Saturday", got)
	}
}

func TestAddMonthsClamp(t *testing.T) {
	y, m, d := AddMonths(2024, 1, 31, 1)
	if y != 2024 || m != 2 || d != 29 {
		t.Errorf("AddMonths(2024-01-31, +1) = %d-%d-%d, want 2024-02-29", y, m, d)
	}
}

func TestNthWeekdayOfMonth(t *testing.T) {
	// Last Friday of Jan 2024 is Jan 26.
	day, ok := NthWeekdayOfMonth(2024, 1, Friday, -1)
	if !ok || day != 26 {
		t.Errorf("NthWeekdayOfMonth(2024,1,Friday,-1) = (%d,%v), want (26,true)", day, ok)
	}
	// Last Friday of Feb 2024 is Feb 23.
	day, ok = NthWeekdayOfMonth(2024, 2, Friday, -1)
	if !ok || day != 23 {
		t.Errorf("NthWeekdayOfMonth(2024,2,Friday,-1) = (%d,%v), want (23,true)", day, ok)
	}
}

func TestNextWeekdayOnOrAfter(t *testing.T) {
	// Second Sunday of March 2024 (US DST rule): Sun>=8 in March.
	day, ok := NextWeekdayOnOrAfter(2024, 3, Sunday, 8)
	if !ok || day != 10 {
		t.Errorf("NextWeekdayOnOrAfter(2024,3,Sunday,8) = (%d,%v), want (10,true)", day, ok)
	}
}
