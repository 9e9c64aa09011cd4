// Package i18n holds the static weekday and month name tables used when
// rendering human-readable timezone descriptors and validation diagnostics.
// The library does not localize beyond these fixed English tables.
package i18n

// Weekday names indexed 0=Sunday..6=Saturday, matching caldate.Weekday.
var WeekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// WeekdayAbbrev holds the two-letter RFC5545 BYDAY codes, same indexing as WeekdayNames.
var WeekdayAbbrev = [7]string{
	"SU", "MO", "TU", "WE", "TH", "FR", "SA",
}

// MonthNames indexed 1=January..12=December; index 0 is unused.
var MonthNames = [13]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// WeekdayFromAbbrev returns the 0=Sunday..6=Saturday index for a two-letter
// RFC5545 day code, and false if abbrev is not one of the seven codes.
func WeekdayFromAbbrev(abbrev string) (int, bool) {
	for i, a := range WeekdayAbbrev {
		if a == abbrev {
			return i, true
		}
	}
	return 0, false
}
