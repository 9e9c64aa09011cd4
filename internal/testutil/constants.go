package testutil

// Common test constants shared across test files.
const (
	// Common timezone names used in tests
	TZAmericaNewYork = "America/New_York"
	TZEuropeMadrid   = "Europe/Madrid"
	TZEuropeLondon   = "Europe/London"
	TZEuropeBerlin   = "Europe/Berlin"
	TZAsiaTokyo      = "Asia/Tokyo"
	TZInvalid        = "Invalid/Timezone"

	// SampleCalendarText is a canonical-order VCALENDAR used by the
	// three format adapters' round-trip tests: property and component
	// order already match the emission contract, so text round trips
	// byte-exact.
	SampleCalendarText = "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//test//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:1@test\r\n" +
		"DTSTAMP:20240101T000000Z\r\n" +
		"DTSTART;TZID=America/New_York:20240310T013000\r\n" +
		"RRULE:FREQ=DAILY;COUNT=3\r\n" +
		"SUMMARY:Morning sync\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	// SampleVCardText is a minimal vCard in canonical order.
	SampleVCardText = "BEGIN:VCARD\r\n" +
		"VERSION:3.0\r\n" +
		"FN:John Public\r\n" +
		"N:Public;John;;;\r\n" +
		"ADR;TYPE=HOME:;;123 Main Street;Any Town;CA;91921-1234;\r\n" +
		"EMAIL:jdoe@example.com\r\n" +
		"ORG:Example Corp;Engineering\r\n" +
		"END:VCARD\r\n"
)
