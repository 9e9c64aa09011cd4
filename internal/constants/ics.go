package constants

// iCalendar (RFC 5545) literal values shared across packages.
const (
	// Event status values
	StatusConfirmed = "CONFIRMED"
	StatusTentative = "TENTATIVE"
	StatusCancelled = "CANCELLED"

	// VTODO status values
	StatusNeedsAction = "NEEDS-ACTION"
	StatusCompleted   = "COMPLETED"
	StatusInProcess   = "IN-PROCESS"

	// VJOURNAL status values
	StatusDraft = "DRAFT"
	StatusFinal = "FINAL"

	// Time-transparency values
	TranspOpaque      = "OPAQUE"
	TranspTransparent = "TRANSPARENT"

	// Alarm action types
	AlarmActionDisplay = "DISPLAY"
	AlarmActionEmail   = "EMAIL"
	AlarmActionAudio   = "AUDIO"

	// iCalendar line folding limit (RFC 5545)
	ICalMaxLineLength = 75
)
