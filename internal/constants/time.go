package constants

// Time conversion constants
const (
	// Seconds
	SecondsPerMinute = 60
	SecondsPerHour   = 3600
	SecondsPerDay    = 86400
	SecondsPerWeek   = 7 * 86400

	// Minutes
	MinutesPerHour = 60
	MinutesPerDay  = 1440

	// Hours
	HoursPerDay = 24
	DaysPerWeek = 7
)
