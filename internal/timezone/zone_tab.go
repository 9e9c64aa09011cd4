package timezone

// standardZoneNames is the set of IANA zone identifiers treated as
// "standard": zones shipped by the reference zoneinfo distribution.
// Anything else (vendor-invented or user-defined TZIDs) classifies as
// non-standard and is a candidate for VTIMEZONE injection even in
// NonStandardTimezones mode.
var standardZoneNames = []string{
	"Africa/Abidjan", "Africa/Accra", "Africa/Algiers", "Africa/Cairo",
	"Africa/Casablanca", "Africa/Ceuta", "Africa/Johannesburg", "Africa/Lagos",
	"Africa/Nairobi", "Africa/Tripoli", "Africa/Tunis",

	"America/Anchorage", "America/Argentina/Buenos_Aires", "America/Bogota",
	"America/Campo_Grande", "America/Caracas", "America/Chicago",
	"America/Denver", "America/Edmonton", "America/Halifax", "America/Havana",
	"America/Lima", "America/Los_Angeles", "America/Mexico_City",
	"America/Montevideo", "America/New_York", "America/Phoenix",
	"America/Santiago", "America/Sao_Paulo", "America/St_Johns",
	"America/Toronto", "America/Vancouver", "America/Winnipeg",

	"Antarctica/McMurdo",

	"Asia/Almaty", "Asia/Baghdad", "Asia/Baku", "Asia/Bangkok", "Asia/Beirut",
	"Asia/Dhaka", "Asia/Dubai", "Asia/Ho_Chi_Minh", "Asia/Hong_Kong",
	"Asia/Jakarta", "Asia/Jerusalem", "Asia/Kabul", "Asia/Karachi",
	"Asia/Kathmandu", "Asia/Kolkata", "Asia/Kuala_Lumpur", "Asia/Manila",
	"Asia/Riyadh", "Asia/Seoul", "Asia/Shanghai", "Asia/Singapore",
	"Asia/Taipei", "Asia/Tashkent", "Asia/Tehran", "Asia/Tokyo",
	"Asia/Yangon", "Asia/Yerevan",

	"Atlantic/Azores", "Atlantic/Canary", "Atlantic/Reykjavik",

	"Australia/Adelaide", "Australia/Brisbane", "Australia/Darwin",
	"Australia/Hobart", "Australia/Melbourne", "Australia/Perth",
	"Australia/Sydney",

	"Europe/Amsterdam", "Europe/Athens", "Europe/Belgrade", "Europe/Berlin",
	"Europe/Brussels", "Europe/Bucharest", "Europe/Budapest",
	"Europe/Copenhagen", "Europe/Dublin", "Europe/Helsinki",
	"Europe/Istanbul", "Europe/Kyiv", "Europe/Lisbon", "Europe/London",
	"Europe/Madrid", "Europe/Moscow", "Europe/Oslo", "Europe/Paris",
	"Europe/Prague", "Europe/Riga", "Europe/Rome", "Europe/Sofia",
	"Europe/Stockholm", "Europe/Tallinn", "Europe/Vienna", "Europe/Vilnius",
	"Europe/Warsaw", "Europe/Zurich",

	"Indian/Maldives", "Indian/Mauritius",

	"Pacific/Auckland", "Pacific/Fiji", "Pacific/Guam", "Pacific/Honolulu",
	"Pacific/Tongatapu",

	"UTC",
}
