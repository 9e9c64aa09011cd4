package property

import (
	"tempical/internal/utils"
	"tempical/internal/value"
)

// The per-dialect type tables: the declared default value kind for a
// property name, the multi-valued names (comma-separated sequences),
// the special variants (a structured in-memory shape regardless of the
// declared VALUE type), and the names whose VALUE parameter is written
// even when it equals the default.

var icalDefaults = map[string]value.Kind{
	"CALSCALE": value.KindText, "METHOD": value.KindText, "PRODID": value.KindText,
	"VERSION": value.KindText,

	"ATTACH": value.KindURI, "CATEGORIES": value.KindText, "CLASS": value.KindText,
	"COMMENT": value.KindText, "DESCRIPTION": value.KindText, "GEO": value.KindFloat,
	"LOCATION": value.KindText, "PERCENT-COMPLETE": value.KindInteger,
	"PRIORITY": value.KindInteger, "RESOURCES": value.KindText, "STATUS": value.KindText,
	"SUMMARY": value.KindText,

	"COMPLETED": value.KindDateTime, "DTEND": value.KindDateTime, "DUE": value.KindDateTime,
	"DTSTART": value.KindDateTime, "DURATION": value.KindDuration,
	"FREEBUSY": value.KindPeriod, "TRANSP": value.KindText,

	"TZID": value.KindText, "TZNAME": value.KindText, "TZOFFSETFROM": value.KindUTCOffset,
	"TZOFFSETTO": value.KindUTCOffset, "TZURL": value.KindURI,

	"ATTENDEE": value.KindCalAddress, "CONTACT": value.KindText,
	"ORGANIZER": value.KindCalAddress, "RECURRENCE-ID": value.KindDateTime,
	"RELATED-TO": value.KindText, "URL": value.KindURI, "UID": value.KindText,

	"EXDATE": value.KindDateTime, "EXRULE": value.KindRecur, "RDATE": value.KindDateTime,
	"RRULE": value.KindRecur,

	"ACTION": value.KindText, "REPEAT": value.KindInteger, "TRIGGER": value.KindDuration,

	"CREATED": value.KindDateTime, "DTSTAMP": value.KindDateTime,
	"LAST-MODIFIED": value.KindDateTime, "SEQUENCE": value.KindInteger,

	"REQUEST-STATUS": value.KindText,
}

var vcardDefaults = map[string]value.Kind{
	"SOURCE": value.KindURI, "NAME": value.KindText, "PROFILE": value.KindText,
	"FN": value.KindText, "N": value.KindText, "NICKNAME": value.KindText,
	"PHOTO": value.KindBinary, "BDAY": value.KindDate, "ADR": value.KindText,
	"LABEL": value.KindText, "TEL": value.KindText, "EMAIL": value.KindText,
	"MAILER": value.KindText, "TZ": value.KindUTCOffset, "GEO": value.KindFloat,
	"TITLE": value.KindText, "ROLE": value.KindText, "LOGO": value.KindBinary,
	"ORG": value.KindText, "CATEGORIES": value.KindText, "NOTE": value.KindText,
	"PRODID": value.KindText, "REV": value.KindDateTime, "SORT-STRING": value.KindText,
	"SOUND": value.KindBinary, "UID": value.KindText, "URL": value.KindURI,
	"VERSION": value.KindText, "CLASS": value.KindText, "KEY": value.KindBinary,
}

var icalMulti = map[string]bool{
	"CATEGORIES": true, "RESOURCES": true, "RDATE": true, "EXDATE": true,
	"FREEBUSY": true,
}

var vcardMulti = map[string]bool{
	"NICKNAME": true, "CATEGORIES": true,
}

// Special variants carry a structured value regardless of declared
// VALUE type.
var icalSpecial = map[string]value.Kind{
	"GEO": value.KindGeo,
}

var vcardSpecial = map[string]value.Kind{
	"ADR": value.KindAdr, "GEO": value.KindGeo, "N": value.KindN, "ORG": value.KindOrg,
}

// alwaysWriteValue lists property names whose VALUE parameter is
// emitted even when it equals the default. Extended via
// RegisterDefaultKind.
var alwaysWriteValue = map[string]bool{}

// RegisterDefaultKind adds (or widens) a property-name registration,
// for callers carrying non-standard properties with known types.
func RegisterDefaultKind(variant value.Variant, name string, kind value.Kind, alwaysWrite bool) {
	name = utils.UpperASCII(name)
	defaults := icalDefaults
	if variant == value.VariantVCard {
		defaults = vcardDefaults
	}
	if _, ok := defaults[name]; !ok {
		defaults[name] = kind
	}
	if alwaysWrite {
		alwaysWriteValue[name] = true
	}
}

// DefaultKind returns the declared default kind for a property name,
// KindUnknown (iCalendar) or KindText (vCard) when unregistered.
func DefaultKind(variant value.Variant, name string) value.Kind {
	name = utils.UpperASCII(name)
	if variant == value.VariantVCard {
		if k, ok := vcardDefaults[name]; ok {
			return k
		}
		return value.KindText
	}
	if k, ok := icalDefaults[name]; ok {
		return k
	}
	return value.KindUnknown
}

func isMulti(variant value.Variant, name string) bool {
	name = utils.UpperASCII(name)
	if variant == value.VariantVCard {
		return vcardMulti[name]
	}
	return icalMulti[name]
}

// IsMultiValued reports whether the property name carries a
// comma-separated value sequence in its dialect.
func IsMultiValued(variant value.Variant, name string) bool {
	return isMulti(variant, name)
}

func specialVariant(variant value.Variant, name string) (value.Kind, bool) {
	name = utils.UpperASCII(name)
	m := icalSpecial
	if variant == value.VariantVCard {
		m = vcardSpecial
	}
	k, ok := m[name]
	return k, ok
}
