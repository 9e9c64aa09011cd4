package calendar

import (
	"tempical/internal/constants"
	"tempical/internal/instant"
	"tempical/internal/value"
)

// ValueCheck is a per-property predicate used during validation. It
// reports ok=false with a reason when the value violates the
// component's contract.
type ValueCheck func(v value.Value) (ok bool, reason string)

// typeInfo is the static description of one component type: the four
// cardinality tuples, the per-property value predicates, and the
// emission order contract.
type typeInfo struct {
	// exactlyOne properties must appear exactly once; missing is not
	// fixable.
	exactlyOne []string
	// exactlyOneFixEmpty properties must appear exactly once; a doFix
	// validation repairs a missing one by adding an empty text value.
	exactlyOneFixEmpty []string
	zeroOrOne          []string
	oneOrMore          []string

	valueChecks map[string]ValueCheck

	propertyOrder     []string
	componentOrder    []string
	sortSubComponents bool
}

var defaultTypeInfo = &typeInfo{sortSubComponents: true}

func typeInfoFor(typeName string) *typeInfo {
	if info, ok := typeRegistry[typeName]; ok {
		return info
	}
	return defaultTypeInfo
}

func checkIntegerRange(min, max int64) ValueCheck {
	return func(v value.Value) (bool, string) {
		i, ok := v.(*value.Integer)
		if !ok {
			return false, "expected an integer value"
		}
		if i.N < min || i.N > max {
			return false, "integer out of range"
		}
		return true, ""
	}
}

func checkNonNegativeInteger(v value.Value) (bool, string) {
	i, ok := v.(*value.Integer)
	if !ok {
		return false, "expected an integer value"
	}
	if i.N < 0 {
		return false, "integer is negative"
	}
	return true, ""
}

func checkTextIn(allowed ...string) ValueCheck {
	return func(v value.Value) (bool, string) {
		t, ok := v.(*value.Text)
		if !ok {
			return false, "expected a text value"
		}
		for _, a := range allowed {
			if equalFoldASCII(t.Raw, a) {
				return true, ""
			}
		}
		return false, "text value not one of the allowed set"
	}
}

func checkAlwaysUTC(v value.Value) (bool, string) {
	dt, ok := v.(*value.DateTime)
	if !ok {
		return false, "expected a date-time value"
	}
	if dt.Inst.Binding != instant.BindingUTC {
		return false, "date-time must be UTC"
	}
	return true, ""
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

var typeRegistry = map[string]*typeInfo{
	TypeVCalendar: {
		exactlyOneFixEmpty: []string{"PRODID", "VERSION"},
		zeroOrOne:          []string{"CALSCALE", "METHOD"},
		propertyOrder:      []string{"VERSION", "CALSCALE", "METHOD", "PRODID"},
		componentOrder:     []string{TypeVTimezone, TypeVEvent, TypeVTodo, TypeVJournal, TypeVFreeBusy},
		sortSubComponents:  true,
	},
	TypeVEvent: {
		exactlyOneFixEmpty: []string{"UID", "DTSTAMP"},
		zeroOrOne: []string{
			"CLASS", "CREATED", "DESCRIPTION", "DTSTART", "GEO", "LAST-MODIFIED",
			"LOCATION", "ORGANIZER", "PRIORITY", "SEQUENCE", "STATUS", "SUMMARY",
			"TRANSP", "URL", "RECURRENCE-ID", "DTEND", "DURATION",
		},
		valueChecks: map[string]ValueCheck{
			"DTSTAMP":       checkAlwaysUTC,
			"CREATED":       checkAlwaysUTC,
			"LAST-MODIFIED": checkAlwaysUTC,
			"PRIORITY":      checkIntegerRange(0, 9),
			"SEQUENCE":      checkNonNegativeInteger,
			"STATUS":        checkTextIn(constants.StatusTentative, constants.StatusConfirmed, constants.StatusCancelled),
			"TRANSP":        checkTextIn(constants.TranspOpaque, constants.TranspTransparent),
		},
		propertyOrder: []string{
			"UID", "RECURRENCE-ID", "DTSTAMP", "DTSTART", "DTEND", "DURATION",
		},
		componentOrder:    []string{TypeVAlarm},
		sortSubComponents: true,
	},
	TypeVTodo: {
		exactlyOneFixEmpty: []string{"UID", "DTSTAMP"},
		zeroOrOne: []string{
			"CLASS", "COMPLETED", "CREATED", "DESCRIPTION", "DTSTART", "GEO",
			"LAST-MODIFIED", "LOCATION", "ORGANIZER", "PERCENT-COMPLETE",
			"PRIORITY", "RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "URL",
			"DUE", "DURATION",
		},
		valueChecks: map[string]ValueCheck{
			"DTSTAMP":          checkAlwaysUTC,
			"COMPLETED":        checkAlwaysUTC,
			"CREATED":          checkAlwaysUTC,
			"LAST-MODIFIED":    checkAlwaysUTC,
			"PERCENT-COMPLETE": checkIntegerRange(0, 100),
			"PRIORITY":         checkIntegerRange(0, 9),
			"SEQUENCE":         checkNonNegativeInteger,
			"STATUS":           checkTextIn(constants.StatusNeedsAction, constants.StatusCompleted, constants.StatusInProcess, constants.StatusCancelled),
		},
		propertyOrder:     []string{"UID", "RECURRENCE-ID", "DTSTAMP", "DTSTART", "DUE", "DURATION"},
		componentOrder:    []string{TypeVAlarm},
		sortSubComponents: true,
	},
	TypeVJournal: {
		exactlyOneFixEmpty: []string{"UID", "DTSTAMP"},
		zeroOrOne: []string{
			"CLASS", "CREATED", "DTSTART", "LAST-MODIFIED", "ORGANIZER",
			"RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "URL",
		},
		valueChecks: map[string]ValueCheck{
			"DTSTAMP":       checkAlwaysUTC,
			"CREATED":       checkAlwaysUTC,
			"LAST-MODIFIED": checkAlwaysUTC,
			"SEQUENCE":      checkNonNegativeInteger,
			"STATUS":        checkTextIn(constants.StatusDraft, constants.StatusFinal, constants.StatusCancelled),
		},
		propertyOrder:     []string{"UID", "RECURRENCE-ID", "DTSTAMP", "DTSTART"},
		sortSubComponents: true,
	},
	TypeVFreeBusy: {
		exactlyOneFixEmpty: []string{"UID", "DTSTAMP"},
		zeroOrOne:          []string{"CONTACT", "DTSTART", "DTEND", "ORGANIZER", "URL"},
		valueChecks: map[string]ValueCheck{
			"DTSTAMP": checkAlwaysUTC,
		},
		propertyOrder:     []string{"UID", "DTSTAMP", "DTSTART", "DTEND"},
		sortSubComponents: true,
	},
	TypeVAlarm: {
		exactlyOne:        []string{"ACTION", "TRIGGER"},
		zeroOrOne:         []string{"DESCRIPTION", "SUMMARY", "DURATION", "REPEAT"},
		valueChecks:       map[string]ValueCheck{"REPEAT": checkNonNegativeInteger},
		propertyOrder:     []string{"ACTION", "TRIGGER", "DURATION", "REPEAT"},
		sortSubComponents: true,
	},
	TypeVTimezone: {
		exactlyOne:    []string{"TZID"},
		zeroOrOne:     []string{"LAST-MODIFIED", "TZURL"},
		propertyOrder: []string{"TZID", "LAST-MODIFIED", "TZURL"},
		// Offset regimes must emit in the order they were declared;
		// reordering them changes offset-from inheritance.
		sortSubComponents: false,
	},
	TypeStandard: {
		exactlyOne:        []string{"DTSTART", "TZOFFSETFROM", "TZOFFSETTO"},
		propertyOrder:     []string{"DTSTART", "TZOFFSETFROM", "TZOFFSETTO", "TZNAME"},
		sortSubComponents: true,
	},
	TypeDaylight: {
		exactlyOne:        []string{"DTSTART", "TZOFFSETFROM", "TZOFFSETTO"},
		propertyOrder:     []string{"DTSTART", "TZOFFSETFROM", "TZOFFSETTO", "TZNAME"},
		sortSubComponents: true,
	},
	TypeVCard: {
		exactlyOneFixEmpty: []string{"VERSION", "FN"},
		zeroOrOne:          []string{"N", "BDAY", "GEO", "REV", "UID"},
		propertyOrder:      []string{"VERSION", "FN", "N"},
		sortSubComponents:  true,
	},
}
