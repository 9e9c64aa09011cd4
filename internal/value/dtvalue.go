package value

import (
	"fmt"
	"strconv"

	"tempical/internal/instant"
)

// DateTime is the codec for DATE, DATE-TIME and TIME values. All three
// share one underlying Instant; DATE sets the date-only flag, TIME
// carries a zeroed civil date.
type DateTime struct {
	kind Kind
	Inst instant.Instant
}

func NewDate(i instant.Instant) *DateTime {
	i.DateOnly = true
	i.Hour, i.Minute, i.Second = 0, 0, 0
	return &DateTime{kind: KindDate, Inst: i}
}

func NewDateTime(i instant.Instant) *DateTime {
	i.DateOnly = false
	return &DateTime{kind: KindDateTime, Inst: i}
}

func NewTime(i instant.Instant) *DateTime {
	return &DateTime{kind: KindTime, Inst: i}
}

func init() {
	register(KindDate, func(raw string, ctx Context) (Value, error) {
		i, err := ParseInstant(raw)
		if err != nil {
			return nil, err
		}
		if !i.DateOnly {
			return nil, &InvalidValueError{Input: raw, Reason: "expected a date without a time part"}
		}
		return &DateTime{kind: KindDate, Inst: i}, nil
	})
	register(KindDateTime, func(raw string, ctx Context) (Value, error) {
		i, err := ParseInstant(raw)
		if err != nil {
			return nil, err
		}
		return &DateTime{kind: KindDateTime, Inst: i}, nil
	})
	register(KindTime, func(raw string, ctx Context) (Value, error) {
		i, err := parseClock(raw)
		if err != nil {
			return nil, err
		}
		return &DateTime{kind: KindTime, Inst: i}, nil
	})
}

// ParseInstant parses the compact DATE (`YYYYMMDD`) or DATE-TIME
// (`YYYYMMDDTHHMMSS[Z]`) text form into an Instant. A trailing `Z`
// binds the instant to UTC; otherwise it is floating (a TZID parameter
// on the owning property may rebind it afterwards).
func ParseInstant(raw string) (instant.Instant, error) {
	s := raw
	switch len(s) {
	case 8:
		y, m, d, err := parseYMD(s)
		if err != nil {
			return instant.Instant{}, &InvalidValueError{Input: raw, Reason: err.Error()}
		}
		i := instant.NewDate(y, m, d)
		if !i.Valid() {
			return instant.Instant{}, &InvalidValueError{Input: raw, Reason: "date out of range"}
		}
		return i, nil
	case 15, 16:
		if s[8] != 'T' {
			return instant.Instant{}, &InvalidValueError{Input: raw, Reason: "missing T separator"}
		}
		utc := false
		if len(s) == 16 {
			if s[15] != 'Z' {
				return instant.Instant{}, &InvalidValueError{Input: raw, Reason: "trailing data after time"}
			}
			utc = true
		}
		y, m, d, err := parseYMD(s[:8])
		if err != nil {
			return instant.Instant{}, &InvalidValueError{Input: raw, Reason: err.Error()}
		}
		h, mi, sec, err := parseHMS(s[9:15])
		if err != nil {
			return instant.Instant{}, &InvalidValueError{Input: raw, Reason: err.Error()}
		}
		i := instant.New(y, m, d, h, mi, sec)
		if utc {
			i = i.UTC()
		}
		if !i.Valid() {
			return instant.Instant{}, &InvalidValueError{Input: raw, Reason: "date-time out of range"}
		}
		return i, nil
	}
	return instant.Instant{}, &InvalidValueError{Input: raw, Reason: "expected YYYYMMDD or YYYYMMDDTHHMMSS[Z]"}
}

// parseClock parses a bare TIME value `HHMMSS[Z]`.
func parseClock(raw string) (instant.Instant, error) {
	s := raw
	utc := false
	if len(s) == 7 && s[6] == 'Z' {
		utc = true
		s = s[:6]
	}
	if len(s) != 6 {
		return instant.Instant{}, &InvalidValueError{Input: raw, Reason: "expected HHMMSS[Z]"}
	}
	h, mi, sec, err := parseHMS(s)
	if err != nil {
		return instant.Instant{}, &InvalidValueError{Input: raw, Reason: err.Error()}
	}
	i := instant.New(0, 1, 1, h, mi, sec)
	if utc {
		i = i.UTC()
	}
	if h > 23 || mi > 59 || sec > 59 {
		return instant.Instant{}, &InvalidValueError{Input: raw, Reason: "time out of range"}
	}
	return i, nil
}

func parseYMD(s string) (int, int, int, error) {
	y, err1 := strconv.Atoi(s[:4])
	m, err2 := strconv.Atoi(s[4:6])
	d, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric date component")
	}
	return y, m, d, nil
}

func parseHMS(s string) (int, int, int, error) {
	h, err1 := strconv.Atoi(s[:2])
	mi, err2 := strconv.Atoi(s[2:4])
	sec, err3 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric time component")
	}
	return h, mi, sec, nil
}

// RenderInstant renders an Instant in its compact text form, the
// inverse of ParseInstant.
func RenderInstant(i instant.Instant) string {
	if i.DateOnly {
		return fmt.Sprintf("%04d%02d%02d", i.Year, i.Month, i.Day)
	}
	s := fmt.Sprintf("%04d%02d%02dT%02d%02d%02d", i.Year, i.Month, i.Day, i.Hour, i.Minute, i.Second)
	if i.Binding == instant.BindingUTC {
		s += "Z"
	}
	return s
}

// renderInstantXML renders the extended (dashed/colon) form used by the
// XML and JSON surfaces.
func renderInstantXML(i instant.Instant) string {
	if i.DateOnly {
		return fmt.Sprintf("%04d-%02d-%02d", i.Year, i.Month, i.Day)
	}
	s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", i.Year, i.Month, i.Day, i.Hour, i.Minute, i.Second)
	if i.Binding == instant.BindingUTC {
		s += "Z"
	}
	return s
}

func (v *DateTime) Kind() Kind { return v.kind }

func (v *DateTime) Text() string {
	if v.kind == KindTime {
		s := fmt.Sprintf("%02d%02d%02d", v.Inst.Hour, v.Inst.Minute, v.Inst.Second)
		if v.Inst.Binding == instant.BindingUTC {
			s += "Z"
		}
		return s
	}
	return RenderInstant(v.Inst)
}

func (v *DateTime) JSON() interface{} {
	if v.kind == KindTime {
		s := fmt.Sprintf("%02d:%02d:%02d", v.Inst.Hour, v.Inst.Minute, v.Inst.Second)
		if v.Inst.Binding == instant.BindingUTC {
			s += "Z"
		}
		return s
	}
	return renderInstantXML(v.Inst)
}

func (v *DateTime) XML() []XMLElem {
	return []XMLElem{{Name: v.kind.XMLName(), Text: v.JSON().(string)}}
}

func (v *DateTime) Duplicate() Value {
	d := *v
	return &d
}

func (v *DateTime) Equal(o Value) bool {
	ov, ok := o.(*DateTime)
	return ok && v.kind == ov.kind && v.Inst.StructuralEqual(ov.Inst)
}
