package value

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Text is the plain TEXT codec; Raw holds the unescaped value.
type Text struct {
	Raw  string
	kind Kind // KindText, or one of the text-shaped kinds sharing this codec
}

func NewText(s string) *Text { return &Text{Raw: s, kind: KindText} }

// URI and CAL-ADDRESS values are carried verbatim: no escaping is
// applied on emission, and a backslash inside a URI is only accepted
// when the parser policy allows it.
func NewURI(s string) *Text        { return &Text{Raw: s, kind: KindURI} }
func NewCalAddress(s string) *Text { return &Text{Raw: s, kind: KindCalAddress} }

func init() {
	register(KindText, func(raw string, ctx Context) (Value, error) {
		s, err := UnescapeText(raw, ctx)
		if err != nil {
			return nil, err
		}
		return NewText(s), nil
	})
	uriParse := func(kind Kind) ParseTextFunc {
		return func(raw string, ctx Context) (Value, error) {
			if strings.ContainsRune(raw, '\\') && ctx.BackslashInURI == PolicyRaise {
				return nil, &InvalidValueError{Input: raw, Reason: "backslash in URI value"}
			}
			return &Text{Raw: raw, kind: kind}, nil
		}
	}
	register(KindURI, uriParse(KindURI))
	register(KindCalAddress, uriParse(KindCalAddress))
}

func (v *Text) Kind() Kind { return v.kind }

func (v *Text) Text() string {
	if v.kind == KindURI || v.kind == KindCalAddress {
		return v.Raw
	}
	return EscapeText(v.Raw)
}

func (v *Text) JSON() interface{} { return v.Raw }
func (v *Text) XML() []XMLElem {
	return []XMLElem{{Name: v.kind.XMLName(), Text: v.Raw}}
}
func (v *Text) Duplicate() Value { d := *v; return &d }
func (v *Text) Equal(o Value) bool {
	ov, ok := o.(*Text)
	return ok && v.kind == ov.kind && v.Raw == ov.Raw
}

// Integer is the INTEGER codec.
type Integer struct{ N int64 }

func NewInteger(n int64) *Integer { return &Integer{N: n} }

func init() {
	register(KindInteger, func(raw string, ctx Context) (Value, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &InvalidValueError{Input: raw, Reason: "not an integer"}
		}
		return &Integer{N: n}, nil
	})
}

func (v *Integer) Kind() Kind        { return KindInteger }
func (v *Integer) Text() string      { return strconv.FormatInt(v.N, 10) }
func (v *Integer) JSON() interface{} { return v.N }
func (v *Integer) XML() []XMLElem {
	return []XMLElem{{Name: "integer", Text: v.Text()}}
}
func (v *Integer) Duplicate() Value { d := *v; return &d }
func (v *Integer) Equal(o Value) bool {
	ov, ok := o.(*Integer)
	return ok && v.N == ov.N
}

// Float is the FLOAT codec. The original text is retained so emission
// round-trips digit-for-digit.
type Float struct {
	F   float64
	raw string
}

func NewFloat(f float64) *Float { return &Float{F: f, raw: formatFloat(f)} }

func init() {
	register(KindFloat, func(raw string, ctx Context) (Value, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &InvalidValueError{Input: raw, Reason: "not a float"}
		}
		return &Float{F: f, raw: strings.TrimSpace(raw)}, nil
	})
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func (v *Float) Kind() Kind        { return KindFloat }
func (v *Float) Text() string      { return v.raw }
func (v *Float) JSON() interface{} { return v.F }
func (v *Float) XML() []XMLElem {
	return []XMLElem{{Name: "float", Text: v.raw}}
}
func (v *Float) Duplicate() Value { d := *v; return &d }
func (v *Float) Equal(o Value) bool {
	ov, ok := o.(*Float)
	return ok && v.F == ov.F
}

// Boolean is the BOOLEAN codec.
type Boolean struct{ B bool }

func init() {
	register(KindBoolean, func(raw string, ctx Context) (Value, error) {
		switch strings.ToUpper(strings.TrimSpace(raw)) {
		case "TRUE":
			return &Boolean{B: true}, nil
		case "FALSE":
			return &Boolean{B: false}, nil
		}
		return nil, &InvalidValueError{Input: raw, Reason: "expected TRUE or FALSE"}
	})
}

func (v *Boolean) Kind() Kind { return KindBoolean }
func (v *Boolean) Text() string {
	if v.B {
		return "TRUE"
	}
	return "FALSE"
}
func (v *Boolean) JSON() interface{} { return v.B }
func (v *Boolean) XML() []XMLElem {
	return []XMLElem{{Name: "boolean", Text: strings.ToLower(v.Text())}}
}
func (v *Boolean) Duplicate() Value { d := *v; return &d }
func (v *Boolean) Equal(o Value) bool {
	ov, ok := o.(*Boolean)
	return ok && v.B == ov.B
}

// Binary is the BINARY codec: base64 in text form, raw bytes in memory.
type Binary struct{ Data []byte }

func init() {
	register(KindBinary, func(raw string, ctx Context) (Value, error) {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return nil, &InvalidValueError{Input: raw, Reason: "invalid base64"}
		}
		return &Binary{Data: data}, nil
	})
}

func (v *Binary) Kind() Kind        { return KindBinary }
func (v *Binary) Text() string      { return base64.StdEncoding.EncodeToString(v.Data) }
func (v *Binary) JSON() interface{} { return v.Text() }
func (v *Binary) XML() []XMLElem {
	return []XMLElem{{Name: "binary", Text: v.Text()}}
}
func (v *Binary) Duplicate() Value {
	return &Binary{Data: append([]byte(nil), v.Data...)}
}
func (v *Binary) Equal(o Value) bool {
	ov, ok := o.(*Binary)
	if !ok || len(v.Data) != len(ov.Data) {
		return false
	}
	for i := range v.Data {
		if v.Data[i] != ov.Data[i] {
			return false
		}
	}
	return true
}

// UTCOffset is a signed UTC offset in seconds, accepted as `±HHMM[SS]`
// in text form and `±HH:MM[:SS]` in the colon-separated variant the
// XML/JSON surfaces use.
type UTCOffset struct{ Seconds int }

func NewUTCOffset(seconds int) *UTCOffset { return &UTCOffset{Seconds: seconds} }

func init() {
	register(KindUTCOffset, func(raw string, ctx Context) (Value, error) {
		secs, err := ParseUTCOffset(raw)
		if err != nil {
			return nil, err
		}
		return &UTCOffset{Seconds: secs}, nil
	})
}

// ParseUTCOffset accepts both the compact and colon-separated forms.
func ParseUTCOffset(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 5 {
		return 0, &InvalidValueError{Input: raw, Reason: "offset too short"}
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, &InvalidValueError{Input: raw, Reason: "missing offset sign"}
	}
	s = strings.ReplaceAll(s[1:], ":", "")
	if len(s) != 4 && len(s) != 6 {
		return 0, &InvalidValueError{Input: raw, Reason: "expected HHMM or HHMMSS digits"}
	}
	h, err1 := strconv.Atoi(s[:2])
	m, err2 := strconv.Atoi(s[2:4])
	sec := 0
	var err3 error
	if len(s) == 6 {
		sec, err3 = strconv.Atoi(s[4:6])
	}
	if err1 != nil || err2 != nil || err3 != nil || m > 59 || sec > 59 {
		return 0, &InvalidValueError{Input: raw, Reason: "malformed offset digits"}
	}
	return sign * (h*3600 + m*60 + sec), nil
}

// RenderUTCOffset renders the compact `±HHMM[SS]` form.
func RenderUTCOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	h, m, s := seconds/3600, (seconds/60)%60, seconds%60
	if s != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d%02d", sign, h, m)
}

func (v *UTCOffset) Kind() Kind   { return KindUTCOffset }
func (v *UTCOffset) Text() string { return RenderUTCOffset(v.Seconds) }

// fullISO renders the colon-separated variant.
func (v *UTCOffset) fullISO() string {
	secs := v.Seconds
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h, m, s := secs/3600, (secs/60)%60, secs%60
	if s != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

func (v *UTCOffset) JSON() interface{} { return v.fullISO() }
func (v *UTCOffset) XML() []XMLElem {
	return []XMLElem{{Name: "utc-offset", Text: v.fullISO()}}
}
func (v *UTCOffset) Duplicate() Value { d := *v; return &d }
func (v *UTCOffset) Equal(o Value) bool {
	ov, ok := o.(*UTCOffset)
	return ok && v.Seconds == ov.Seconds
}

// Geo is the GEO codec: a latitude/longitude pair of floats, written
// `lat;lon` in text form and as per-component children in XML.
type Geo struct{ Lat, Lon float64 }

func init() {
	register(KindGeo, func(raw string, ctx Context) (Value, error) {
		parts := strings.Split(raw, ";")
		if len(parts) != 2 {
			return nil, &InvalidValueError{Input: raw, Reason: "expected lat;lon"}
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return nil, &InvalidValueError{Input: raw, Reason: "non-numeric coordinate"}
		}
		return &Geo{Lat: lat, Lon: lon}, nil
	})
}

func (v *Geo) Kind() Kind { return KindGeo }
func (v *Geo) Text() string {
	return formatFloat(v.Lat) + ";" + formatFloat(v.Lon)
}
func (v *Geo) JSON() interface{} { return []interface{}{v.Lat, v.Lon} }
func (v *Geo) XML() []XMLElem {
	return []XMLElem{
		{Name: "latitude", Text: formatFloat(v.Lat)},
		{Name: "longitude", Text: formatFloat(v.Lon)},
	}
}
func (v *Geo) Duplicate() Value { d := *v; return &d }
func (v *Geo) Equal(o Value) bool {
	ov, ok := o.(*Geo)
	return ok && v.Lat == ov.Lat && v.Lon == ov.Lon
}

// Unknown is the opaque pass-through codec for unregistered kinds.
type Unknown struct{ Raw string }

func NewUnknown(raw string) *Unknown { return &Unknown{Raw: raw} }

func init() {
	register(KindUnknown, func(raw string, ctx Context) (Value, error) {
		return NewUnknown(raw), nil
	})
}

func (v *Unknown) Kind() Kind        { return KindUnknown }
func (v *Unknown) Text() string      { return v.Raw }
func (v *Unknown) JSON() interface{} { return v.Raw }
func (v *Unknown) XML() []XMLElem {
	return []XMLElem{{Name: "unknown", Text: v.Raw}}
}
func (v *Unknown) Duplicate() Value { d := *v; return &d }
func (v *Unknown) Equal(o Value) bool {
	ov, ok := o.(*Unknown)
	return ok && v.Raw == ov.Raw
}
