// Package value implements the typed scalar and structured property
// values: a sum type over ~15 concrete codecs, each able to parse from
// and render to the three calendar-format surfaces (folded text, XML,
// JSON).
package value

import (
	"fmt"

	"tempical/internal/utils"
)

// Kind identifies one of the concrete value codecs. The numeric tag is
// part of the external contract; values are stable and must not be
// renumbered.
type Kind int

const (
	KindUnknown Kind = iota
	KindBinary
	KindBoolean
	KindCalAddress
	KindDate
	KindDateTime
	KindDuration
	KindFloat
	KindGeo
	KindInteger
	KindMulti
	KindPeriod
	KindRecur
	KindText
	KindTime
	KindURI
	KindUTCOffset
	KindAdr
	KindN
	KindOrg
)

// xmlNames gives the XML local element name a value of each kind is
// written under, e.g. <date-time>.
var xmlNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindBinary:     "binary",
	KindBoolean:    "boolean",
	KindCalAddress: "cal-address",
	KindDate:       "date",
	KindDateTime:   "date-time",
	KindDuration:   "duration",
	KindFloat:      "float",
	KindGeo:        "geo",
	KindInteger:    "integer",
	KindMulti:      "multi",
	KindPeriod:     "period",
	KindRecur:      "recur",
	KindText:       "text",
	KindTime:       "time",
	KindURI:        "uri",
	KindUTCOffset:  "utc-offset",
	KindAdr:        "structured-address",
	KindN:          "structured-name",
	KindOrg:        "organisation",
}

// textNames gives the `VALUE=` parameter token for a kind. GEO, ADR, N
// and ORG are special variants: their declared VALUE type stays the
// underlying scalar token.
var textNames = map[Kind]string{
	KindUnknown:    "UNKNOWN",
	KindBinary:     "BINARY",
	KindBoolean:    "BOOLEAN",
	KindCalAddress: "CAL-ADDRESS",
	KindDate:       "DATE",
	KindDateTime:   "DATE-TIME",
	KindDuration:   "DURATION",
	KindFloat:      "FLOAT",
	KindGeo:        "FLOAT",
	KindInteger:    "INTEGER",
	KindMulti:      "TEXT",
	KindPeriod:     "PERIOD",
	KindRecur:      "RECUR",
	KindText:       "TEXT",
	KindTime:       "TIME",
	KindURI:        "URI",
	KindUTCOffset:  "UTC-OFFSET",
	KindAdr:        "TEXT",
	KindN:          "TEXT",
	KindOrg:        "TEXT",
}

func (k Kind) XMLName() string  { return xmlNames[k] }
func (k Kind) TextName() string { return textNames[k] }

func (k Kind) String() string {
	if n, ok := textNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindFromText resolves a `VALUE=` token (case-insensitive) to a Kind,
// false if unrecognised. Special-variant kinds never resolve from a
// token; they are selected by property name instead.
func KindFromText(s string) (Kind, bool) {
	for k, n := range textNames {
		if utils.FoldCaseEqual(n, s) && k != KindGeo && k != KindMulti && k != KindAdr && k != KindN && k != KindOrg {
			return k, true
		}
	}
	return KindUnknown, false
}
