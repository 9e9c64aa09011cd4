package calendar

import (
	"fmt"

	"github.com/google/uuid"

	"tempical/internal/property"
	"tempical/internal/timezone"
	"tempical/internal/value"
)

// ProdID identifies this implementation in generated containers.
const ProdID = "-//tempical//tempical Calendar Library//EN"

// NewCalendar creates an empty VCALENDAR root with the required
// VERSION and PRODID already present.
func NewCalendar() *Component {
	c := NewComponent(TypeVCalendar)
	c.AddProperty(property.NewText("VERSION", "2.0"))
	c.AddProperty(property.NewText("PRODID", ProdID))
	return c
}

// NewVCard creates an empty VCARD root.
func NewVCard() *Component {
	c := NewComponent(TypeVCard)
	c.SetVariant(value.VariantVCard)
	p := property.NewText("VERSION", "3.0")
	p.SetVariant(value.VariantVCard)
	c.AddProperty(p)
	return c
}

// GenerateUID returns a fresh identifier for programmatically built
// components.
func GenerateUID() string {
	return fmt.Sprintf("%s@tempical", uuid.New().String())
}

// NewEvent creates a VEVENT with a generated UID, ready for the caller
// to add DTSTART and the rest.
func NewEvent() *Component {
	e := NewComponent(TypeVEvent)
	e.AddProperty(property.NewText("UID", GenerateUID()))
	return e
}

// TimezoneInjection selects which referenced-but-missing VTIMEZONEs
// IncludeMissingTimezones adds to a container.
type TimezoneInjection int

const (
	// NoTimezones disables injection entirely. It never strips
	// VTIMEZONEs already present.
	NoTimezones TimezoneInjection = iota
	// NonStandardTimezones injects only zones outside the standard
	// set, on the expectation that consumers ship the standard ones.
	NonStandardTimezones
	// AllTimezones injects every referenced zone.
	AllTimezones
)

// ReferencedTZIDs walks the subtree collecting every TZID parameter
// value, in first-reference order.
func (c *Component) ReferencedTZIDs() []string {
	var out []string
	seen := map[string]bool{}
	c.walkTZIDs(seen, &out)
	return out
}

func (c *Component) walkTZIDs(seen map[string]bool, out *[]string) {
	for _, name := range c.propNames {
		for _, p := range c.props[name] {
			if tzid := p.FirstParamValue("TZID"); tzid != "" && !seen[tzid] {
				seen[tzid] = true
				*out = append(*out, tzid)
			}
		}
	}
	for _, s := range c.subs {
		s.walkTZIDs(seen, out)
	}
}

// HasTimezone reports whether the container already holds a VTIMEZONE
// for the TZID.
func (c *Component) HasTimezone(tzid string) bool {
	for _, tz := range c.Components(TypeVTimezone) {
		if tz.PropertyText("TZID") == tzid {
			return true
		}
	}
	return false
}

// IncludeMissingTimezones injects VTIMEZONE components for referenced
// TZIDs absent from the container, resolving them through db.
// Injected timezones are placed at the top of the container. Zones
// that cannot be resolved are skipped.
func (c *Component) IncludeMissingTimezones(db *timezone.Database, mode TimezoneInjection) {
	if mode == NoTimezones {
		return
	}
	for _, tzid := range c.ReferencedTZIDs() {
		if c.HasTimezone(tzid) {
			continue
		}
		if mode == NonStandardTimezones && db.IsStandard(tzid) {
			continue
		}
		desc, err := db.Get(tzid)
		if err != nil {
			continue
		}
		c.InsertComponent(NewVTimezone(desc))
	}
}

// MergeTimezones copies other's VTIMEZONEs into c, skipping any TZID
// already present; the merge is idempotent.
func (c *Component) MergeTimezones(other *Component) {
	for _, tz := range other.Components(TypeVTimezone) {
		if !c.HasTimezone(tz.PropertyText("TZID")) {
			c.InsertComponent(tz.Duplicate())
		}
	}
}
