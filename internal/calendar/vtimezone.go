package calendar

import (
	"tempical/internal/instant"
	"tempical/internal/property"
	"tempical/internal/recur"
	"tempical/internal/timezone"
	"tempical/internal/value"
)

// NewVTimezone renders a timezone descriptor as a VTIMEZONE component,
// one STANDARD/DAYLIGHT sub-component per regime, in regime order.
func NewVTimezone(d *timezone.Descriptor) *Component {
	tz := NewComponent(TypeVTimezone)
	tz.AddProperty(property.NewText("TZID", d.ID))
	for _, r := range d.Regimes {
		tz.AddComponent(newRegimeComponent(r))
	}
	return tz
}

func newRegimeComponent(r *timezone.Regime) *Component {
	typeName := TypeStandard
	if r.Kind == timezone.Daylight {
		typeName = TypeDaylight
	}
	c := NewComponent(typeName)
	c.AddProperty(property.New("DTSTART", value.NewDateTime(r.Start)))
	c.AddProperty(property.New("TZOFFSETFROM", value.NewUTCOffset(r.OffsetFrom)))
	c.AddProperty(property.New("TZOFFSETTO", value.NewUTCOffset(r.OffsetTo)))
	if r.Name != "" {
		c.AddProperty(property.NewText("TZNAME", r.Name))
	}
	if r.Recurrence != nil {
		for _, rule := range r.Recurrence.IncludeRules {
			c.AddProperty(property.New("RRULE", value.NewRecur(rule)))
		}
		if len(r.Recurrence.IncludeDates) > 0 {
			var vals []value.Value
			for _, d := range r.Recurrence.IncludeDates {
				vals = append(vals, value.NewDateTime(d))
			}
			c.AddProperty(property.New("RDATE", value.NewMulti(value.KindDateTime, vals)))
		}
	}
	return c
}

// DescriptorFromVTimezone compiles a parsed VTIMEZONE component into
// the descriptor shape the timezone engine consumes.
func DescriptorFromVTimezone(tz *Component) (*timezone.Descriptor, error) {
	if tz.Type() != TypeVTimezone {
		return nil, &InvalidComponentError{Type: tz.Type(), Reason: "not a VTIMEZONE"}
	}
	id := tz.PropertyText("TZID")
	if id == "" {
		return nil, &InvalidComponentError{Type: TypeVTimezone, Reason: "missing TZID"}
	}
	d := &timezone.Descriptor{ID: id}
	for _, sub := range tz.Components("") {
		switch sub.Type() {
		case TypeStandard, TypeDaylight:
		default:
			continue
		}
		r, err := regimeFromComponent(sub)
		if err != nil {
			return nil, err
		}
		d.Regimes = append(d.Regimes, r)
	}
	if len(d.Regimes) == 0 {
		return nil, &InvalidComponentError{Type: TypeVTimezone, Reason: "no STANDARD or DAYLIGHT regime"}
	}
	return d, nil
}

func regimeFromComponent(c *Component) (*timezone.Regime, error) {
	r := &timezone.Regime{Kind: timezone.Standard}
	if c.Type() == TypeDaylight {
		r.Kind = timezone.Daylight
	}
	dtstart := c.FirstProperty("DTSTART")
	if dtstart == nil {
		return nil, &InvalidComponentError{Type: c.Type(), Reason: "missing DTSTART"}
	}
	dt, ok := dtstart.Value.(*value.DateTime)
	if !ok {
		return nil, &InvalidComponentError{Type: c.Type(), Reason: "DTSTART is not a date-time"}
	}
	r.Start = dt.Inst

	from, err := offsetProperty(c, "TZOFFSETFROM")
	if err != nil {
		return nil, err
	}
	to, err := offsetProperty(c, "TZOFFSETTO")
	if err != nil {
		return nil, err
	}
	r.OffsetFrom, r.OffsetTo = from, to
	r.Name = c.PropertyText("TZNAME")

	set := &recur.Set{DTStart: r.Start}
	hasRecurrence := false
	for _, p := range c.Properties("RRULE") {
		if rv, ok := p.Value.(*value.Recur); ok {
			set.IncludeRules = append(set.IncludeRules, rv.Rule)
			hasRecurrence = true
		}
	}
	for _, p := range c.Properties("RDATE") {
		for _, inst := range dateTimeValues(p.Value) {
			set.IncludeDates = append(set.IncludeDates, inst)
			hasRecurrence = true
		}
	}
	if hasRecurrence {
		r.Recurrence = set
	}
	return r, nil
}

func offsetProperty(c *Component, name string) (int, error) {
	p := c.FirstProperty(name)
	if p == nil {
		return 0, &InvalidComponentError{Type: c.Type(), Reason: "missing " + name}
	}
	off, ok := p.Value.(*value.UTCOffset)
	if !ok {
		return 0, &InvalidComponentError{Type: c.Type(), Reason: name + " is not a UTC offset"}
	}
	return off.Seconds, nil
}

func dateTimeValues(v value.Value) []instant.Instant {
	switch t := v.(type) {
	case *value.DateTime:
		return []instant.Instant{t.Inst}
	case *value.Multi:
		var out []instant.Instant
		for _, e := range t.Values {
			out = append(out, dateTimeValues(e)...)
		}
		return out
	}
	return nil
}

// Timezones compiles every VTIMEZONE in the container into
// descriptors.
func (c *Component) Timezones() ([]*timezone.Descriptor, error) {
	var out []*timezone.Descriptor
	for _, tz := range c.Components(TypeVTimezone) {
		d, err := DescriptorFromVTimezone(tz)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
