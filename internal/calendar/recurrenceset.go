package calendar

import (
	"tempical/internal/instant"
	"tempical/internal/recur"
	"tempical/internal/value"
)

// RecurrenceSet assembles the component's recurrence set from its
// DTSTART, RRULE/EXRULE, RDATE/EXDATE and period-valued RDATE/EXDATE
// properties. Returns nil when the component has no DTSTART.
//
// An UNTIL whose precision does not match DTSTART's is coerced to the
// start's precision rather than rejected: a date-only UNTIL against a
// date-time start takes the start's time-of-day, and vice versa.
func (c *Component) RecurrenceSet() *recur.Set {
	dtstart := c.FirstProperty("DTSTART")
	if dtstart == nil {
		return nil
	}
	dt, ok := dtstart.Value.(*value.DateTime)
	if !ok {
		return nil
	}
	set := &recur.Set{DTStart: dt.Inst}

	addRules := func(name string, into *[]*recur.Rule) {
		for _, p := range c.Properties(name) {
			if rv, ok := p.Value.(*value.Recur); ok {
				rule := rv.Rule
				if rule.UseUntil {
					rule.Until = coerceUntil(rule.Until, dt.Inst)
				}
				*into = append(*into, rule)
			}
		}
	}
	addRules("RRULE", &set.IncludeRules)
	addRules("EXRULE", &set.ExcludeRules)

	for _, p := range c.Properties("RDATE") {
		set.IncludeDates = append(set.IncludeDates, dateTimeValues(p.Value)...)
		set.IncludePeriods = append(set.IncludePeriods, periodValues(p.Value)...)
	}
	for _, p := range c.Properties("EXDATE") {
		set.ExcludeDates = append(set.ExcludeDates, dateTimeValues(p.Value)...)
		set.ExcludePeriods = append(set.ExcludePeriods, periodValues(p.Value)...)
	}
	return set
}

// coerceUntil aligns an UNTIL instant's precision with the start's.
func coerceUntil(until, start instant.Instant) instant.Instant {
	if until.DateOnly == start.DateOnly {
		return until
	}
	if start.DateOnly {
		until.DateOnly = true
		until.Hour, until.Minute, until.Second = 0, 0, 0
	} else {
		until.DateOnly = false
		until.Hour, until.Minute, until.Second = start.Hour, start.Minute, start.Second
	}
	return until
}

func periodValues(v value.Value) []recur.Period {
	switch t := v.(type) {
	case *value.PeriodValue:
		return []recur.Period{t}
	case *value.Multi:
		var out []recur.Period
		for _, e := range t.Values {
			out = append(out, periodValues(e)...)
		}
		return out
	}
	return nil
}

// ExpandOccurrences expands the component's recurrence set within
// [ws, we), returning the sorted instants and whether the stream was
// truncated by the window or a rule terminator.
func (c *Component) ExpandOccurrences(ws, we instant.Instant, maxInstances int) ([]instant.Instant, bool, error) {
	set := c.RecurrenceSet()
	if set == nil {
		return nil, false, nil
	}
	return set.Expand(ws, we, maxInstances)
}
