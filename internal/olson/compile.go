package olson

import (
	"tempical/internal/caldate"
	"tempical/internal/instant"
	"tempical/internal/recur"
	"tempical/internal/timezone"
)

// CompileZone expands the named zone over [minYear, maxYear] and
// synthesises a timezone descriptor: one regime per contiguous run of
// transitions sharing the same generating rule and offset pair,
// rendered as an RRULE when the run repeats and as an explicit date
// otherwise.
func (s *Set) CompileZone(name string, minYear, maxYear int) (*timezone.Descriptor, error) {
	transitions, err := s.ExpandZone(name, minYear, maxYear)
	if err != nil {
		return nil, err
	}
	d := &timezone.Descriptor{ID: name}

	// Transitions interleave chronologically (spring rule, autumn
	// rule, spring rule, ...), so runs are tracked per generating rule
	// within one zone segment: a segment change closes every open run.
	type runKey struct {
		rule     *Rule
		from, to int
		name     string
	}
	var order []runKey
	open := map[runKey][]Transition{}
	var segment *ZoneRule

	closeAll := func() {
		for _, k := range order {
			if run := open[k]; len(run) > 0 {
				d.Regimes = append(d.Regimes, buildRegime(run, maxYear))
			}
		}
		order = nil
		open = map[runKey][]Transition{}
	}

	for _, t := range transitions {
		if t.ZRule != segment {
			closeAll()
			segment = t.ZRule
		}
		k := runKey{t.Rule, t.OffsetFrom, t.OffsetTo, t.Name}
		if t.Rule == nil {
			// Fixed-offset activations never repeat; emit directly.
			d.Regimes = append(d.Regimes, buildRegime([]Transition{t}, maxYear))
			continue
		}
		if _, ok := open[k]; !ok {
			order = append(order, k)
		}
		open[k] = append(open[k], t)
	}
	closeAll()

	compressRDates(d)
	return d, nil
}

// CompileAll compiles every zone in the set, in source order.
func (s *Set) CompileAll(minYear, maxYear int) ([]*timezone.Descriptor, error) {
	var out []*timezone.Descriptor
	for _, name := range s.ZoneOrder {
		desc, err := s.CompileZone(name, minYear, maxYear)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// buildRegime renders one run of transitions as a regime. A run of
// length one becomes a single-activation regime (an explicit date on
// emission); a longer run becomes a yearly recurrence.
func buildRegime(run []Transition, maxYear int) *timezone.Regime {
	first := run[0]
	r := &timezone.Regime{
		Kind:       regimeKind(first),
		OffsetFrom: first.OffsetFrom,
		OffsetTo:   first.OffsetTo,
		Name:       first.Name,
		Start:      first.Local,
	}
	if len(run) == 1 {
		return r
	}

	rule := recur.New()
	rule.Freq = recur.Yearly
	src := first.Rule
	rule.ByMonth = []int{src.InMonth}
	applyDaySpec(rule, src.OnDay, first.Local)

	// A bounded rule set terminates with an UNTIL at the last
	// activation, expressed in UTC.
	if src.ToYear < MaxYear || bounded(run, maxYear) {
		rule.UseUntil = true
		rule.Until = run[len(run)-1].UTC
	}

	r.Recurrence = &recur.Set{DTStart: r.Start, IncludeRules: []*recur.Rule{rule}}
	return r
}

// bounded reports whether the run stopped before the expansion window
// ended, meaning something (a zone until, a later rule) cut it off.
func bounded(run []Transition, maxYear int) bool {
	return run[len(run)-1].Local.Year < maxYear-1
}

func regimeKind(t Transition) timezone.RegimeKind {
	if t.Rule != nil && t.Rule.SaveSecs > 0 {
		return timezone.Daylight
	}
	if t.Rule == nil && t.ZRule != nil && t.ZRule.RuleIsTime && t.ZRule.RuleSecs > 0 {
		return timezone.Daylight
	}
	return timezone.Standard
}

// applyDaySpec maps an on-day spec onto recurrence by-parts.
func applyDaySpec(rule *recur.Rule, spec DaySpec, start instant.Instant) {
	switch spec.Kind {
	case DayOrdinal:
		rule.ByMonthDay = []int{spec.Day}
	case DayLast:
		if start.Weekday() == spec.Weekday {
			rule.ByDay = []recur.WeekdayNum{{Ordinal: -1, Weekday: spec.Weekday}}
			return
		}
		// The activation weekday drifted off the nominal one (an
		// at-time crossing midnight). Anchor on a days-back window
		// from month end instead.
		k := caldate.DaysInMonth(start.Year, start.Month) - start.Day + 1
		rule.ByYearDay = yeardayWindow(-k, 7)
		rule.ByDay = []recur.WeekdayNum{{Weekday: start.Weekday()}}
	case DayOnOrAfter:
		if spec.Day%7 == 1 {
			rule.ByDay = []recur.WeekdayNum{{Ordinal: (spec.Day-1)/7 + 1, Weekday: spec.Weekday}}
			return
		}
		days := make([]int, 7)
		for i := range days {
			days[i] = spec.Day + i
		}
		rule.ByMonthDay = days
		rule.ByDay = []recur.WeekdayNum{{Weekday: spec.Weekday}}
	}
}

func yeardayWindow(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from - i
	}
	return out
}

// compressRDates merges single-activation regimes sharing the same
// (kind, name, offset pair) into one regime carrying an explicit date
// list.
func compressRDates(d *timezone.Descriptor) {
	type key struct {
		kind     timezone.RegimeKind
		name     string
		from, to int
	}
	merged := map[key]*timezone.Regime{}
	var out []*timezone.Regime
	for _, r := range d.Regimes {
		if !isRDateOnly(r) {
			out = append(out, r)
			continue
		}
		k := key{r.Kind, r.Name, r.OffsetFrom, r.OffsetTo}
		if prev, ok := merged[k]; ok {
			if prev.Recurrence == nil {
				prev.Recurrence = &recur.Set{DTStart: prev.Start}
			}
			prev.Recurrence.IncludeDates = append(prev.Recurrence.IncludeDates, r.Start)
			if r.Recurrence != nil {
				prev.Recurrence.IncludeDates = append(prev.Recurrence.IncludeDates, r.Recurrence.IncludeDates...)
			}
			continue
		}
		merged[k] = r
		out = append(out, r)
	}
	d.Regimes = out
}

// isRDateOnly reports whether the regime carries no recurrence rules,
// only its first activation (and possibly explicit dates).
func isRDateOnly(r *timezone.Regime) bool {
	return r.Recurrence == nil || len(r.Recurrence.IncludeRules) == 0
}
