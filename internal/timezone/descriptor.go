// Package timezone implements timezone descriptors (named sequences of
// offset regimes), offset resolution at a local or UTC instant, and
// the process-wide timezone database backed by an on-disk cache.
package timezone

import (
	"fmt"
	"sort"

	"tempical/internal/instant"
	"tempical/internal/recur"
)

// RegimeKind distinguishes standard-time from daylight-saving regimes.
type RegimeKind int

const (
	Standard RegimeKind = iota
	Daylight
)

func (k RegimeKind) String() string {
	if k == Daylight {
		return "DAYLIGHT"
	}
	return "STANDARD"
}

// Regime is one offset regime: the span of rules under which a single
// UTC offset applies. Start and every recurrence-produced activation
// instant are in local wall time relative to the PREVIOUS regime's
// offset (OffsetFrom); converting an activation to UTC subtracts
// OffsetFrom.
type Regime struct {
	Kind       RegimeKind
	OffsetFrom int // seconds
	OffsetTo   int // seconds
	Name       string
	Start      instant.Instant
	// Recurrence enumerates activation instants after Start; nil when
	// the regime activates exactly once.
	Recurrence *recur.Set
}

// Transition is one expanded regime activation.
type Transition struct {
	Local      instant.Instant // wall time relative to OffsetFrom
	UTC        instant.Instant
	OffsetFrom int
	OffsetTo   int
	Name       string
}

// expandAll produces this regime's activations within [start, end) in
// local wall time, pairing each with its UTC instant (local minus
// OffsetFrom). Rules with a UTC-bound UNTIL are shifted into the
// regime's previous wall clock before expansion, so wall-clock
// by-parts and the UTC terminator agree; this is the float-offset
// contract between the timezone and recurrence engines.
func (r *Regime) expandAll(start, end instant.Instant) ([]Transition, error) {
	if !r.Start.Before(end) {
		return nil, nil
	}
	var locals []instant.Instant
	if r.Recurrence == nil {
		if !r.Start.Before(start) {
			locals = []instant.Instant{r.Start}
		}
	} else {
		set := r.floatShiftedSet()
		expanded, _, err := set.Expand(start, end, 0)
		if err != nil {
			return nil, err
		}
		locals = expanded
	}
	out := make([]Transition, 0, len(locals))
	for _, local := range locals {
		utc := local.AddSeconds(-int64(r.OffsetFrom)).UTC()
		out = append(out, Transition{
			Local:      local,
			UTC:        utc,
			OffsetFrom: r.OffsetFrom,
			OffsetTo:   r.OffsetTo,
			Name:       r.Name,
		})
	}
	return out, nil
}

// floatShiftedSet returns the recurrence set with any UTC-bound UNTIL
// converted to this regime's previous wall clock.
func (r *Regime) floatShiftedSet() *recur.Set {
	set := r.Recurrence
	needsShift := false
	for _, rule := range set.IncludeRules {
		if rule.UseUntil && rule.Until.Binding == instant.BindingUTC {
			needsShift = true
			break
		}
	}
	if !needsShift {
		return set
	}
	shifted := &recur.Set{
		DTStart:        set.DTStart,
		IncludeDates:   set.IncludeDates,
		ExcludeDates:   set.ExcludeDates,
		IncludePeriods: set.IncludePeriods,
		ExcludePeriods: set.ExcludePeriods,
		ExcludeRules:   set.ExcludeRules,
	}
	for _, rule := range set.IncludeRules {
		if rule.UseUntil && rule.Until.Binding == instant.BindingUTC {
			d := rule.Duplicate()
			u := rule.Until.AddSeconds(int64(r.OffsetFrom))
			u.Binding = instant.BindingFloating
			d.Until = u
			shifted.IncludeRules = append(shifted.IncludeRules, d)
		} else {
			shifted.IncludeRules = append(shifted.IncludeRules, rule)
		}
	}
	return shifted
}

// Duplicate returns a deep copy.
func (r *Regime) Duplicate() *Regime {
	d := *r
	if r.Recurrence != nil {
		set := &recur.Set{DTStart: r.Recurrence.DTStart}
		for _, rule := range r.Recurrence.IncludeRules {
			set.IncludeRules = append(set.IncludeRules, rule.Duplicate())
		}
		for _, rule := range r.Recurrence.ExcludeRules {
			set.ExcludeRules = append(set.ExcludeRules, rule.Duplicate())
		}
		set.IncludeDates = append([]instant.Instant(nil), r.Recurrence.IncludeDates...)
		set.ExcludeDates = append([]instant.Instant(nil), r.Recurrence.ExcludeDates...)
		set.IncludePeriods = append([]recur.Period(nil), r.Recurrence.IncludePeriods...)
		set.ExcludePeriods = append([]recur.Period(nil), r.Recurrence.ExcludePeriods...)
		d.Recurrence = set
	}
	return &d
}

// offsetCacheMaxEntries caps the offset-lookup memo; on overflow the
// whole map is reset rather than evicted piecemeal.
const offsetCacheMaxEntries = 100000

// Descriptor is a timezone: an identifier plus its ordered offset
// regimes, with a transition-expansion cache keyed by an upper-bound
// year.
type Descriptor struct {
	ID      string
	Regimes []*Regime

	cachedTransitions []Transition
	cachedMaxYear     int
	offsetCache       map[offsetKey]int
}

type offsetKey struct {
	year, month, day, hour, minute int
	relativeToUTC                  bool
}

// earliestRegimeYear is where expansion windows start; zoneinfo data
// carries nothing before the 19th century.
const earliestRegimeYear = 1800

// ClearCache drops the expansion cache. Call after mutating Regimes.
func (d *Descriptor) ClearCache() {
	d.cachedTransitions = nil
	d.cachedMaxYear = 0
	d.offsetCache = nil
}

// ensureExpanded extends the cached transition list to cover at least
// [earliestRegimeYear, year+2).
func (d *Descriptor) ensureExpanded(year int) error {
	if d.cachedTransitions != nil && year < d.cachedMaxYear {
		return nil
	}
	maxYear := year + 2
	start := instant.New(earliestRegimeYear, 1, 1, 0, 0, 0)
	end := instant.New(maxYear, 1, 1, 0, 0, 0)
	var all []Transition
	for _, r := range d.Regimes {
		ts, err := r.expandAll(start, end)
		if err != nil {
			return err
		}
		all = append(all, ts...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Local.Before(all[j].Local)
	})
	d.cachedTransitions = all
	d.cachedMaxYear = maxYear
	d.offsetCache = make(map[offsetKey]int)
	return nil
}

// ExpandTransitions returns every transition within [start, end),
// sorted by UTC instant. Used by descriptor synthesis and by the
// hierarchy-comparison tooling.
func (d *Descriptor) ExpandTransitions(start, end instant.Instant) ([]Transition, error) {
	if err := d.ensureExpanded(end.Year); err != nil {
		return nil, err
	}
	var out []Transition
	for _, t := range d.cachedTransitions {
		if !t.UTC.Before(start) && t.UTC.Before(end) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UTC.Before(out[j].UTC) })
	return out, nil
}

// OffsetSeconds answers "what UTC offset applies at dt?". The zone
// binding on dt is ignored: its civil fields are read as local wall
// time, or as UTC when relativeToUTC is set. A dt before the first
// transition yields 0.
func (d *Descriptor) OffsetSeconds(dt instant.Instant, relativeToUTC bool) (int, error) {
	naked := dt
	naked.Binding = instant.BindingFloating
	naked.TZID = ""

	if err := d.ensureExpanded(naked.Year); err != nil {
		return 0, err
	}
	if len(d.cachedTransitions) == 0 {
		return 0, nil
	}

	key := offsetKey{naked.Year, naked.Month, naked.Day, naked.Hour, naked.Minute, relativeToUTC}
	i, ok := d.offsetCache[key]
	if !ok {
		i = d.bisectRight(naked, relativeToUTC)
		if len(d.offsetCache) >= offsetCacheMaxEntries {
			d.offsetCache = make(map[offsetKey]int)
		}
		d.offsetCache[key] = i
	}
	if i == 0 {
		return 0, nil
	}
	return d.cachedTransitions[i-1].OffsetTo, nil
}

// NameAt answers "what is the zone called at dt?": the matching regime's
// name when present, else a synthesised ±HHMM of the effective offset.
func (d *Descriptor) NameAt(dt instant.Instant) (string, error) {
	naked := dt
	naked.Binding = instant.BindingFloating
	naked.TZID = ""
	if err := d.ensureExpanded(naked.Year); err != nil {
		return "", err
	}
	i := d.bisectRight(naked, false)
	if i > 0 {
		t := d.cachedTransitions[i-1]
		if t.Name != "" {
			return t.Name, nil
		}
		return synthesiseName(t.OffsetTo), nil
	}
	return synthesiseName(0), nil
}

func synthesiseName(offset int) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/3600, (offset/60)%60)
}

// bisectRight returns the number of transitions at or before dt, on
// the local-wall axis (or the UTC axis when relativeToUTC).
func (d *Descriptor) bisectRight(dt instant.Instant, relativeToUTC bool) int {
	p := dt.LocalPosix()
	return sort.Search(len(d.cachedTransitions), func(i int) bool {
		t := d.cachedTransitions[i]
		axis := t.Local
		if relativeToUTC {
			axis = t.UTC
		}
		return axis.LocalPosix() > p
	})
}

// Duplicate returns a deep copy with an empty cache.
func (d *Descriptor) Duplicate() *Descriptor {
	out := &Descriptor{ID: d.ID}
	for _, r := range d.Regimes {
		out.Regimes = append(out.Regimes, r.Duplicate())
	}
	return out
}
