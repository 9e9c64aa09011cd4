// Recurrence-set semantics: combining RRULE/EXRULE with RDATE/EXDATE
// and period-valued additions/exclusions into one sorted,
// deduplicated, exclusion-applied instant stream.
package recur

import (
	"sort"

	"tempical/internal/instant"
)

// Period is the minimal shape this package needs from a period value
// (start instant + a containment test), declared here so this package
// does not import internal/duration.
type Period interface {
	StartInstant() instant.Instant
	OverlapsWindow(ws, we instant.Instant) bool
}

// Set is a recurrence set: the six membership lists plus the
// anchoring DTSTART.
type Set struct {
	DTStart instant.Instant

	IncludeRules   []*Rule
	ExcludeRules   []*Rule
	IncludeDates   []instant.Instant
	ExcludeDates   []instant.Instant
	IncludePeriods []Period
	ExcludePeriods []Period
}

// Expand computes the sorted, deduplicated instant set for window
// [ws, we) as include \ exclude, where include is the
// union of DTSTART-if-in-window, every include-rule's expansion, every
// RDATE in window, and the start of every RPERIOD overlapping the
// window; exclude is symmetric over EXRULE/EXDATE/EXPERIOD.
// maxInstances bounds each rule's internal expansion (0 = default).
func (s *Set) Expand(ws, we instant.Instant, maxInstances int) ([]instant.Instant, bool, error) {
	limited := false
	includeSet := map[int64]instant.Instant{}

	if !s.DTStart.Before(ws) && s.DTStart.Before(we) {
		includeSet[s.DTStart.LocalPosix()] = s.DTStart
	}
	for _, r := range s.IncludeRules {
		instants, lim, err := r.Expand(s.DTStart, ws, we, maxInstances)
		if err != nil {
			return nil, false, err
		}
		limited = limited || lim
		for _, inst := range instants {
			includeSet[inst.LocalPosix()] = inst
		}
	}
	for _, d := range s.IncludeDates {
		if !d.Before(ws) && d.Before(we) {
			includeSet[d.LocalPosix()] = d
		}
	}
	for _, p := range s.IncludePeriods {
		if p.OverlapsWindow(ws, we) {
			st := p.StartInstant()
			includeSet[st.LocalPosix()] = st
		}
	}

	excludeSet := map[int64]bool{}
	for _, r := range s.ExcludeRules {
		instants, lim, err := r.Expand(s.DTStart, ws, we, maxInstances)
		if err != nil {
			return nil, false, err
		}
		limited = limited || lim
		for _, inst := range instants {
			excludeSet[inst.LocalPosix()] = true
		}
	}
	for _, d := range s.ExcludeDates {
		excludeSet[d.LocalPosix()] = true
	}
	for _, p := range s.ExcludePeriods {
		if p.OverlapsWindow(ws, we) {
			excludeSet[p.StartInstant().LocalPosix()] = true
		}
	}

	out := make([]instant.Instant, 0, len(includeSet))
	for key, inst := range includeSet {
		if !excludeSet[key] {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, limited, nil
}
