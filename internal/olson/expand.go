package olson

import (
	"fmt"
	"sort"
	"strings"

	"tempical/internal/caldate"
	"tempical/internal/instant"
)

// Transition is one expanded zone offset change.
type Transition struct {
	UTC        instant.Instant
	Local      instant.Instant // UTC + OffsetFrom: wall time just before the change
	OffsetFrom int
	OffsetTo   int
	Name       string
	ZRule      *ZoneRule
	Rule       *Rule // nil when the segment used `-` or a literal save
}

// expandStartYear anchors zone expansion; zoneinfo sources carry
// nothing earlier.
const expandStartYear = 1800

// ExpandZone expands the named zone's segments into the flat ordered
// transition list covering [minYear, maxYear].
func (s *Set) ExpandZone(name string, minYear, maxYear int) ([]Transition, error) {
	zone, ok := s.Zones[name]
	if !ok {
		if target, isLink := s.Links[name]; isLink {
			zone, ok = s.Zones[target]
		}
		if !ok {
			return nil, fmt.Errorf("unknown zone %q", name)
		}
	}
	if len(zone.Rules) == 0 {
		return nil, fmt.Errorf("zone %q has no segments", zone.Name)
	}

	type rawTransition struct {
		utcPosix int64
		offsetTo int
		name     string
		zr       *ZoneRule
		rule     *Rule
	}
	var raw []rawTransition

	segStart := instant.New(expandStartYear, 1, 1, 0, 0, 0).LocalPosix() // UTC posix
	currentSave := 0

	for _, zr := range zone.Rules {
		segEnd := instant.New(maxYear+1, 1, 1, 0, 0, 0).LocalPosix()
		if zr.Until != nil {
			segEnd = untilUTCPosix(zr.Until, zr.GMTOffSecs, currentSave)
		}

		if zr.RuleRef == "" || zr.RuleIsTime {
			save := 0
			if zr.RuleIsTime {
				save = zr.RuleSecs
			}
			raw = append(raw, rawTransition{
				utcPosix: segStart,
				offsetTo: zr.GMTOffSecs + save,
				name:     formatName(zr.Format, "", save != 0),
				zr:       zr,
			})
			currentSave = save
		} else {
			rules, ok := s.Rules[zr.RuleRef]
			if !ok {
				return nil, fmt.Errorf("zone %q references unknown rule set %q", zone.Name, zr.RuleRef)
			}
			// The segment begins on the standard offset before any of
			// its rules fire.
			raw = append(raw, rawTransition{
				utcPosix: segStart,
				offsetTo: zr.GMTOffSecs + currentSaveAt(rules, segStart, zr.GMTOffSecs),
				name:     formatName(zr.Format, letterAt(rules, segStart, zr.GMTOffSecs), false),
				zr:       zr,
			})

			occurrences := ruleOccurrences(rules, zr.GMTOffSecs, minYear, maxYear)
			for _, occ := range occurrences {
				if occ.utcPosix < segStart || occ.utcPosix >= segEnd {
					continue
				}
				raw = append(raw, rawTransition{
					utcPosix: occ.utcPosix,
					offsetTo: zr.GMTOffSecs + occ.rule.SaveSecs,
					name:     formatName(zr.Format, occ.rule.Letter, occ.rule.SaveSecs != 0),
					zr:       zr,
					rule:     occ.rule,
				})
				currentSave = occ.rule.SaveSecs
			}
		}
		segStart = segEnd
	}

	sort.SliceStable(raw, func(i, j int) bool { return raw[i].utcPosix < raw[j].utcPosix })

	// Walk the sorted transitions deriving offset-from; two landing on
	// the same UTC instant collapse with the later one winning, and
	// the already-emitted collider mutated to share the new offset-to.
	var out []Transition
	offsetFrom := zone.Rules[0].GMTOffSecs
	for _, t := range raw {
		if n := len(out); n > 0 && out[n-1].UTC.LocalPosix() == t.utcPosix {
			out[n-1].OffsetTo = t.offsetTo
			out[n-1].Name = t.name
			out[n-1].ZRule = t.zr
			out[n-1].Rule = t.rule
			offsetFrom = t.offsetTo
			continue
		}
		utcY, utcMo, utcD, utcH, utcMi, utcS := caldate.FromPosixSeconds(t.utcPosix)
		utc := instant.New(utcY, utcMo, utcD, utcH, utcMi, utcS).UTC()
		local := utc.AddSeconds(int64(offsetFrom))
		local.Binding = instant.BindingFloating
		out = append(out, Transition{
			UTC:        utc,
			Local:      local,
			OffsetFrom: offsetFrom,
			OffsetTo:   t.offsetTo,
			Name:       t.name,
			ZRule:      t.zr,
			Rule:       t.rule,
		})
		offsetFrom = t.offsetTo
	}

	// Clip the window after offset-from propagation so early history
	// still seeds the first in-window offset correctly.
	minPosix := instant.New(minYear, 1, 1, 0, 0, 0).LocalPosix()
	clipped := out[:0]
	var last *Transition
	for i := range out {
		if out[i].UTC.LocalPosix() < minPosix {
			last = &out[i]
			continue
		}
		clipped = append(clipped, out[i])
	}
	if len(clipped) == 0 && last != nil {
		clipped = append(clipped, *last)
	}
	return clipped, nil
}

type occurrence struct {
	utcPosix int64
	rule     *Rule
}

// ruleOccurrences expands every rule in the set across the year
// window, ordered by UTC, tracking the saving in force so wall-clock
// at-times resolve against the previous rule.
func ruleOccurrences(rules []*Rule, gmtoff, minYear, maxYear int) []occurrence {
	type cand struct {
		localStdPosix int64 // at-time as if standard clock
		atRef         TimeRef
		atSecs        int
		rule          *Rule
	}
	var cands []cand
	for _, r := range rules {
		from := r.FromYear
		if from < expandStartYear {
			from = expandStartYear
		}
		to := r.ToYear
		if to > maxYear {
			to = maxYear
		}
		for y := from; y <= to; y++ {
			day, ok := resolveDay(y, r.InMonth, r.OnDay)
			if !ok {
				continue
			}
			base := instant.New(y, r.InMonth, day, 0, 0, 0).LocalPosix() + int64(r.AtSecs)
			cands = append(cands, cand{localStdPosix: base, atRef: r.AtRef, atSecs: r.AtSecs, rule: r})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].localStdPosix < cands[j].localStdPosix })

	var out []occurrence
	save := 0
	for _, c := range cands {
		var utc int64
		switch c.atRef {
		case UTCClock:
			utc = c.localStdPosix
		case StandardClock:
			utc = c.localStdPosix - int64(gmtoff)
		default: // wall clock: the previous rule's saving is in force
			utc = c.localStdPosix - int64(gmtoff) - int64(save)
		}
		out = append(out, occurrence{utcPosix: utc, rule: c.rule})
		save = c.rule.SaveSecs
	}
	return out
}

// currentSaveAt reports the saving in force at a segment boundary. It
// always returns zero: every segment is taken to begin on standard
// time, and a nonzero save carried over from an earlier rule is not
// looked up.
func currentSaveAt(rules []*Rule, utcPosix int64, gmtoff int) int {
	return 0
}

// letterAt picks the format letter for a segment boundary: the letter
// of the set's standard (save=0) rule when one exists.
func letterAt(rules []*Rule, utcPosix int64, gmtoff int) string {
	for _, r := range rules {
		if r.SaveSecs == 0 {
			return r.Letter
		}
	}
	return ""
}

// resolveDay resolves an on-day spec against a concrete month.
func resolveDay(year, month int, spec DaySpec) (int, bool) {
	switch spec.Kind {
	case DayOrdinal:
		if spec.Day > caldate.DaysInMonth(year, month) {
			return 0, false
		}
		return spec.Day, true
	case DayLast:
		return caldate.NthWeekdayOfMonth(year, month, spec.Weekday, -1)
	default:
		return caldate.NextWeekdayOnOrAfter(year, month, spec.Weekday, spec.Day)
	}
}

// untilUTCPosix converts a segment's until-spec to UTC posix seconds.
func untilUTCPosix(u *Until, gmtoff, save int) int64 {
	day := 1
	if d, ok := resolveDay(u.Year, u.Month, u.Day); ok {
		day = d
	}
	local := instant.New(u.Year, u.Month, day, 0, 0, 0).LocalPosix() + int64(u.AtSecs)
	switch u.AtRef {
	case UTCClock:
		return local
	case StandardClock:
		return local - int64(gmtoff)
	default:
		return local - int64(gmtoff) - int64(save)
	}
}

// formatName renders a zone's format column: `%s` substitutes the rule
// letter, a `std/dst` slash form picks by saving, anything else is
// literal.
func formatName(format, letter string, daylight bool) string {
	if strings.Contains(format, "%s") {
		return strings.ReplaceAll(format, "%s", letter)
	}
	if i := strings.IndexByte(format, '/'); i >= 0 {
		if daylight {
			return format[i+1:]
		}
		return format[:i]
	}
	return format
}
