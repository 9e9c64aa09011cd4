// Package olson parses zoneinfo source files (Rule, Zone and Link
// lines) and compiles them into timezone descriptors, emitting compact
// recurrence rules when a run of transitions repeats cleanly and
// explicit date lists otherwise.
package olson

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tempical/internal/i18n"
)

// MaxYear stands in for an open-ended `max` bound.
const MaxYear = 9999

// TimeRef says which clock an at-time or until-time is expressed in.
type TimeRef int

const (
	// WallClock is local time including any daylight saving in effect.
	WallClock TimeRef = iota
	// StandardClock is local standard time (saving excluded).
	StandardClock
	// UTCClock is universal time.
	UTCClock
)

// DaySpecKind selects how an on-day field picks the day of month.
type DaySpecKind int

const (
	// DayOrdinal is a literal day of month.
	DayOrdinal DaySpecKind = iota
	// DayLast is `lastSun` and friends: the last such weekday.
	DayLast
	// DayOnOrAfter is `Sun>=8`: the first such weekday on or after a day.
	DayOnOrAfter
)

// DaySpec is a Rule line's on-day field.
type DaySpec struct {
	Kind    DaySpecKind
	Day     int
	Weekday int // 0=Sunday..6=Saturday, for DayLast/DayOnOrAfter
}

// Rule is one `Rule` line.
type Rule struct {
	Name     string
	FromYear int
	ToYear   int // MaxYear for `max`; FromYear for `only`
	InMonth  int // 1..12
	OnDay    DaySpec
	AtSecs   int
	AtRef    TimeRef
	SaveSecs int
	Letter   string // "" for `-`
}

// ZoneRule is one zone continuation segment: the offset and rule set
// in force until the until-spec (or forever for the last segment).
type ZoneRule struct {
	GMTOffSecs int
	RuleRef    string // rule-set name, "" for `-`, or a literal offset spelling
	RuleSecs   int    // parsed literal offset when RuleRef is numeric
	RuleIsTime bool
	Format     string
	Until      *Until
}

// Until is a zone segment's end: year, then progressively finer
// optional fields.
type Until struct {
	Year   int
	Month  int
	Day    DaySpec
	AtSecs int
	AtRef  TimeRef
}

// Zone is a named zone block: its ordered segments.
type Zone struct {
	Name  string
	Rules []*ZoneRule
}

// Set is the parse result of one or more zoneinfo source files.
type Set struct {
	Rules     map[string][]*Rule
	Zones     map[string]*Zone
	ZoneOrder []string
	Links     map[string]string // alias -> target
	LinkOrder []string
}

func NewSet() *Set {
	return &Set{
		Rules: make(map[string][]*Rule),
		Zones: make(map[string]*Zone),
		Links: make(map[string]string),
	}
}

// ParseError reports a malformed zoneinfo source line.
type ParseError struct {
	File   string
	LineNo int
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s (%q)", e.File, e.LineNo, e.Reason, e.Line)
}

// Parse reads one zoneinfo source file into the set. Lines starting
// with `#` or blank lines are skipped; a leading tab or space marks a
// zone continuation line.
func (s *Set) Parse(r io.Reader, filename string) error {
	sc := bufio.NewScanner(r)
	var currentZone *Zone
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := stripComment(raw)
		if strings.TrimSpace(line) == "" {
			continue
		}
		continuation := line[0] == ' ' || line[0] == '\t'
		fields := strings.Fields(line)

		fail := func(reason string) error {
			return &ParseError{File: filename, LineNo: lineNo, Line: raw, Reason: reason}
		}

		if continuation {
			if currentZone == nil {
				return fail("zone continuation line outside a zone block")
			}
			zr, err := parseZoneRule(fields)
			if err != nil {
				return fail(err.Error())
			}
			currentZone.Rules = append(currentZone.Rules, zr)
			continue
		}

		switch fields[0] {
		case "Rule":
			currentZone = nil
			rule, err := parseRule(fields)
			if err != nil {
				return fail(err.Error())
			}
			s.Rules[rule.Name] = append(s.Rules[rule.Name], rule)
		case "Zone":
			if len(fields) < 2 {
				return fail("zone line missing name")
			}
			name := fields[1]
			zr, err := parseZoneRule(fields[2:])
			if err != nil {
				return fail(err.Error())
			}
			zone := &Zone{Name: name, Rules: []*ZoneRule{zr}}
			if _, dup := s.Zones[name]; !dup {
				s.ZoneOrder = append(s.ZoneOrder, name)
			}
			s.Zones[name] = zone
			currentZone = zone
		case "Link":
			currentZone = nil
			if len(fields) < 3 {
				return fail("link line needs target and alias")
			}
			alias := fields[2]
			if _, dup := s.Links[alias]; !dup {
				s.LinkOrder = append(s.LinkOrder, alias)
			}
			s.Links[alias] = fields[1]
		default:
			return fail("unrecognised line kind " + fields[0])
		}
	}
	return sc.Err()
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// parseRule parses `Rule NAME FROM TO - IN ON AT SAVE LETTER`.
func parseRule(fields []string) (*Rule, error) {
	if len(fields) < 10 {
		return nil, fmt.Errorf("rule line needs 10 fields, has %d", len(fields))
	}
	r := &Rule{Name: fields[1]}

	from, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("bad from-year %q", fields[2])
	}
	r.FromYear = from

	switch fields[3] {
	case "only":
		r.ToYear = from
	case "max":
		r.ToYear = MaxYear
	default:
		to, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("bad to-year %q", fields[3])
		}
		r.ToYear = to
	}

	// fields[4] is the reserved TYPE column, always `-`.

	r.InMonth, err = parseMonth(fields[5])
	if err != nil {
		return nil, err
	}
	r.OnDay, err = parseDaySpec(fields[6])
	if err != nil {
		return nil, err
	}
	r.AtSecs, r.AtRef, err = parseClockTime(fields[7])
	if err != nil {
		return nil, err
	}
	r.SaveSecs, _, err = parseClockTime(fields[8])
	if err != nil {
		return nil, err
	}
	if fields[9] != "-" {
		r.Letter = fields[9]
	}
	return r, nil
}

// parseZoneRule parses the `GMTOFF RULES FORMAT [UNTIL...]` tail of a
// zone or continuation line.
func parseZoneRule(fields []string) (*ZoneRule, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("zone rule needs offset, rules and format")
	}
	zr := &ZoneRule{}
	off, _, err := parseClockTime(fields[0])
	if err != nil {
		return nil, fmt.Errorf("bad gmt offset %q", fields[0])
	}
	zr.GMTOffSecs = off

	switch {
	case fields[1] == "-":
		zr.RuleRef = ""
	case looksLikeTime(fields[1]):
		secs, _, err := parseClockTime(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bad literal save %q", fields[1])
		}
		zr.RuleSecs = secs
		zr.RuleIsTime = true
	default:
		zr.RuleRef = fields[1]
	}

	zr.Format = fields[2]

	if len(fields) > 3 {
		u, err := parseUntil(fields[3:])
		if err != nil {
			return nil, err
		}
		zr.Until = u
	}
	return zr, nil
}

func parseUntil(fields []string) (*Until, error) {
	u := &Until{Month: 1, Day: DaySpec{Kind: DayOrdinal, Day: 1}}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("bad until-year %q", fields[0])
	}
	u.Year = year
	if len(fields) > 1 {
		u.Month, err = parseMonth(fields[1])
		if err != nil {
			return nil, err
		}
	}
	if len(fields) > 2 {
		u.Day, err = parseDaySpec(fields[2])
		if err != nil {
			return nil, err
		}
	}
	if len(fields) > 3 {
		u.AtSecs, u.AtRef, err = parseClockTime(fields[3])
		if err != nil {
			return nil, err
		}
	}
	return u, nil
}

var monthNames = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

func parseMonth(s string) (int, error) {
	if m, ok := monthNames[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("bad month %q", s)
}

func parseWeekday(s string) (int, error) {
	for i, name := range i18n.WeekdayNames {
		if strings.HasPrefix(name, s) && len(s) >= 3 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("bad weekday %q", s)
}

func parseDaySpec(s string) (DaySpec, error) {
	switch {
	case strings.HasPrefix(s, "last"):
		wd, err := parseWeekday(s[len("last"):])
		if err != nil {
			return DaySpec{}, err
		}
		return DaySpec{Kind: DayLast, Weekday: wd}, nil
	case strings.Contains(s, ">="):
		parts := strings.SplitN(s, ">=", 2)
		wd, err := parseWeekday(parts[0])
		if err != nil {
			return DaySpec{}, err
		}
		day, err := strconv.Atoi(parts[1])
		if err != nil {
			return DaySpec{}, fmt.Errorf("bad on-day %q", s)
		}
		return DaySpec{Kind: DayOnOrAfter, Day: day, Weekday: wd}, nil
	default:
		day, err := strconv.Atoi(s)
		if err != nil {
			return DaySpec{}, fmt.Errorf("bad on-day %q", s)
		}
		return DaySpec{Kind: DayOrdinal, Day: day}, nil
	}
}

func looksLikeTime(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '-' || c == '+' || (c >= '0' && c <= '9')
}

// parseClockTime parses `[-]h[:mm[:ss]]` with an optional trailing
// `w`/`s`/`u` clock-reference suffix, returning signed seconds.
func parseClockTime(s string) (int, TimeRef, error) {
	ref := WallClock
	if s == "" {
		return 0, ref, fmt.Errorf("empty time")
	}
	switch s[len(s)-1] {
	case 'w':
		s = s[:len(s)-1]
	case 's':
		ref = StandardClock
		s = s[:len(s)-1]
	case 'u', 'g', 'z':
		ref = UTCClock
		s = s[:len(s)-1]
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, ref, fmt.Errorf("bad time %q", s)
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, ref, fmt.Errorf("bad time %q", s)
		}
		switch i {
		case 0:
			total += n * 3600
		case 1:
			total += n * 60
		case 2:
			total += n
		}
	}
	if neg {
		total = -total
	}
	return total, ref, nil
}
