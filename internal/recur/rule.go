// Package recur implements recurrence expansion: the RRULE grammar,
// the expand/contract by-part matrix, per-rule result caching, and
// recurrence-set (RRULE/EXRULE/RDATE/EXDATE and period variants) set
// arithmetic.
package recur

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"tempical/internal/i18n"
	"tempical/internal/instant"
)

// Frequency is the RRULE FREQ value.
type Frequency int

const (
	Secondly Frequency = iota
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

var freqNames = map[Frequency]string{
	Secondly: "SECONDLY", Minutely: "MINUTELY", Hourly: "HOURLY",
	Daily: "DAILY", Weekly: "WEEKLY", Monthly: "MONTHLY", Yearly: "YEARLY",
}
var namesToFreq = map[string]Frequency{}

func init() {
	for f, n := range freqNames {
		namesToFreq[n] = f
	}
}

// WeekdayNum is a BYDAY value: [+/-N]WD. Ordinal == 0 means "every
// occurrence of this weekday in the period" (no position constraint).
type WeekdayNum struct {
	Ordinal int
	Weekday int // 0=Sunday..6=Saturday, per caldate
}

func (w WeekdayNum) String() string {
	if w.Ordinal == 0 {
		return i18n.WeekdayAbbrev[w.Weekday]
	}
	return fmt.Sprintf("%d%s", w.Ordinal, i18n.WeekdayAbbrev[w.Weekday])
}

// Rule is one RRULE/EXRULE recurrence rule, with its own expansion
// cache.
type Rule struct {
	Freq     Frequency
	Interval int // default 1

	UseUntil bool
	Until    instant.Instant
	UseCount bool
	Count    int

	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []WeekdayNum
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int

	WeekStart int // 0=Sunday..6=Saturday, default Monday

	mu    sync.Mutex
	cache ruleCache
}

type ruleCache struct {
	valid        bool
	ws, we       int64
	fullyCached  bool
	instants     []instant.Instant
}

// New returns a Rule with spec defaults: FREQ=YEARLY, INTERVAL=1, WKST=Monday.
func New() *Rule {
	return &Rule{Freq: Yearly, Interval: 1, WeekStart: 1}
}

// clear invalidates the expansion cache. Every mutating setter below
// calls this only when the new value actually differs from the old
// one.
func (r *Rule) clear() {
	r.mu.Lock()
	r.cache = ruleCache{}
	r.mu.Unlock()
}

func (r *Rule) SetFreq(f Frequency) {
	if r.Freq != f {
		r.Freq = f
		r.clear()
	}
}

func (r *Rule) SetInterval(n int) {
	if n <= 0 {
		n = 1
	}
	if r.Interval != n {
		r.Interval = n
		r.clear()
	}
}

func (r *Rule) SetUntil(u instant.Instant) {
	if r.UseUntil && r.Until.StructuralEqual(u) {
		return
	}
	r.UseUntil = true
	r.UseCount = false
	r.Until = u
	r.clear()
}

func (r *Rule) SetCount(n int) {
	if r.UseCount && r.Count == n {
		return
	}
	r.UseCount = true
	r.UseUntil = false
	r.Count = n
	r.clear()
}

func (r *Rule) SetByDay(v []WeekdayNum) {
	if !equalWeekdayNums(r.ByDay, v) {
		r.ByDay = v
		r.clear()
	}
}

func (r *Rule) SetByMonth(v []int)    { r.setIntList(&r.ByMonth, v) }
func (r *Rule) SetByMonthDay(v []int) { r.setIntList(&r.ByMonthDay, v) }
func (r *Rule) SetByYearDay(v []int)  { r.setIntList(&r.ByYearDay, v) }
func (r *Rule) SetByWeekNo(v []int)   { r.setIntList(&r.ByWeekNo, v) }
func (r *Rule) SetByHour(v []int)     { r.setIntList(&r.ByHour, v) }
func (r *Rule) SetByMinute(v []int)   { r.setIntList(&r.ByMinute, v) }
func (r *Rule) SetBySecond(v []int)   { r.setIntList(&r.BySecond, v) }
func (r *Rule) SetBySetPos(v []int)   { r.setIntList(&r.BySetPos, v) }

func (r *Rule) setIntList(field *[]int, v []int) {
	if !equalIntListsUnordered(*field, v) {
		*field = v
		r.clear()
	}
}

func equalIntListsUnordered(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	ac, bc := append([]int(nil), a...), append([]int(nil), b...)
	sort.Ints(ac)
	sort.Ints(bc)
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

func equalWeekdayNums(a, b []WeekdayNum) bool {
	if len(a) != len(b) {
		return false
	}
	ac := append([]WeekdayNum(nil), a...)
	bc := append([]WeekdayNum(nil), b...)
	less := func(s []WeekdayNum) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Ordinal != s[j].Ordinal {
				return s[i].Ordinal < s[j].Ordinal
			}
			return s[i].Weekday < s[j].Weekday
		}
	}
	sort.Slice(ac, less(ac))
	sort.Slice(bc, less(bc))
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

// Parse parses the `K=V;K=V;...` RRULE/EXRULE grammar.
func Parse(text string) (*Rule, error) {
	r := New()
	r.UseUntil = false
	seenUntil, seenCount := false, false
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid recurrence part %q", part)
		}
		key, val := strings.ToUpper(kv[0]), kv[1]
		var err error
		switch key {
		case "FREQ":
			f, ok := namesToFreq[strings.ToUpper(val)]
			if !ok {
				return nil, fmt.Errorf("invalid FREQ %q", val)
			}
			r.Freq = f
		case "INTERVAL":
			n, perr := strconv.Atoi(val)
			if perr != nil || n <= 0 {
				return nil, fmt.Errorf("invalid INTERVAL %q", val)
			}
			r.Interval = n
		case "UNTIL":
			return nil, fmt.Errorf("UNTIL requires instant parsing; use ParseWithInstant")
		case "COUNT":
			n, perr := strconv.Atoi(val)
			if perr != nil || n <= 0 {
				return nil, fmt.Errorf("invalid COUNT %q", val)
			}
			r.Count, r.UseCount, seenCount = n, true, true
		case "WKST":
			wd, ok := i18n.WeekdayFromAbbrev(strings.ToUpper(val))
			if !ok {
				return nil, fmt.Errorf("invalid WKST %q", val)
			}
			r.WeekStart = wd
		case "BYSECOND":
			r.BySecond, err = parseIntCSV(val, 0, 59)
		case "BYMINUTE":
			r.ByMinute, err = parseIntCSV(val, 0, 59)
		case "BYHOUR":
			r.ByHour, err = parseIntCSV(val, 0, 23)
		case "BYMONTH":
			r.ByMonth, err = parseIntCSV(val, 1, 12)
		case "BYMONTHDAY":
			r.ByMonthDay, err = parseSignedIntCSV(val, 1, 31)
		case "BYYEARDAY":
			r.ByYearDay, err = parseSignedIntCSV(val, 1, 366)
		case "BYWEEKNO":
			r.ByWeekNo, err = parseSignedIntCSV(val, 1, 53)
		case "BYSETPOS":
			r.BySetPos, err = parseSignedIntCSV(val, 1, 366)
		case "BYDAY":
			r.ByDay, err = parseByDayCSV(val)
		default:
			return nil, fmt.Errorf("unknown recurrence key %q", key)
		}
		if err != nil {
			return nil, err
		}
	}
	if seenUntil && seenCount {
		return nil, fmt.Errorf("UNTIL and COUNT are mutually exclusive")
	}
	return r, nil
}

// ParseWithInstant is Parse, additionally accepting an UNTIL value
// parsed via parseInstant (injected to avoid a dependency on the value
// codec package, which itself may depend on recur for RECUR values).
func ParseWithInstant(text string, parseInstant func(string) (instant.Instant, error)) (*Rule, error) {
	// First pass without UNTIL to validate everything else.
	untilRaw := ""
	cleaned := make([]string, 0)
	for _, part := range strings.Split(text, ";") {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(part)), "UNTIL=") {
			untilRaw = strings.TrimSpace(part)[len("UNTIL="):]
			continue
		}
		cleaned = append(cleaned, part)
	}
	r, err := Parse(strings.Join(cleaned, ";"))
	if err != nil {
		return nil, err
	}
	if untilRaw != "" {
		if r.UseCount {
			return nil, fmt.Errorf("UNTIL and COUNT are mutually exclusive")
		}
		u, err := parseInstant(untilRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid UNTIL %q: %w", untilRaw, err)
		}
		r.UseUntil = true
		r.Until = u
	}
	return r, nil
}

func parseIntCSV(val string, min, max int) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(val, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < min || n > max {
			return nil, fmt.Errorf("value %q out of range [%d,%d]", tok, min, max)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseSignedIntCSV(val string, min, max int) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(val, ",") {
		tok = strings.TrimSpace(tok)
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", tok)
		}
		mag := n
		if mag < 0 {
			mag = -mag
		}
		if mag < min || mag > max {
			return nil, fmt.Errorf("value %q out of range [%d,%d]", tok, min, max)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseByDayCSV(val string) ([]WeekdayNum, error) {
	var out []WeekdayNum
	for _, tok := range strings.Split(val, ",") {
		tok = strings.TrimSpace(strings.ToUpper(tok))
		if len(tok) < 2 {
			return nil, fmt.Errorf("invalid BYDAY %q", tok)
		}
		wdStr := tok[len(tok)-2:]
		ordStr := tok[:len(tok)-2]
		wd, ok := i18n.WeekdayFromAbbrev(wdStr)
		if !ok {
			return nil, fmt.Errorf("invalid BYDAY weekday %q", wdStr)
		}
		ord := 0
		if ordStr != "" {
			n, err := strconv.Atoi(ordStr)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("invalid BYDAY ordinal %q", ordStr)
			}
			ord = n
		}
		out = append(out, WeekdayNum{Ordinal: ord, Weekday: wd})
	}
	return out, nil
}

// Text serialises the rule back to `K=V;K=V;...` form. renderInstant
// renders UNTIL using the value codec's DATE/DATE-TIME text form.
func (r *Rule) Text(renderInstant func(instant.Instant) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FREQ=%s", freqNames[r.Freq])
	if r.Interval > 1 {
		fmt.Fprintf(&b, ";INTERVAL=%d", r.Interval)
	}
	writeIntList(&b, "BYSECOND", r.BySecond)
	writeIntList(&b, "BYMINUTE", r.ByMinute)
	writeIntList(&b, "BYHOUR", r.ByHour)
	if len(r.ByDay) > 0 {
		b.WriteString(";BYDAY=")
		for i, w := range r.ByDay {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(w.String())
		}
	}
	writeIntList(&b, "BYMONTHDAY", r.ByMonthDay)
	writeIntList(&b, "BYYEARDAY", r.ByYearDay)
	writeIntList(&b, "BYWEEKNO", r.ByWeekNo)
	writeIntList(&b, "BYMONTH", r.ByMonth)
	writeIntList(&b, "BYSETPOS", r.BySetPos)
	if r.WeekStart != 1 {
		fmt.Fprintf(&b, ";WKST=%s", i18n.WeekdayAbbrev[r.WeekStart])
	}
	if r.UseCount {
		fmt.Fprintf(&b, ";COUNT=%d", r.Count)
	} else if r.UseUntil {
		fmt.Fprintf(&b, ";UNTIL=%s", renderInstant(r.Until))
	}
	return b.String()
}

func writeIntList(b *strings.Builder, key string, v []int) {
	if len(v) == 0 {
		return
	}
	fmt.Fprintf(b, ";%s=", key)
	for i, n := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%d", n)
	}
}

// Duplicate returns a deep copy with a fresh (empty) cache.
func (r *Rule) Duplicate() *Rule {
	d := &Rule{
		Freq:      r.Freq,
		Interval:  r.Interval,
		UseUntil:  r.UseUntil,
		Until:     r.Until,
		UseCount:  r.UseCount,
		Count:     r.Count,
		WeekStart: r.WeekStart,
	}
	d.BySecond = append([]int(nil), r.BySecond...)
	d.ByMinute = append([]int(nil), r.ByMinute...)
	d.ByHour = append([]int(nil), r.ByHour...)
	d.ByDay = append([]WeekdayNum(nil), r.ByDay...)
	d.ByMonthDay = append([]int(nil), r.ByMonthDay...)
	d.ByYearDay = append([]int(nil), r.ByYearDay...)
	d.ByWeekNo = append([]int(nil), r.ByWeekNo...)
	d.ByMonth = append([]int(nil), r.ByMonth...)
	d.BySetPos = append([]int(nil), r.BySetPos...)
	return d
}
