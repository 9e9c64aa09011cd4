package recur

import (
	"fmt"
	"sort"

	"tempical/internal/caldate"
	"tempical/internal/instant"
)

// TooManyInstances is returned when a caller-supplied ceiling on
// expansion is exceeded, before memory explosion rather than after.
type TooManyInstances struct {
	Limit int
}

func (e *TooManyInstances) Error() string {
	return fmt.Sprintf("recurrence expansion exceeded %d instances", e.Limit)
}

// defaultMaxInstances bounds internal candidate generation when the
// caller does not supply a tighter ceiling, preventing an unbounded
// rule (e.g. SECONDLY with a distant window) from running forever.
const defaultMaxInstances = 200000

// Expand returns the sorted, deduplicated instants this rule produces
// within the half-open window [ws, we), anchored at dtstart, honoring
// COUNT (counted across the rule's full history, not per query) and
// UNTIL (inclusive). maxInstances caps the number of instances the
// engine will materialise internally before giving up with
// TooManyInstances; 0 selects the internal default.
func (r *Rule) Expand(dtstart, ws, we instant.Instant, maxInstances int) ([]instant.Instant, bool, error) {
	if maxInstances <= 0 {
		maxInstances = defaultMaxInstances
	}

	upTo := we.LocalPosix()

	r.mu.Lock()
	cacheValid := r.cache.valid && r.cache.we >= upTo
	var full []instant.Instant
	fullyCached := false
	if cacheValid {
		full = r.cache.instants
		fullyCached = r.cache.fullyCached
	}
	r.mu.Unlock()

	if !cacheValid {
		generated, done, err := r.generate(dtstart, upTo, maxInstances)
		if err != nil {
			return nil, false, err
		}
		full = generated
		fullyCached = done
		r.mu.Lock()
		r.cache = ruleCache{valid: true, ws: dtstart.LocalPosix(), we: upTo, fullyCached: done, instants: generated}
		r.mu.Unlock()
	}

	wsPosix, wePosix := ws.LocalPosix(), we.LocalPosix()
	var out []instant.Instant
	limited := r.UseCount || r.UseUntil
	for _, inst := range full {
		p := inst.LocalPosix()
		if p < wsPosix {
			limited = true
			continue
		}
		if p >= wePosix {
			limited = true
			continue
		}
		out = append(out, inst)
	}
	if !fullyCached {
		// There may be more instances beyond `we` that we haven't
		// generated; the stream is conceptually infinite there.
		limited = true
	}
	return out, limited, nil
}

// generate produces the rule's full history from dtstart up to (and
// slightly past) upTo, stopping early if COUNT or UNTIL terminates the
// stream first. The returned bool reports whether generation is
// complete forever (no more instances exist beyond what's returned).
func (r *Rule) generate(dtstart instant.Instant, upTo int64, maxInstances int) ([]instant.Instant, bool, error) {
	var out []instant.Instant
	count := 0
	untilPosix := int64(0)
	if r.UseUntil {
		untilPosix = r.Until.LocalPosix()
	}

	steps := 0
	const maxSteps = 2000000
	for k := 0; ; k++ {
		steps++
		if steps > maxSteps {
			return out, false, nil
		}
		period := r.periodInstants(dtstart, k)
		sort.Slice(period, func(i, j int) bool { return period[i].Before(period[j]) })
		for _, inst := range period {
			// The first period can yield candidates earlier than the
			// anchor (a BYDAY before the start's weekday); the stream
			// begins at dtstart.
			if inst.Before(dtstart) {
				continue
			}
			if r.UseUntil && inst.LocalPosix() > untilPosix {
				return out, true, nil
			}
			if r.UseCount {
				count++
				if count > r.Count {
					return out, true, nil
				}
			}
			out = append(out, inst)
			if len(out) > maxInstances {
				return nil, false, &TooManyInstances{Limit: maxInstances}
			}
		}
		if !r.UseCount && !r.UseUntil {
			if len(period) > 0 && period[len(period)-1].LocalPosix() >= upTo {
				return out, false, nil
			}
			if len(out) == 0 && k > 400 {
				// No output at all after many periods (e.g. an
				// impossible BYMONTHDAY filter): bail to avoid
				// spinning forever.
				return out, false, nil
			}
		}
	}
}

// periodInstants computes the instants produced by the k-th period of
// this rule (0-based, k=0 is the period containing dtstart).
func (r *Rule) periodInstants(dtstart instant.Instant, k int) []instant.Instant {
	switch r.Freq {
	case Yearly:
		return r.yearlyPeriod(dtstart, dtstart.Year+k*r.Interval)
	case Monthly:
		total := dtstart.Year*12 + (dtstart.Month - 1) + k*r.Interval
		y := total / 12
		m := total%12 + 1
		return r.monthlyPeriod(dtstart, y, m)
	case Weekly:
		weekStart := alignToWeekStart(dtstart, r.WeekStart).AddSeconds(int64(k*r.Interval*7) * 86400)
		return r.weeklyPeriod(dtstart, weekStart)
	case Daily:
		d := dtstart.AddSeconds(int64(k*r.Interval) * 86400)
		return r.dailyPeriod(dtstart, d)
	case Hourly:
		d := dtstart.AddSeconds(int64(k*r.Interval) * 3600)
		return r.subDayPeriod(dtstart, d)
	case Minutely:
		d := dtstart.AddSeconds(int64(k*r.Interval) * 60)
		return r.subDayPeriod(dtstart, d)
	case Secondly:
		d := dtstart.AddSeconds(int64(k * r.Interval))
		return r.subDayPeriod(dtstart, d)
	}
	return nil
}

func alignToWeekStart(dt instant.Instant, wkst int) instant.Instant {
	wd := dt.Weekday()
	back := (wd - wkst + 7) % 7
	return dt.AddSeconds(-int64(back) * 86400)
}

// --- YEARLY ---

type ymd struct{ y, m, d int }

func (r *Rule) yearlyPeriod(dtstart instant.Instant, year int) []instant.Instant {
	var dates []ymd

	months := r.ByMonth
	hasExpanders := len(r.ByMonth) > 0 || len(r.ByWeekNo) > 0 || len(r.ByYearDay) > 0 ||
		len(r.ByMonthDay) > 0 || len(r.ByDay) > 0

	switch {
	case len(r.ByWeekNo) > 0:
		for _, d := range weekNoDays(year, r.WeekStart, r.ByWeekNo) {
			dates = append(dates, ymd{d.Year, d.Month, d.Day})
		}
		if len(r.ByDay) > 0 {
			dates = filterYMDByWeekday(dates, r.ByDay)
		}
	case len(r.ByYearDay) > 0:
		for _, n := range r.ByYearDay {
			if d, ok := yearDayToDate(year, n); ok {
				dates = append(dates, ymd{d.Year, d.Month, d.Day})
			}
		}
		if len(r.ByDay) > 0 {
			dates = filterYMDByWeekday(dates, r.ByDay)
		}
	case len(r.ByMonthDay) > 0:
		if len(months) == 0 {
			for m := 1; m <= 12; m++ {
				months = append(months, m)
			}
		}
		for _, m := range months {
			for _, n := range r.ByMonthDay {
				if day, ok := monthDayFromSigned(year, m, n); ok {
					dates = append(dates, ymd{year, m, day})
				}
			}
		}
		if len(r.ByDay) > 0 {
			dates = filterYMDByWeekday(dates, r.ByDay)
		}
	case len(r.ByDay) > 0:
		if len(months) > 0 {
			for _, m := range months {
				for _, w := range r.ByDay {
					dates = append(dates, nthWeekdayInMonth(year, m, w)...)
				}
			}
		} else {
			for _, w := range r.ByDay {
				dates = append(dates, nthWeekdayInYear(year, w)...)
			}
		}
	case len(months) > 0:
		for _, m := range months {
			day := dtstart.Day
			if day <= caldate.DaysInMonth(year, m) {
				dates = append(dates, ymd{year, m, day})
			}
		}
	default:
		if !hasExpanders {
			if dtstart.Month == 2 && dtstart.Day == 29 && !caldate.IsLeapYear(year) {
				break
			}
			dates = append(dates, ymd{year, dtstart.Month, dtstart.Day})
		}
	}

	seen := map[ymd]bool{}
	var uniq []ymd
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}

	var out []instant.Instant
	for _, d := range uniq {
		out = append(out, r.timesFor(dtstart, d.y, d.m, d.d)...)
	}
	return applySetPos(out, r.BySetPos)
}

// --- MONTHLY ---

func (r *Rule) monthlyPeriod(dtstart instant.Instant, year, month int) []instant.Instant {
	var days []int
	switch {
	case len(r.ByMonthDay) > 0:
		for _, n := range r.ByMonthDay {
			if day, ok := monthDayFromSigned(year, month, n); ok {
				days = append(days, day)
			}
		}
		if len(r.ByDay) > 0 {
			days = filterDaysByWeekday(year, month, days, r.ByDay)
		}
	case len(r.ByDay) > 0:
		for _, w := range r.ByDay {
			for _, d := range nthWeekdayInMonth(year, month, w) {
				days = append(days, d.d)
			}
		}
	default:
		if dtstart.Day <= caldate.DaysInMonth(year, month) {
			days = append(days, dtstart.Day)
		}
	}

	seen := map[int]bool{}
	var uniq []int
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	sort.Ints(uniq)

	var out []instant.Instant
	for _, d := range uniq {
		out = append(out, r.timesFor(dtstart, year, month, d)...)
	}
	return applySetPos(out, r.BySetPos)
}

// --- WEEKLY ---

func (r *Rule) weeklyPeriod(dtstart, weekStart instant.Instant) []instant.Instant {
	var weekdays []int
	if len(r.ByDay) > 0 {
		for _, w := range r.ByDay {
			weekdays = append(weekdays, w.Weekday)
		}
	} else {
		weekdays = append(weekdays, dtstart.Weekday())
	}
	sort.Slice(weekdays, func(i, j int) bool {
		return (weekdays[i]-r.WeekStart+7)%7 < (weekdays[j]-r.WeekStart+7)%7
	})

	var out []instant.Instant
	for _, wd := range weekdays {
		offset := (wd - r.WeekStart + 7) % 7
		d := weekStart.AddSeconds(int64(offset) * 86400)
		out = append(out, r.timesFor(dtstart, d.Year, d.Month, d.Day)...)
	}
	return applySetPos(out, r.BySetPos)
}

// --- DAILY / HOURLY / MINUTELY / SECONDLY (contracting-only by-parts) ---

func (r *Rule) dailyPeriod(dtstart, day instant.Instant) []instant.Instant {
	if len(r.ByMonth) > 0 && !intInList(day.Month, r.ByMonth) {
		return nil
	}
	if len(r.ByMonthDay) > 0 {
		match := false
		for _, n := range r.ByMonthDay {
			if d, ok := monthDayFromSigned(day.Year, day.Month, n); ok && d == day.Day {
				match = true
				break
			}
		}
		if !match {
			return nil
		}
	}
	if len(r.ByYearDay) > 0 {
		match := false
		for _, n := range r.ByYearDay {
			if d, ok := yearDayToDate(day.Year, n); ok && d.Month == day.Month && d.Day == day.Day {
				match = true
				break
			}
		}
		if !match {
			return nil
		}
	}
	if len(r.ByDay) > 0 && !matchesWeekdayList(day.Weekday(), r.ByDay) {
		return nil
	}
	out := r.timesFor(dtstart, day.Year, day.Month, day.Day)
	return applySetPos(out, r.BySetPos)
}

func (r *Rule) subDayPeriod(dtstart, at instant.Instant) []instant.Instant {
	if len(r.ByMonth) > 0 && !intInList(at.Month, r.ByMonth) {
		return nil
	}
	if len(r.ByDay) > 0 && !matchesWeekdayList(at.Weekday(), r.ByDay) {
		return nil
	}
	if len(r.ByHour) > 0 && !intInList(at.Hour, r.ByHour) {
		return nil
	}
	if len(r.ByMinute) > 0 && !intInList(at.Minute, r.ByMinute) {
		return nil
	}
	if len(r.BySecond) > 0 && !intInList(at.Second, r.BySecond) {
		return nil
	}
	return []instant.Instant{at}
}

// timesFor cartesian-expands BYHOUR/BYMINUTE/BYSECOND (defaulting to
// dtstart's time-of-day) against a civil date.
func (r *Rule) timesFor(dtstart instant.Instant, year, month, day int) []instant.Instant {
	hours := r.ByHour
	if len(hours) == 0 {
		hours = []int{dtstart.Hour}
	}
	minutes := r.ByMinute
	if len(minutes) == 0 {
		minutes = []int{dtstart.Minute}
	}
	seconds := r.BySecond
	if len(seconds) == 0 {
		seconds = []int{dtstart.Second}
	}
	var out []instant.Instant
	for _, h := range hours {
		for _, mi := range minutes {
			for _, s := range seconds {
				inst := dtstart
				inst.Year, inst.Month, inst.Day = year, month, day
				inst.Hour, inst.Minute, inst.Second = h, mi, s
				out = append(out, inst)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func applySetPos(in []instant.Instant, setpos []int) []instant.Instant {
	if len(setpos) == 0 {
		return in
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Before(in[j]) })
	var out []instant.Instant
	n := len(in)
	for _, p := range setpos {
		idx := p
		if idx < 0 {
			idx = n + idx
		} else {
			idx = idx - 1
		}
		if idx >= 0 && idx < n {
			out = append(out, in[idx])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func intInList(n int, list []int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}

func matchesWeekdayList(weekday int, list []WeekdayNum) bool {
	for _, w := range list {
		if w.Weekday == weekday {
			return true
		}
	}
	return false
}

// monthDayFromSigned resolves a BYMONTHDAY value (1..31 or -1..-31)
// against a specific month/year. A value outside the month's actual
// length is silently skipped; it does not roll into the next month.
func monthDayFromSigned(year, month, n int) (int, bool) {
	days := caldate.DaysInMonth(year, month)
	var day int
	if n > 0 {
		day = n
	} else {
		day = days + n + 1
	}
	if day < 1 || day > days {
		return 0, false
	}
	return day, true
}

type civilDate struct{ Year, Month, Day int }

// yearDayToDate resolves a BYYEARDAY value (1..366 or -1..-366).
func yearDayToDate(year, n int) (civilDate, bool) {
	daysInYear := 365
	if caldate.IsLeapYear(year) {
		daysInYear = 366
	}
	var ord int
	if n > 0 {
		ord = n
	} else {
		ord = daysInYear + n + 1
	}
	if ord < 1 || ord > daysInYear {
		return civilDate{}, false
	}
	month := 1
	remaining := ord
	for remaining > caldate.DaysInMonth(year, month) {
		remaining -= caldate.DaysInMonth(year, month)
		month++
	}
	return civilDate{year, month, remaining}, true
}

// nthWeekdayInMonth resolves BYDAY (ordinal weekday) within one month.
func nthWeekdayInMonth(year, month int, w WeekdayNum) []ymd {
	type t = ymd
	if w.Ordinal != 0 {
		if day, ok := caldate.NthWeekdayOfMonth(year, month, w.Weekday, w.Ordinal); ok {
			return []t{{year, month, day}}
		}
		return nil
	}
	var out []t
	for day := 1; day <= caldate.DaysInMonth(year, month); day++ {
		if caldate.DayOfWeek(year, month, day) == w.Weekday {
			out = append(out, t{year, month, day})
		}
	}
	return out
}

// nthWeekdayInYear resolves BYDAY within a whole year (YEARLY without BYMONTH).
func nthWeekdayInYear(year int, w WeekdayNum) []ymd {
	type t = ymd
	if w.Ordinal == 0 {
		var out []t
		for m := 1; m <= 12; m++ {
			out = append(out, nthWeekdayInMonth(year, m, w)...)
		}
		return out
	}
	// Collect every matching weekday across the year in order, then
	// pick the nth (or nth-from-end).
	var all []t
	for m := 1; m <= 12; m++ {
		all = append(all, nthWeekdayInMonth(year, m, WeekdayNum{Weekday: w.Weekday})...)
	}
	idx := w.Ordinal
	if idx > 0 {
		idx--
	} else {
		idx = len(all) + idx
	}
	if idx < 0 || idx >= len(all) {
		return nil
	}
	return []t{all[idx]}
}

func filterDaysByWeekday(year, month int, days []int, want []WeekdayNum) []int {
	var out []int
	for _, d := range days {
		if matchesWeekdayList(caldate.DayOfWeek(year, month, d), want) {
			out = append(out, d)
		}
	}
	return out
}

func filterYMDByWeekday(dates []ymd, want []WeekdayNum) []ymd {
	var out []ymd
	for _, d := range dates {
		if matchesWeekdayList(caldate.DayOfWeek(d.y, d.m, d.d), want) {
			out = append(out, d)
		}
	}
	return out
}

// weekNoDays resolves BYWEEKNO (ISO-ish week numbering anchored at
// WKST, 1..53 or -1..-53) into the set of days belonging to the named
// weeks of year.
func weekNoDays(year, wkst int, weekNos []int) []civilDate {
	jan1 := instant.New(year, 1, 1, 0, 0, 0)
	firstWeekStart := alignToWeekStart(jan1, wkst)
	if jan1.Weekday() != wkst {
		// If Jan 1 is not WKST, the first aligned week start is
		// already <= Jan 1; that is week 1.
	}
	dec31 := instant.New(year, 12, 31, 0, 0, 0)
	lastWeekStart := alignToWeekStart(dec31, wkst)
	totalWeeks := int((lastWeekStart.LocalPosix()-firstWeekStart.LocalPosix())/86400/7) + 1

	var out []civilDate
	for _, n := range weekNos {
		idx := n
		if idx > 0 {
			idx--
		} else {
			idx = totalWeeks + idx
		}
		if idx < 0 || idx >= totalWeeks {
			continue
		}
		start := firstWeekStart.AddSeconds(int64(idx*7) * 86400)
		for i := 0; i < 7; i++ {
			d := start.AddSeconds(int64(i) * 86400)
			out = append(out, civilDate{d.Year, d.Month, d.Day})
		}
	}
	return out
}
