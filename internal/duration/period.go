package duration

import (
	"fmt"
	"strings"

	"tempical/internal/instant"
)

// Period is an ordered (start, end) pair where end is either an
// explicit instant or start+duration. Emission preserves whichever
// form the value was constructed/parsed with.
type Period struct {
	Start       instant.Instant
	end         instant.Instant
	dur         Duration
	useDuration bool
}

// NewWithEnd builds a period from an explicit end instant.
func NewWithEnd(start, end instant.Instant) Period {
	return Period{Start: start, end: end, useDuration: false}
}

// NewWithDuration builds a period from a start instant and a duration.
func NewWithDuration(start instant.Instant, d Duration) Period {
	return Period{Start: start, dur: d, useDuration: true, end: start.AddSeconds(d.TotalSeconds())}
}

// UsesDuration reports whether this period was built/parsed in
// start/duration form (as opposed to start/end form).
func (p Period) UsesDuration() bool { return p.useDuration }

// End returns the end instant. For a period built in duration form it
// was computed from start+duration at construction.
func (p Period) End() instant.Instant {
	return p.end
}

// Duration returns the duration, computing it from end-start lazily if
// the period was constructed in end-instant form.
func (p Period) Duration() Duration {
	if p.useDuration {
		return p.dur
	}
	return FromSeconds(p.end.LocalPosix() - p.Start.LocalPosix())
}

// Contains reports whether dt falls within the half-open interval
// [start, end).
func (p Period) Contains(dt instant.Instant) bool {
	return !dt.Before(p.Start) && dt.Before(p.End())
}

// Overlaps reports whether p and o's half-open intervals intersect.
func (p Period) Overlaps(o Period) bool {
	return p.Start.Before(o.End()) && o.Start.Before(p.End())
}

// ParsePeriod parses `start/end` or `start/duration`, remembering which
// form was given. parseInstant and mode are injected to avoid a
// dependency on the value codec package, which itself depends on
// duration for DURATION values.
func ParsePeriod(data string, parseInstant func(string) (instant.Instant, error), mode ParserMode) (Period, error) {
	parts := strings.SplitN(data, "/", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid period %q: expected start/end or start/duration", data)
	}
	start, err := parseInstant(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", data, err)
	}
	if strings.HasPrefix(strings.ToUpper(parts[1]), "P") {
		d, err := Parse(parts[1], mode)
		if err != nil {
			return Period{}, fmt.Errorf("invalid period %q: %w", data, err)
		}
		return NewWithDuration(start, d), nil
	}
	end, err := parseInstant(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", data, err)
	}
	return NewWithEnd(start, end), nil
}

// Text renders the period preserving the form it was built/parsed with.
// renderInstant is injected for the same layering reason as ParsePeriod.
func (p Period) Text(renderInstant func(instant.Instant) string) string {
	if p.useDuration {
		return renderInstant(p.Start) + "/" + p.dur.Text()
	}
	return renderInstant(p.Start) + "/" + renderInstant(p.end)
}
