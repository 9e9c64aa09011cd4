package value

import (
	"strings"

	"tempical/internal/duration"
	"tempical/internal/instant"
)

// Dur is the DURATION codec, a thin wrapper over duration.Duration.
type Dur struct{ D duration.Duration }

func NewDuration(d duration.Duration) *Dur { return &Dur{D: d} }

func init() {
	register(KindDuration, func(raw string, ctx Context) (Value, error) {
		mode := duration.ModeRaise
		if ctx.DurationTrailingData != PolicyRaise {
			mode = duration.ModeAccept
		}
		d, err := duration.Parse(raw, mode)
		if err != nil {
			return nil, &InvalidValueError{Input: raw, Reason: err.Error()}
		}
		return &Dur{D: d}, nil
	})
}

func (v *Dur) Kind() Kind        { return KindDuration }
func (v *Dur) Text() string      { return v.D.Text() }
func (v *Dur) JSON() interface{} { return v.D.Text() }
func (v *Dur) XML() []XMLElem {
	return []XMLElem{{Name: "duration", Text: v.D.Text()}}
}
func (v *Dur) Duplicate() Value { d := *v; return &d }
func (v *Dur) Equal(o Value) bool {
	ov, ok := o.(*Dur)
	return ok && v.D.TotalSeconds() == ov.D.TotalSeconds()
}

// PeriodValue is the PERIOD codec: `start/end` or `start/duration`,
// preserving whichever representation was parsed for round-trip
// emission.
type PeriodValue struct{ P duration.Period }

func NewPeriod(p duration.Period) *PeriodValue { return &PeriodValue{P: p} }

func init() {
	register(KindPeriod, func(raw string, ctx Context) (Value, error) {
		p, err := parsePeriod(raw, ctx)
		if err != nil {
			return nil, err
		}
		return &PeriodValue{P: p}, nil
	})
}

func parsePeriod(raw string, ctx Context) (duration.Period, error) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return duration.Period{}, &InvalidValueError{Input: raw, Reason: "expected start/end or start/duration"}
	}
	start, err := ParseInstant(parts[0])
	if err != nil {
		return duration.Period{}, err
	}
	if strings.HasPrefix(parts[1], "P") || strings.HasPrefix(parts[1], "+P") || strings.HasPrefix(parts[1], "-P") {
		mode := duration.ModeRaise
		if ctx.DurationTrailingData != PolicyRaise {
			mode = duration.ModeAccept
		}
		d, err := duration.Parse(parts[1], mode)
		if err != nil {
			return duration.Period{}, &InvalidValueError{Input: raw, Reason: err.Error()}
		}
		return duration.NewWithDuration(start, d), nil
	}
	end, err := ParseInstant(parts[1])
	if err != nil {
		return duration.Period{}, err
	}
	return duration.NewWithEnd(start, end), nil
}

func (v *PeriodValue) Kind() Kind { return KindPeriod }

func (v *PeriodValue) Text() string {
	if v.P.UsesDuration() {
		return RenderInstant(v.P.Start) + "/" + v.P.Duration().Text()
	}
	return RenderInstant(v.P.Start) + "/" + RenderInstant(v.P.End())
}

func (v *PeriodValue) JSON() interface{} {
	if v.P.UsesDuration() {
		return renderInstantXML(v.P.Start) + "/" + v.P.Duration().Text()
	}
	return renderInstantXML(v.P.Start) + "/" + renderInstantXML(v.P.End())
}

func (v *PeriodValue) XML() []XMLElem {
	children := []XMLElem{{Name: "start", Text: renderInstantXML(v.P.Start)}}
	if v.P.UsesDuration() {
		children = append(children, XMLElem{Name: "duration", Text: v.P.Duration().Text()})
	} else {
		children = append(children, XMLElem{Name: "end", Text: renderInstantXML(v.P.End())})
	}
	return []XMLElem{{Name: "period", Children: children}}
}

func (v *PeriodValue) Duplicate() Value { d := *v; return &d }
func (v *PeriodValue) Equal(o Value) bool {
	ov, ok := o.(*PeriodValue)
	return ok && v.P.Start.StructuralEqual(ov.P.Start) && v.P.End().StructuralEqual(ov.P.End())
}

// StartInstant and OverlapsWindow adapt duration.Period to the shape
// the recurrence-set arithmetic consumes.
func (v *PeriodValue) StartInstant() instant.Instant { return v.P.Start }
func (v *PeriodValue) OverlapsWindow(ws, we instant.Instant) bool {
	return v.P.Start.Before(we) && ws.Before(v.P.End())
}
