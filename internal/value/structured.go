package value

import (
	"strings"

	"tempical/internal/utils"
)

// Structured is the shared codec behind the vCard special-variant
// values: ADR (seven components), N (five components) and ORG (open
// list). Each component is itself a list of strings, since a component
// may carry comma-separated alternatives.
type Structured struct {
	kind       Kind
	Components [][]string
}

// adrComponentCount and nComponentCount are the fixed shapes of ADR
// and N. A short ADR is padded (or rejected, per the parser policy on
// component count); ORG accepts any length.
const (
	adrComponentCount = 7
	nComponentCount   = 5
)

// adrXMLNames and nXMLNames name the per-component XML children.
var adrXMLNames = [adrComponentCount]string{
	"pobox", "ext", "street", "locality", "region", "code", "country",
}
var nXMLNames = [nComponentCount]string{
	"surname", "given", "additional", "prefix", "suffix",
}

func NewAdr(components [][]string) *Structured {
	return &Structured{kind: KindAdr, Components: padComponents(components, adrComponentCount)}
}

func NewN(components [][]string) *Structured {
	return &Structured{kind: KindN, Components: padComponents(components, nComponentCount)}
}

func NewOrg(units []string) *Structured {
	s := &Structured{kind: KindOrg}
	for _, u := range units {
		s.Components = append(s.Components, []string{u})
	}
	return s
}

func padComponents(c [][]string, n int) [][]string {
	for len(c) < n {
		c = append(c, []string{""})
	}
	return c
}

func init() {
	register(KindAdr, func(raw string, ctx Context) (Value, error) {
		c, err := parseStructured(raw, ctx)
		if err != nil {
			return nil, err
		}
		if len(c) != adrComponentCount && ctx.ADRComponentCount == PolicyRaise {
			return nil, &InvalidValueError{Input: raw, Reason: "ADR requires seven components"}
		}
		if len(c) > adrComponentCount {
			c = c[:adrComponentCount]
		}
		return &Structured{kind: KindAdr, Components: padComponents(c, adrComponentCount)}, nil
	})
	register(KindN, func(raw string, ctx Context) (Value, error) {
		c, err := parseStructured(raw, ctx)
		if err != nil {
			return nil, err
		}
		if len(c) > nComponentCount {
			c = c[:nComponentCount]
		}
		return &Structured{kind: KindN, Components: padComponents(c, nComponentCount)}, nil
	})
	register(KindOrg, func(raw string, ctx Context) (Value, error) {
		c, err := parseStructured(raw, ctx)
		if err != nil {
			return nil, err
		}
		return &Structured{kind: KindOrg, Components: c}, nil
	})
}

// parseStructured splits on unescaped semicolons into components, then
// each component on unescaped commas into alternatives, unescaping
// every leaf.
func parseStructured(raw string, ctx Context) ([][]string, error) {
	var out [][]string
	for _, comp := range utils.SplitUnescaped(raw, ';') {
		var vals []string
		for _, alt := range utils.SplitUnescaped(comp, ',') {
			s, err := UnescapeText(alt, ctx)
			if err != nil {
				return nil, err
			}
			vals = append(vals, s)
		}
		if vals == nil {
			vals = []string{""}
		}
		out = append(out, vals)
	}
	return out, nil
}

func (v *Structured) Kind() Kind { return v.kind }

func (v *Structured) Text() string {
	comps := make([]string, len(v.Components))
	for i, c := range v.Components {
		alts := make([]string, len(c))
		for j, a := range c {
			alts[j] = EscapeText(a)
		}
		comps[i] = strings.Join(alts, ",")
	}
	return strings.Join(comps, ";")
}

func (v *Structured) JSON() interface{} {
	out := make([]interface{}, len(v.Components))
	for i, c := range v.Components {
		if len(c) == 1 {
			out[i] = c[0]
		} else {
			alts := make([]interface{}, len(c))
			for j, a := range c {
				alts[j] = a
			}
			out[i] = alts
		}
	}
	return out
}

func (v *Structured) XML() []XMLElem {
	var names []string
	switch v.kind {
	case KindAdr:
		names = adrXMLNames[:]
	case KindN:
		names = nXMLNames[:]
	default:
		var out []XMLElem
		for _, c := range v.Components {
			out = append(out, XMLElem{Name: "unit", Text: strings.Join(c, ",")})
		}
		return out
	}
	var out []XMLElem
	for i, c := range v.Components {
		if i >= len(names) {
			break
		}
		for _, a := range c {
			out = append(out, XMLElem{Name: names[i], Text: a})
		}
	}
	return out
}

func (v *Structured) Duplicate() Value {
	d := &Structured{kind: v.kind, Components: make([][]string, len(v.Components))}
	for i, c := range v.Components {
		d.Components[i] = append([]string(nil), c...)
	}
	return d
}

func (v *Structured) Equal(o Value) bool {
	ov, ok := o.(*Structured)
	if !ok || v.kind != ov.kind || len(v.Components) != len(ov.Components) {
		return false
	}
	for i := range v.Components {
		if len(v.Components[i]) != len(ov.Components[i]) {
			return false
		}
		for j := range v.Components[i] {
			if v.Components[i][j] != ov.Components[i][j] {
				return false
			}
		}
	}
	return true
}
