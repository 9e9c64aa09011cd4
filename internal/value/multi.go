package value

import (
	"strings"

	"tempical/internal/utils"
)

// Multi is the comma-separated multi-value wrapper: a sequence of
// values of one element kind. A backslash immediately preceding a
// comma escapes that comma in text form, so `a\,b` parses as one
// element.
type Multi struct {
	Elem   Kind
	Values []Value
}

func NewMulti(elem Kind, values []Value) *Multi { return &Multi{Elem: elem, Values: values} }

// ParseMulti splits raw on unescaped commas and parses each token as
// elem, delegating policy handling to the element codec.
func ParseMulti(elem Kind, raw string, ctx Context) (*Multi, error) {
	m := &Multi{Elem: elem}
	for _, tok := range utils.SplitUnescaped(raw, ',') {
		v, err := ParseText(elem, tok, ctx)
		if err != nil {
			return nil, err
		}
		m.Values = append(m.Values, v)
	}
	return m, nil
}

func (v *Multi) Kind() Kind { return KindMulti }

func (v *Multi) Text() string {
	parts := make([]string, len(v.Values))
	for i, e := range v.Values {
		parts[i] = e.Text()
	}
	return strings.Join(parts, ",")
}

func (v *Multi) JSON() interface{} {
	out := make([]interface{}, len(v.Values))
	for i, e := range v.Values {
		out[i] = e.JSON()
	}
	return out
}

func (v *Multi) XML() []XMLElem {
	var out []XMLElem
	for _, e := range v.Values {
		out = append(out, e.XML()...)
	}
	return out
}

func (v *Multi) Duplicate() Value {
	d := &Multi{Elem: v.Elem, Values: make([]Value, len(v.Values))}
	for i, e := range v.Values {
		d.Values[i] = e.Duplicate()
	}
	return d
}

func (v *Multi) Equal(o Value) bool {
	ov, ok := o.(*Multi)
	if !ok || v.Elem != ov.Elem || len(v.Values) != len(ov.Values) {
		return false
	}
	for i := range v.Values {
		if !v.Values[i].Equal(ov.Values[i]) {
			return false
		}
	}
	return true
}
