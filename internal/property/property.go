package property

import (
	"strings"

	"tempical/internal/utils"
	"tempical/internal/value"
)

// ParamValue is the reserved parameter name that overrides a
// property's declared value type.
const ParamValue = "VALUE"

// Property is a named, typed value with an ordered multimap of
// parameters. Group is the optional vCard group prefix
// (`group.NAME`); iCalendar properties never carry one.
type Property struct {
	Group  string
	Name   string
	Params []*Parameter
	Value  value.Value

	variant value.Variant
}

// InvalidPropertyError reports a malformed property line.
type InvalidPropertyError struct {
	Line   string
	Reason string
}

func (e *InvalidPropertyError) Error() string {
	l := e.Line
	if len(l) > 64 {
		l = l[:64] + "..."
	}
	return "invalid property \"" + l + "\": " + e.Reason
}

// New builds a property with a value of the name's default kind
// already materialised by the caller.
func New(name string, v value.Value) *Property {
	return &Property{Name: utils.UpperASCII(name), Value: v}
}

// NewText builds a TEXT-valued property.
func NewText(name, text string) *Property {
	return New(name, value.NewText(text))
}

// ParseLine parses one unfolded logical line of the form
// `[group.]NAME[;PNAME=pval[,pval]*]*:VALUE`.
func ParseLine(line string, ctx value.Context) (*Property, error) {
	nameEnd, valueStart, ok := splitNameValue(line)
	if !ok {
		return nil, &InvalidPropertyError{Line: line, Reason: "missing ':' separator"}
	}
	p := &Property{variant: ctx.Variant}

	head := line[:nameEnd]
	rawValue := line[valueStart:]

	segs := splitOutsideQuotes(head, ';')
	nameTok := segs[0]
	if ctx.Variant == value.VariantVCard {
		if dot := strings.IndexByte(nameTok, '.'); dot >= 0 {
			p.Group = nameTok[:dot]
			nameTok = nameTok[dot+1:]
		}
	}
	if nameTok == "" {
		return nil, &InvalidPropertyError{Line: line, Reason: "empty property name"}
	}
	p.Name = utils.UpperASCII(nameTok)

	for _, seg := range segs[1:] {
		param, err := parseParam(seg, line, ctx)
		if err != nil {
			return nil, err
		}
		p.Params = append(p.Params, param)
	}

	kind := p.effectiveKind()
	var v value.Value
	var err error
	if isMulti(ctx.Variant, p.Name) {
		v, err = value.ParseMulti(kind, rawValue, ctx)
	} else {
		v, err = value.ParseText(kind, rawValue, ctx)
	}
	if err != nil {
		return nil, &InvalidPropertyError{Line: line, Reason: err.Error()}
	}
	p.Value = v
	return p, nil
}

// parseParam parses one `PNAME=pval[,pval]*` segment.
func parseParam(seg, line string, ctx value.Context) (*Parameter, error) {
	eq := strings.IndexByte(seg, '=')
	if eq < 0 {
		// vCard 2.1 allows a bare parameter value (`TEL;HOME:...`).
		if ctx.MissingParameterValues == value.PolicyRaise {
			return nil, &InvalidPropertyError{Line: line, Reason: "parameter " + seg + " has no value"}
		}
		return &Parameter{Name: "TYPE", Values: []string{seg}}, nil
	}
	name := seg[:eq]
	if name == "" {
		return nil, &InvalidPropertyError{Line: line, Reason: "empty parameter name"}
	}
	param := &Parameter{Name: utils.UpperASCII(name)}
	for _, raw := range splitOutsideQuotes(seg[eq+1:], ',') {
		if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
			raw = raw[1 : len(raw)-1]
		}
		v := decodeParamValue(raw)
		if param.Name == "ENCODING" && utils.FoldCaseEqual(v, "BASE64") && ctx.Base64ParamSynonym != value.PolicyRaise {
			v = "B"
		}
		param.Values = append(param.Values, v)
	}
	return param, nil
}

// effectiveKind runs type determination: the name's declared default,
// overridden by a VALUE parameter, then narrowed to the special
// structured variant when the declared type still equals the default.
func (p *Property) effectiveKind() value.Kind {
	def := DefaultKind(p.variant, p.Name)
	kind := def
	if v := p.FirstParamValue(ParamValue); v != "" {
		if k, ok := value.KindFromText(v); ok {
			kind = k
		}
	}
	if special, ok := specialVariant(p.variant, p.Name); ok && kind == def {
		kind = special
	}
	return kind
}

// FirstParamValue returns the first value of the named parameter, or
// "" when absent.
func (p *Property) FirstParamValue(name string) string {
	for _, param := range p.Params {
		if utils.FoldCaseEqual(param.Name, name) {
			return param.First()
		}
	}
	return ""
}

// HasParam reports whether the named parameter is present.
func (p *Property) HasParam(name string) bool {
	for _, param := range p.Params {
		if utils.FoldCaseEqual(param.Name, name) {
			return true
		}
	}
	return false
}

// AddParam appends a parameter, keeping insertion order.
func (p *Property) AddParam(param *Parameter) {
	p.Params = append(p.Params, param)
}

// RemoveParams removes every parameter with the given name.
func (p *Property) RemoveParams(name string) {
	out := p.Params[:0]
	for _, param := range p.Params {
		if !utils.FoldCaseEqual(param.Name, name) {
			out = append(out, param)
		}
	}
	p.Params = out
}

// ReplaceParam removes any existing parameters of the same name and
// appends the replacement.
func (p *Property) ReplaceParam(param *Parameter) {
	p.RemoveParams(param.Name)
	p.AddParam(param)
}

// SetValue replaces the property's value, re-running type
// determination against the new value's kind: a VALUE parameter that
// no longer matches is dropped.
func (p *Property) SetValue(v value.Value) {
	p.Value = v
	if tok := p.FirstParamValue(ParamValue); tok != "" {
		if k, ok := value.KindFromText(tok); ok && k != v.Kind() {
			p.RemoveParams(ParamValue)
		}
	}
}

// Duplicate returns a deep copy.
func (p *Property) Duplicate() *Property {
	d := &Property{Group: p.Group, Name: p.Name, variant: p.variant}
	for _, param := range p.Params {
		d.Params = append(d.Params, param.Duplicate())
	}
	if p.Value != nil {
		d.Value = p.Value.Duplicate()
	}
	return d
}

// Equal compares name case-insensitively, the parameter set
// order-insensitively (values order-sensitive per parameter), and the
// values.
func (p *Property) Equal(o *Property) bool {
	if !utils.FoldCaseEqual(p.Name, o.Name) || p.Group != o.Group {
		return false
	}
	if len(p.Params) != len(o.Params) {
		return false
	}
	matched := make([]bool, len(o.Params))
outer:
	for _, pp := range p.Params {
		for i, op := range o.Params {
			if !matched[i] && pp.Equal(op) {
				matched[i] = true
				continue outer
			}
		}
		return false
	}
	if (p.Value == nil) != (o.Value == nil) {
		return false
	}
	return p.Value == nil || p.Value.Equal(o.Value)
}

// Line renders the unfolded logical line. A VALUE parameter equal to
// the name's default type is suppressed, except for names in the
// always-write set.
func (p *Property) Line() string {
	var b strings.Builder
	if p.Group != "" {
		b.WriteString(p.Group)
		b.WriteByte('.')
	}
	b.WriteString(p.Name)
	def := DefaultKind(p.variant, p.Name)
	for _, param := range p.Params {
		if utils.FoldCaseEqual(param.Name, ParamValue) && !alwaysWriteValue[p.Name] {
			if k, ok := value.KindFromText(param.First()); ok && k == def {
				continue
			}
		}
		b.WriteByte(';')
		param.write(&b)
	}
	b.WriteByte(':')
	if p.Value != nil {
		b.WriteString(p.Value.Text())
	}
	return b.String()
}

// Generate appends the folded textual form, CRLF-terminated.
func (p *Property) Generate(b *strings.Builder) {
	WriteFolded(b, p.Line())
}

// Variant returns the dialect this property was parsed under.
func (p *Property) Variant() value.Variant { return p.variant }

// SetVariant rebinds the dialect, used when building properties
// programmatically for a vCard container.
func (p *Property) SetVariant(v value.Variant) { p.variant = v }

// splitNameValue finds the first ':' outside double quotes and
// returns the index boundaries of the head and value.
func splitNameValue(line string) (nameEnd, valueStart int, ok bool) {
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ':':
			if !inQuotes {
				return i, i + 1, true
			}
		}
	}
	return 0, 0, false
}

// splitOutsideQuotes splits on sep, ignoring separators inside double
// quotes.
func splitOutsideQuotes(s string, sep byte) []string {
	var out []string
	start := 0
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case sep:
			if !inQuotes {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// BindTZID applies a TZID parameter to a date/date-time value after
// parsing, rebinding the naked local instant to the named zone.
func (p *Property) BindTZID() {
	tzid := p.FirstParamValue("TZID")
	if tzid == "" {
		return
	}
	switch v := p.Value.(type) {
	case *value.DateTime:
		v.Inst = v.Inst.Named(tzid)
	case *value.Multi:
		for _, e := range v.Values {
			if dt, ok := e.(*value.DateTime); ok {
				dt.Inst = dt.Inst.Named(tzid)
			}
		}
	}
}
