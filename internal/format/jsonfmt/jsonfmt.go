// Package jsonfmt maps the component tree to and from the JSON array
// calendar form: a component is `[typeLower, [props...], [comps...]]`
// and a property is `[nameLower, {params}, valueTypeLower, value...]`.
package jsonfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"tempical/internal/calendar"
	"tempical/internal/property"
	"tempical/internal/utils"
	"tempical/internal/value"
)

// Emit renders the container as a JSON document.
func Emit(c *calendar.Component) (string, error) {
	out, err := json.Marshal(buildArray(c))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Write renders the container to w.
func Write(w io.Writer, c *calendar.Component) error {
	s, err := Emit(c)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func buildArray(c *calendar.Component) []interface{} {
	props := make([]interface{}, 0)
	for _, p := range c.SortedProperties() {
		props = append(props, buildPropertyArray(p))
	}
	comps := make([]interface{}, 0)
	for _, s := range c.SortedComponents() {
		comps = append(comps, buildArray(s))
	}
	return []interface{}{strings.ToLower(c.Type()), props, comps}
}

func buildPropertyArray(p *property.Property) []interface{} {
	params := map[string]interface{}{}
	for _, param := range p.Params {
		if utils.FoldCaseEqual(param.Name, property.ParamValue) {
			continue
		}
		key := strings.ToLower(param.Name)
		if len(param.Values) == 1 {
			params[key] = param.Values[0]
		} else {
			vals := make([]interface{}, len(param.Values))
			for i, v := range param.Values {
				vals[i] = v
			}
			params[key] = vals
		}
	}

	kind := value.KindUnknown
	if p.Value != nil {
		kind = p.Value.Kind()
	}
	typeTok := strings.ToLower(kind.XMLName())
	if m, ok := p.Value.(*value.Multi); ok {
		typeTok = strings.ToLower(m.Elem.XMLName())
	}

	out := []interface{}{strings.ToLower(p.Name), params, typeTok}
	if m, ok := p.Value.(*value.Multi); ok {
		// Multi-valued properties expand into trailing elements.
		for _, e := range m.Values {
			out = append(out, e.JSON())
		}
	} else if p.Value != nil {
		out = append(out, p.Value.JSON())
	}
	return out
}

// Parse reads one container from JSON.
func Parse(r io.Reader, ctx value.Context) (*calendar.Component, error) {
	var root interface{}
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, &calendar.InvalidDataError{Reason: err.Error()}
	}
	arr, ok := root.([]interface{})
	if !ok {
		return nil, &calendar.InvalidDataError{Reason: "top level is not an array"}
	}
	comp, err := buildComponent(arr, ctx)
	if err != nil {
		return nil, err
	}
	if comp.Type() == calendar.TypeVCard {
		ctx.Variant = value.VariantVCard
	}
	comp.SetVariant(ctx.Variant)
	comp.Finalise()
	return comp, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string, ctx value.Context) (*calendar.Component, error) {
	return Parse(strings.NewReader(s), ctx)
}

func buildComponent(arr []interface{}, ctx value.Context) (*calendar.Component, error) {
	if len(arr) != 3 {
		return nil, &calendar.InvalidDataError{Reason: "component array is not three elements"}
	}
	typeName, ok := arr[0].(string)
	if !ok {
		return nil, &calendar.InvalidDataError{Reason: "component type is not a string"}
	}
	comp := calendar.NewComponent(typeName)
	if comp.Type() == calendar.TypeVCard {
		ctx.Variant = value.VariantVCard
	}

	props, ok := arr[1].([]interface{})
	if !ok {
		return nil, &calendar.InvalidComponentError{Type: comp.Type(), Reason: "properties element is not an array"}
	}
	for _, raw := range props {
		parr, ok := raw.([]interface{})
		if !ok {
			return nil, &calendar.InvalidComponentError{Type: comp.Type(), Reason: "property element is not an array"}
		}
		p, err := buildProperty(parr, ctx)
		if err != nil {
			return nil, &calendar.InvalidComponentError{Type: comp.Type(), Reason: err.Error()}
		}
		comp.AddProperty(p)
	}

	comps, ok := arr[2].([]interface{})
	if !ok {
		return nil, &calendar.InvalidComponentError{Type: comp.Type(), Reason: "components element is not an array"}
	}
	for _, raw := range comps {
		carr, ok := raw.([]interface{})
		if !ok {
			return nil, &calendar.InvalidComponentError{Type: comp.Type(), Reason: "sub-component is not an array"}
		}
		sub, err := buildComponent(carr, ctx)
		if err != nil {
			return nil, err
		}
		comp.AddComponent(sub)
	}
	return comp, nil
}

func buildProperty(arr []interface{}, ctx value.Context) (*property.Property, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("property array needs at least four elements")
	}
	name, ok := arr[0].(string)
	if !ok {
		return nil, fmt.Errorf("property name is not a string")
	}
	name = utils.UpperASCII(name)

	paramsObj, ok := arr[1].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("property parameters are not an object")
	}
	typeTok, ok := arr[2].(string)
	if !ok {
		return nil, fmt.Errorf("property value type is not a string")
	}
	kind := kindFromJSONToken(typeTok)

	var v value.Value
	var err error
	if len(arr) > 4 {
		var vals []value.Value
		for _, raw := range arr[3:] {
			ev, perr := jsonValueToValue(kind, raw, ctx)
			if perr != nil {
				return nil, perr
			}
			vals = append(vals, ev)
		}
		v = value.NewMulti(kind, vals)
	} else {
		v, err = jsonValueToValue(kind, arr[3], ctx)
		if err != nil {
			return nil, err
		}
		if property.IsMultiValued(ctx.Variant, name) {
			v = value.NewMulti(v.Kind(), []value.Value{v})
		}
	}

	p := property.New(name, v)
	p.SetVariant(ctx.Variant)
	for key, raw := range paramsObj {
		param := &property.Parameter{Name: utils.UpperASCII(key)}
		switch t := raw.(type) {
		case string:
			param.Values = []string{t}
		case []interface{}:
			for _, e := range t {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("parameter %s has a non-string value", key)
				}
				param.Values = append(param.Values, s)
			}
		default:
			return nil, fmt.Errorf("parameter %s has a non-string value", key)
		}
		p.AddParam(param)
	}
	if def := property.DefaultKind(ctx.Variant, name); def != kind {
		p.ReplaceParam(property.NewParameter(property.ParamValue, kind.TextName()))
	}
	return p, nil
}

func jsonValueToValue(kind value.Kind, raw interface{}, ctx value.Context) (value.Value, error) {
	switch t := raw.(type) {
	case string:
		return value.ParseExtendedText(kind, t, ctx)
	case float64:
		if kind == value.KindInteger {
			return value.NewInteger(int64(t)), nil
		}
		return value.NewFloat(t), nil
	case bool:
		if t {
			return value.ParseText(value.KindBoolean, "TRUE", ctx)
		}
		return value.ParseText(value.KindBoolean, "FALSE", ctx)
	case []interface{}:
		// Structured values (GEO pairs, ADR/N component lists) arrive
		// as nested arrays; rebuild their text form.
		var parts []string
		for _, e := range t {
			parts = append(parts, fmt.Sprintf("%v", e))
		}
		switch kind {
		case value.KindGeo:
			return value.ParseText(kind, strings.Join(parts, ";"), ctx)
		case value.KindAdr, value.KindN, value.KindOrg:
			return value.ParseText(kind, strings.Join(parts, ";"), ctx)
		}
		return value.ParseExtendedText(kind, strings.Join(parts, ","), ctx)
	default:
		return nil, fmt.Errorf("unsupported JSON value %v", raw)
	}
}

// kindFromJSONToken resolves a lower-case value-type token to a kind.
func kindFromJSONToken(tok string) value.Kind {
	for _, k := range []value.Kind{
		value.KindBinary, value.KindBoolean, value.KindCalAddress, value.KindDate,
		value.KindDateTime, value.KindDuration, value.KindFloat, value.KindGeo,
		value.KindInteger, value.KindPeriod, value.KindRecur, value.KindText,
		value.KindTime, value.KindURI, value.KindUTCOffset,
	} {
		if k.XMLName() == tok {
			return k
		}
	}
	return value.KindUnknown
}
