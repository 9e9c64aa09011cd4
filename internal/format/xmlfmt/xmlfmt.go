// Package xmlfmt maps the component tree to and from the XML calendar
// form: one element per component under a per-format namespace, with
// at most one <properties> and one <components> child each.
package xmlfmt

import (
	"encoding/xml"
	"io"
	"strings"

	"tempical/internal/calendar"
	"tempical/internal/property"
	"tempical/internal/utils"
	"tempical/internal/value"
)

// Namespaces for the two dialects.
const (
	ICalNamespace  = "urn:ietf:params:xml:ns:icalendar-2.0"
	VCardNamespace = "urn:ietf:params:xml:ns:vcard-4.0"
)

// node is the lightweight tree both directions work over.
type node struct {
	XMLName  xml.Name
	Attr     []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) child(name string) *node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// Emit renders the container as an XML document. The namespace is
// declared once on the root element, and every descendant element is
// in it.
func Emit(c *calendar.Component) (string, error) {
	ns := ICalNamespace
	if c.Variant() == value.VariantVCard {
		ns = VCardNamespace
	}
	root := buildNode(c)
	wrapped := node{XMLName: xml.Name{Local: root.XMLName.Local}, Children: root.Children,
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: ns}}}
	out, err := xml.MarshalIndent(wrapped, "", " ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(out) + "\n", nil
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

func buildNode(c *calendar.Component) node {
	n := node{XMLName: xml.Name{Local: strings.ToLower(c.Type())}}

	var props node
	props.XMLName.Local = "properties"
	for _, p := range c.SortedProperties() {
		props.Children = append(props.Children, buildPropertyNode(p))
	}
	if len(props.Children) > 0 {
		n.Children = append(n.Children, props)
	}

	var comps node
	comps.XMLName.Local = "components"
	for _, s := range c.SortedComponents() {
		comps.Children = append(comps.Children, buildNode(s))
	}
	if len(comps.Children) > 0 {
		n.Children = append(n.Children, comps)
	}
	return n
}

func buildPropertyNode(p *property.Property) node {
	n := node{XMLName: xml.Name{Local: strings.ToLower(p.Name)}}

	var params node
	params.XMLName.Local = "parameters"
	for _, param := range p.Params {
		if utils.FoldCaseEqual(param.Name, property.ParamValue) {
			continue
		}
		pn := node{XMLName: xml.Name{Local: strings.ToLower(param.Name)}}
		for _, v := range param.Values {
			pn.Children = append(pn.Children, node{XMLName: xml.Name{Local: "text"}, Text: v})
		}
		params.Children = append(params.Children, pn)
	}
	if len(params.Children) > 0 {
		n.Children = append(n.Children, params)
	}

	if p.Value != nil {
		for _, el := range p.Value.XML() {
			n.Children = append(n.Children, valueElemNode(el))
		}
	}
	return n
}

func valueElemNode(el value.XMLElem) node {
	n := node{XMLName: xml.Name{Local: el.Name}, Text: el.Text}
	for _, ch := range el.Children {
		n.Children = append(n.Children, valueElemNode(ch))
	}
	return n
}

// Parse reads one container from XML.
func Parse(r io.Reader, ctx value.Context) (*calendar.Component, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, &calendar.InvalidDataError{Reason: err.Error()}
	}
	typeName := utils.UpperASCII(root.XMLName.Local)
	if typeName == calendar.TypeVCard {
		ctx.Variant = value.VariantVCard
	}
	comp, err := buildComponent(&root, ctx)
	if err != nil {
		return nil, err
	}
	comp.SetVariant(ctx.Variant)
	comp.Finalise()
	return comp, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string, ctx value.Context) (*calendar.Component, error) {
	return Parse(strings.NewReader(s), ctx)
}

func buildComponent(n *node, ctx value.Context) (*calendar.Component, error) {
	comp := calendar.NewComponent(n.XMLName.Local)
	if props := n.child("properties"); props != nil {
		for i := range props.Children {
			p, err := buildProperty(&props.Children[i], ctx)
			if err != nil {
				return nil, &calendar.InvalidComponentError{Type: comp.Type(), Reason: err.Error()}
			}
			comp.AddProperty(p)
		}
	}
	if comps := n.child("components"); comps != nil {
		for i := range comps.Children {
			sub, err := buildComponent(&comps.Children[i], ctx)
			if err != nil {
				return nil, err
			}
			comp.AddComponent(sub)
		}
	}
	return comp, nil
}

func buildProperty(n *node, ctx value.Context) (*property.Property, error) {
	name := utils.UpperASCII(n.XMLName.Local)
	var params []*property.Parameter
	var valueNodes []*node
	for i := range n.Children {
		ch := &n.Children[i]
		if ch.XMLName.Local == "parameters" {
			for j := range ch.Children {
				pn := &ch.Children[j]
				param := &property.Parameter{Name: utils.UpperASCII(pn.XMLName.Local)}
				for k := range pn.Children {
					param.Values = append(param.Values, pn.Children[k].Text)
				}
				if len(param.Values) == 0 && pn.Text != "" {
					param.Values = []string{pn.Text}
				}
				params = append(params, param)
			}
			continue
		}
		valueNodes = append(valueNodes, ch)
	}
	if len(valueNodes) == 0 {
		return nil, &property.InvalidPropertyError{Line: name, Reason: "property element carries no value"}
	}

	v, typeTok, err := valueFromNodes(name, valueNodes, ctx)
	if err != nil {
		return nil, err
	}
	if _, isM := v.(*value.Multi); !isM && property.IsMultiValued(ctx.Variant, name) {
		v = value.NewMulti(v.Kind(), []value.Value{v})
	}
	p := property.New(name, v)
	p.SetVariant(ctx.Variant)
	for _, param := range params {
		p.AddParam(param)
	}
	if typeTok != "" {
		p.ReplaceParam(property.NewParameter(property.ParamValue, typeTok))
	}
	return p, nil
}

// valueFromNodes rebuilds the typed value from the property's value
// elements. Multi-element properties (several <text> children, the
// GEO/period structured children) reassemble into their text form
// first.
func valueFromNodes(propName string, nodes []*node, ctx value.Context) (value.Value, string, error) {
	first := nodes[0]
	local := first.XMLName.Local

	switch local {
	case "latitude", "longitude":
		lat, lon := "", ""
		for _, n := range nodes {
			if n.XMLName.Local == "latitude" {
				lat = n.Text
			} else {
				lon = n.Text
			}
		}
		v, err := value.ParseText(value.KindGeo, lat+";"+lon, ctx)
		return v, "", err
	case "period":
		var parts []string
		for _, n := range nodes {
			start := n.child("start")
			if start == nil {
				return nil, "", &property.InvalidPropertyError{Line: propName, Reason: "period without start"}
			}
			endTok := ""
			if e := n.child("end"); e != nil {
				endTok = e.Text
			} else if d := n.child("duration"); d != nil {
				endTok = d.Text
			}
			parts = append(parts, start.Text+"/"+endTok)
		}
		v, err := parseMultiExtended(propName, value.KindPeriod, parts, ctx)
		return v, "", err
	}

	kind, ok := kindFromXMLName(local)
	if !ok {
		return nil, "", &property.InvalidPropertyError{Line: propName, Reason: "unknown value element <" + local + ">"}
	}

	var texts []string
	for _, n := range nodes {
		texts = append(texts, n.Text)
	}
	v, err := parseMultiExtended(propName, kind, texts, ctx)
	if err != nil {
		return nil, "", err
	}

	typeTok := ""
	if def := property.DefaultKind(ctx.Variant, propName); def != kind {
		typeTok = kind.TextName()
	}
	return v, typeTok, nil
}

func parseMultiExtended(propName string, kind value.Kind, texts []string, ctx value.Context) (value.Value, error) {
	if len(texts) == 1 {
		return value.ParseExtendedText(kind, texts[0], ctx)
	}
	var vals []value.Value
	for _, t := range texts {
		v, err := value.ParseExtendedText(kind, t, ctx)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return value.NewMulti(kind, vals), nil
}

func kindFromXMLName(local string) (value.Kind, bool) {
	for _, k := range []value.Kind{
		value.KindBinary, value.KindBoolean, value.KindCalAddress, value.KindDate,
		value.KindDateTime, value.KindDuration, value.KindFloat, value.KindInteger,
		value.KindPeriod, value.KindRecur, value.KindText, value.KindTime,
		value.KindURI, value.KindUTCOffset, value.KindUnknown,
	} {
		if k.XMLName() == local {
			return k, true
		}
	}
	return value.KindUnknown, false
}
