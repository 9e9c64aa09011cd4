// Package calendar implements the recursive component tree shared by
// the iCalendar and vCard containers: ownership, cardinality
// validation, deterministic emission order, and timezone injection.
package calendar

import (
	"sort"
	"strings"

	"tempical/internal/property"
	"tempical/internal/utils"
	"tempical/internal/value"
)

// Well-known component type names.
const (
	TypeVCalendar = "VCALENDAR"
	TypeVEvent    = "VEVENT"
	TypeVTodo     = "VTODO"
	TypeVJournal  = "VJOURNAL"
	TypeVFreeBusy = "VFREEBUSY"
	TypeVAlarm    = "VALARM"
	TypeVTimezone = "VTIMEZONE"
	TypeStandard  = "STANDARD"
	TypeDaylight  = "DAYLIGHT"
	TypeVCard     = "VCARD"
)

// InvalidComponentError reports a malformed component body.
type InvalidComponentError struct {
	Type   string
	Reason string
}

func (e *InvalidComponentError) Error() string {
	return "invalid component " + e.Type + ": " + e.Reason
}

// InvalidDataError reports a malformed top-level container.
type InvalidDataError struct {
	Input  string
	Reason string
}

func (e *InvalidDataError) Error() string {
	in := e.Input
	if len(in) > 64 {
		in = in[:64] + "..."
	}
	return "invalid data \"" + in + "\": " + e.Reason
}

// Component is a named container of properties and sub-components. A
// component owns its children exclusively; adding a property or
// sub-component transfers ownership, and Duplicate deep-copies. The
// parent link is a non-owning back-reference, cleared on detach.
type Component struct {
	typeName string
	props    map[string][]*property.Property
	// propNames preserves the order property names first appeared, so
	// parse order is deterministic for names outside the sort table.
	propNames []string
	subs      []*Component
	parent    *Component
	variant   value.Variant
}

// NewComponent builds an empty component of the given type.
func NewComponent(typeName string) *Component {
	return &Component{
		typeName: utils.UpperASCII(typeName),
		props:    make(map[string][]*property.Property),
	}
}

func (c *Component) Type() string           { return c.typeName }
func (c *Component) Parent() *Component     { return c.parent }
func (c *Component) Variant() value.Variant { return c.variant }

// SetVariant rebinds the dialect for this component and its subtree.
func (c *Component) SetVariant(v value.Variant) {
	c.variant = v
	for _, s := range c.subs {
		s.SetVariant(v)
	}
}

// Root walks parent links to the containing root component.
func (c *Component) Root() *Component {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// AddProperty appends a property, preserving insertion order within
// its name bucket.
func (c *Component) AddProperty(p *property.Property) {
	name := utils.UpperASCII(p.Name)
	if _, seen := c.props[name]; !seen {
		c.propNames = append(c.propNames, name)
	}
	c.props[name] = append(c.props[name], p)
}

// Properties returns the properties for one name, in insertion order.
func (c *Component) Properties(name string) []*property.Property {
	return c.props[utils.UpperASCII(name)]
}

// FirstProperty returns the first property of the name, or nil.
func (c *Component) FirstProperty(name string) *property.Property {
	ps := c.Properties(name)
	if len(ps) == 0 {
		return nil
	}
	return ps[0]
}

// HasProperty reports whether at least one property of the name exists.
func (c *Component) HasProperty(name string) bool {
	return len(c.Properties(name)) > 0
}

// CountProperty returns the number of properties with the name.
func (c *Component) CountProperty(name string) int {
	return len(c.Properties(name))
}

// PropertyText returns the text rendering of the first property's
// value, or "" when absent.
func (c *Component) PropertyText(name string) string {
	p := c.FirstProperty(name)
	if p == nil || p.Value == nil {
		return ""
	}
	if t, ok := p.Value.(*value.Text); ok {
		return t.Raw
	}
	return p.Value.Text()
}

// RemoveProperties removes every property with the name.
func (c *Component) RemoveProperties(name string) {
	name = utils.UpperASCII(name)
	if _, ok := c.props[name]; !ok {
		return
	}
	delete(c.props, name)
	for i, n := range c.propNames {
		if n == name {
			c.propNames = append(c.propNames[:i], c.propNames[i+1:]...)
			break
		}
	}
}

// ReplaceProperty removes existing properties of the same name and
// adds the replacement.
func (c *Component) ReplaceProperty(p *property.Property) {
	c.RemoveProperties(p.Name)
	c.AddProperty(p)
}

// AddComponent appends a sub-component, taking ownership.
func (c *Component) AddComponent(sub *Component) {
	sub.parent = c
	sub.variant = c.variant
	c.subs = append(c.subs, sub)
}

// InsertComponent prepends a sub-component, taking ownership. Used for
// timezone injection, which places VTIMEZONEs at the top of the
// container.
func (c *Component) InsertComponent(sub *Component) {
	sub.parent = c
	sub.variant = c.variant
	c.subs = append([]*Component{sub}, c.subs...)
}

// Components returns the sub-components of one type, in insertion
// order; an empty type name returns all.
func (c *Component) Components(typeName string) []*Component {
	if typeName == "" {
		return c.subs
	}
	typeName = utils.UpperASCII(typeName)
	var out []*Component
	for _, s := range c.subs {
		if s.typeName == typeName {
			out = append(out, s)
		}
	}
	return out
}

// RemoveComponent detaches the sub-component, clearing its parent link.
func (c *Component) RemoveComponent(sub *Component) {
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			sub.parent = nil
			return
		}
	}
}

// Duplicate returns a deep copy of the component subtree. The copy has
// no parent.
func (c *Component) Duplicate() *Component {
	d := NewComponent(c.typeName)
	d.variant = c.variant
	d.propNames = append([]string(nil), c.propNames...)
	for name, ps := range c.props {
		for _, p := range ps {
			d.props[name] = append(d.props[name], p.Duplicate())
		}
	}
	for _, s := range c.subs {
		sd := s.Duplicate()
		sd.parent = d
		d.subs = append(d.subs, sd)
	}
	return d
}

// Finalise binds TZID parameters on date valued properties through the
// subtree. Invoked after a parse completes.
func (c *Component) Finalise() {
	for _, name := range c.propNames {
		for _, p := range c.props[name] {
			p.BindTZID()
		}
	}
	for _, s := range c.subs {
		s.Finalise()
	}
}

// sortedPropertyNames returns property names in emission order: the
// type's declared key order first, then the rest sorted
// case-insensitively.
func (c *Component) sortedPropertyNames() []string {
	info := typeInfoFor(c.typeName)
	var out []string
	used := map[string]bool{}
	for _, name := range info.propertyOrder {
		if _, ok := c.props[name]; ok {
			out = append(out, name)
			used[name] = true
		}
	}
	var rest []string
	for name := range c.props {
		if !used[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// sortKey orders components of the same type within the remainder
// bucket of sortedComponents.
func (c *Component) sortKey() string {
	if uid := c.PropertyText("UID"); uid != "" {
		return uid
	}
	if p := c.FirstProperty("DTSTART"); p != nil && p.Value != nil {
		return p.Value.Text()
	}
	return ""
}

// sortedComponents returns sub-components in emission order: declared
// type order first, remainder sorted by (type, sortKey). A type with
// sortSubComponents disabled preserves insertion order outright.
func (c *Component) sortedComponents() []*Component {
	info := typeInfoFor(c.typeName)
	if !info.sortSubComponents {
		return c.subs
	}
	var out []*Component
	used := map[*Component]bool{}
	for _, typeName := range info.componentOrder {
		for _, s := range c.subs {
			if !used[s] && s.typeName == typeName {
				out = append(out, s)
				used[s] = true
			}
		}
	}
	var rest []*Component
	for _, s := range c.subs {
		if !used[s] {
			rest = append(rest, s)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].typeName != rest[j].typeName {
			return rest[i].typeName < rest[j].typeName
		}
		return rest[i].sortKey() < rest[j].sortKey()
	})
	return append(out, rest...)
}

// SortedProperties returns every property in emission order, for the
// XML and JSON adapters.
func (c *Component) SortedProperties() []*property.Property {
	var out []*property.Property
	for _, name := range c.sortedPropertyNames() {
		out = append(out, c.props[name]...)
	}
	return out
}

// SortedComponents returns sub-components in emission order, for the
// XML and JSON adapters.
func (c *Component) SortedComponents() []*Component {
	return c.sortedComponents()
}

// Generate emits the folded text form of the subtree, framed by
// BEGIN/END lines.
func (c *Component) Generate(b *strings.Builder) {
	property.WriteFolded(b, "BEGIN:"+c.typeName)
	for _, name := range c.sortedPropertyNames() {
		for _, p := range c.props[name] {
			p.Generate(b)
		}
	}
	for _, s := range c.sortedComponents() {
		s.Generate(b)
	}
	property.WriteFolded(b, "END:"+c.typeName)
}

// Text renders the subtree as a folded text string.
func (c *Component) Text() string {
	var b strings.Builder
	c.Generate(&b)
	return b.String()
}

// Equal compares two subtrees structurally: same type, equal property
// multimaps, and pairwise-equal sub-components in emission order.
func (c *Component) Equal(o *Component) bool {
	if c.typeName != o.typeName || len(c.props) != len(o.props) {
		return false
	}
	for name, ps := range c.props {
		os := o.props[name]
		if len(ps) != len(os) {
			return false
		}
		for i := range ps {
			if !ps[i].Equal(os[i]) {
				return false
			}
		}
	}
	cs, osubs := c.sortedComponents(), o.sortedComponents()
	if len(cs) != len(osubs) {
		return false
	}
	for i := range cs {
		if !cs[i].Equal(osubs[i]) {
			return false
		}
	}
	return true
}
