package value

// Value is the common capability set every concrete value codec
// implements: parse, emit-text, emit-xml, emit-json, duplicate, equal.
// Parsing is exposed via the package-level ParseText function (keyed
// by Kind) rather than a method, since construction needs the registry.
type Value interface {
	Kind() Kind
	// Text renders the text form of the value (the part after the
	// property's ':').
	Text() string
	// JSON returns the value in the shape encoding/json should marshal
	// for the JSON calendar form: typically a string, float64, int64,
	// bool, or []interface{} for structured/multi values.
	JSON() interface{}
	// XML returns the XML element(s) to write under the property's
	// <name>: normally one element named Kind.XMLName(), but
	// structured values (GEO/ADR/N) return multiple children.
	XML() []XMLElem
	Duplicate() Value
	Equal(Value) bool
}

// XMLElem is a minimal XML tree node, just enough to describe a
// property's value elements without pulling the full encoding/xml
// token model into this package; internal/format/xmlfmt walks these
// into real xml.Encoder calls.
type XMLElem struct {
	Name     string
	Text     string
	Children []XMLElem
}

// ParseTextFunc parses the text form (after a property's ':') of one
// value of this kind.
type ParseTextFunc func(raw string, ctx Context) (Value, error)

// registry maps a Kind to its text-form parser. Populated by each
// codec file's init().
var registry = map[Kind]ParseTextFunc{}

func register(k Kind, fn ParseTextFunc) { registry[k] = fn }

// ParseText parses raw (the property-value text, already unfolded but
// not unescaped) as kind k. Unregistered kinds fall back to the opaque
// pass-through codec.
func ParseText(k Kind, raw string, ctx Context) (Value, error) {
	fn, ok := registry[k]
	if !ok {
		return NewUnknown(raw), nil
	}
	return fn(raw, ctx)
}
