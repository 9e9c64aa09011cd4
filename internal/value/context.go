package value

// Variant distinguishes the two textual dialects a value may be parsed
// from. A few codecs (structured name/address, the vCard 2.1
// parameter-value relaxations) behave differently per variant.
type Variant int

const (
	VariantICalendar Variant = iota
	VariantVCard
)

// Policy is a tri-valued parser-mode setting selecting how a given
// class of malformed input is handled.
type Policy int

const (
	PolicyRaise Policy = iota
	PolicyFix
	PolicyAllow
	PolicyIgnore
)

// Context bundles the per-category parser-mode policies. It is
// threaded explicitly into every parse entry point rather than read
// from global state; internal/config materialises one from the
// process configuration at start-of-day. Zero value is the
// strict/default policy set.
type Context struct {
	Variant Variant

	// BlankLines governs a blank physical line inside a container
	// body: RAISE terminates the stream, ALLOW skips it.
	BlankLines Policy
	// DurationTrailingData governs a DURATION value with unexpected
	// trailing data.
	DurationTrailingData Policy
	// BackslashInURI governs whether a literal backslash is accepted
	// unescaped inside a URI value.
	BackslashInURI Policy
	// ColonInEscape governs how a `\:` escape sequence inside a TEXT
	// value is handled.
	ColonInEscape Policy
	// UnknownEscape governs an unrecognised `\X` escape sequence in a
	// TEXT value: RAISE rejects, FIX/ALLOW pass the literal `X` through.
	UnknownEscape Policy
	// MissingParameterValues governs a vCard 2.1 bare parameter name
	// with no `=value` part: FIX treats the name as the value.
	MissingParameterValues Policy
	// Base64ParamSynonym governs the legacy `ENCODING=BASE64`
	// parameter spelling: FIX rewrites it to `ENCODING=B`.
	Base64ParamSynonym Policy
	// ADRComponentCount governs an ADR value with other than seven
	// components: RAISE rejects, FIX pads/truncates.
	ADRComponentCount Policy
}

// Default returns the strict (all-RAISE) context used when a caller
// does not supply one explicitly.
func Default() Context { return Context{} }

// Lenient returns a context that fixes or tolerates every category,
// for parsing data from non-conforming producers.
func Lenient() Context {
	return Context{
		BlankLines:             PolicyAllow,
		DurationTrailingData:   PolicyAllow,
		BackslashInURI:         PolicyAllow,
		ColonInEscape:          PolicyAllow,
		UnknownEscape:          PolicyAllow,
		MissingParameterValues: PolicyFix,
		Base64ParamSynonym:     PolicyFix,
		ADRComponentCount:      PolicyFix,
	}
}
