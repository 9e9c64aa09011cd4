// Package property implements the named-value layer shared by the
// calendar and vCard grammars: parameters with caret-escaped values,
// properties with typed values, the VALUE-parameter override, and
// line folding on emission.
package property

import (
	"strings"

	"tempical/internal/utils"
)

// Parameter is a case-insensitive name with an ordered list of string
// values.
type Parameter struct {
	Name   string
	Values []string
}

func NewParameter(name string, values ...string) *Parameter {
	return &Parameter{Name: name, Values: values}
}

func (p *Parameter) Duplicate() *Parameter {
	return &Parameter{Name: p.Name, Values: append([]string(nil), p.Values...)}
}

// First returns the first value, or "" when the parameter is bare.
func (p *Parameter) First() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// Equal compares name case-insensitively and values order-sensitively.
func (p *Parameter) Equal(o *Parameter) bool {
	if !utils.FoldCaseEqual(p.Name, o.Name) || len(p.Values) != len(o.Values) {
		return false
	}
	for i := range p.Values {
		if p.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

// decodeParamValue applies the caret scheme: `^n` decodes to LF, `^'`
// to a double quote, `^^` to a caret. An unknown `^x` passes through
// literally.
func decodeParamValue(raw string) string {
	if !strings.ContainsRune(raw, '^') {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '^' || i == len(raw)-1 {
			b.WriteByte(c)
			continue
		}
		switch raw[i+1] {
		case 'n':
			b.WriteByte('\n')
			i++
		case '\'':
			b.WriteByte('"')
			i++
		case '^':
			b.WriteByte('^')
			i++
		default:
			b.WriteByte('^')
		}
	}
	return b.String()
}

// encodeParamValue is the inverse of decodeParamValue.
func encodeParamValue(s string) string {
	if !strings.ContainsAny(s, "^\"\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '^':
			b.WriteString("^^")
		case '"':
			b.WriteString("^'")
		case '\n':
			b.WriteString("^n")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// writeParamValue emits one parameter value, double-quoting it when it
// contains a colon, semicolon or comma.
func writeParamValue(b *strings.Builder, v string) {
	enc := encodeParamValue(v)
	if strings.ContainsAny(enc, ":;,") {
		b.WriteByte('"')
		b.WriteString(enc)
		b.WriteByte('"')
	} else {
		b.WriteString(enc)
	}
}

// write emits `NAME=val[,val]*`.
func (p *Parameter) write(b *strings.Builder) {
	b.WriteString(utils.UpperASCII(p.Name))
	b.WriteByte('=')
	for i, v := range p.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		writeParamValue(b, v)
	}
}
