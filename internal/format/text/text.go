// Package text reads and writes the line-folded textual calendar
// form: physical-line tokenizing, BEGIN/END component framing, and
// emission through the component tree's folding writer.
package text

import (
	"bufio"
	"io"
	"strings"

	"tempical/internal/calendar"
	"tempical/internal/property"
	"tempical/internal/utils"
	"tempical/internal/value"
)

// LineReader produces logical lines from physical input: CRLF or LF
// terminated, a leading space or tab marking a continuation whose
// first character is discarded. A blank physical line terminates the
// stream in strict mode and is skipped in lenient mode.
type LineReader struct {
	sc      *bufio.Scanner
	ctx     value.Context
	pending string
	started bool
	done    bool
}

func NewLineReader(r io.Reader, ctx value.Context) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &LineReader{sc: sc, ctx: ctx}
}

// Next returns the next logical line, io.EOF at end of stream.
func (lr *LineReader) Next() (string, error) {
	if lr.done {
		if lr.pending != "" {
			line := lr.pending
			lr.pending = ""
			return line, nil
		}
		return "", io.EOF
	}
	for lr.sc.Scan() {
		phys := strings.TrimSuffix(lr.sc.Text(), "\r")
		if phys == "" {
			if lr.ctx.BlankLines == value.PolicyRaise {
				lr.done = true
				break
			}
			continue
		}
		if phys[0] == ' ' || phys[0] == '\t' {
			lr.pending += phys[1:]
			continue
		}
		if !lr.started {
			lr.started = true
			lr.pending = phys
			continue
		}
		line := lr.pending
		lr.pending = phys
		return line, nil
	}
	if err := lr.sc.Err(); err != nil {
		return "", err
	}
	lr.done = true
	if lr.pending != "" {
		line := lr.pending
		lr.pending = ""
		return line, nil
	}
	return "", io.EOF
}

// Parse reads one container (VCALENDAR or VCARD) from r. Framing is
// strict LIFO: every BEGIN must meet its END, and properties outside a
// component are rejected.
func Parse(r io.Reader, ctx value.Context) (*calendar.Component, error) {
	lr := NewLineReader(r, ctx)
	var root *calendar.Component
	var stack []*calendar.Component

	for {
		line, err := lr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &calendar.InvalidDataError{Input: line, Reason: err.Error()}
		}

		switch {
		case hasPrefixFold(line, "BEGIN:"):
			typeName := utils.UpperASCII(strings.TrimSpace(line[len("BEGIN:"):]))
			comp := calendar.NewComponent(typeName)
			if len(stack) == 0 {
				if root != nil {
					return nil, &calendar.InvalidDataError{Input: line, Reason: "multiple top-level containers"}
				}
				if typeName == calendar.TypeVCard {
					ctx.Variant = value.VariantVCard
					lr.ctx.Variant = value.VariantVCard
				}
				comp.SetVariant(ctx.Variant)
				root = comp
			} else {
				stack[len(stack)-1].AddComponent(comp)
			}
			stack = append(stack, comp)

		case hasPrefixFold(line, "END:"):
			typeName := utils.UpperASCII(strings.TrimSpace(line[len("END:"):]))
			if len(stack) == 0 {
				return nil, &calendar.InvalidDataError{Input: line, Reason: "END without matching BEGIN"}
			}
			top := stack[len(stack)-1]
			if top.Type() != typeName {
				return nil, &calendar.InvalidComponentError{
					Type:   top.Type(),
					Reason: "unbalanced END:" + typeName,
				}
			}
			stack = stack[:len(stack)-1]

		default:
			if len(stack) == 0 {
				return nil, &calendar.InvalidDataError{Input: line, Reason: "property outside any component"}
			}
			p, err := property.ParseLine(line, ctx)
			if err != nil {
				return nil, &calendar.InvalidComponentError{
					Type:   stack[len(stack)-1].Type(),
					Reason: err.Error(),
				}
			}
			stack[len(stack)-1].AddProperty(p)
		}
	}

	if len(stack) != 0 {
		return nil, &calendar.InvalidComponentError{
			Type:   stack[len(stack)-1].Type(),
			Reason: "component not closed before end of stream",
		}
	}
	if root == nil {
		return nil, &calendar.InvalidDataError{Input: "", Reason: "no container in input"}
	}
	root.Finalise()
	return root, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string, ctx value.Context) (*calendar.Component, error) {
	return Parse(strings.NewReader(s), ctx)
}

// Emit renders the container in folded text form.
func Emit(c *calendar.Component) string {
	return c.Text()
}

// Write renders the container to w.
func Write(w io.Writer, c *calendar.Component) error {
	_, err := io.WriteString(w, c.Text())
	return err
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && utils.FoldCaseEqual(s[:len(prefix)], prefix)
}
