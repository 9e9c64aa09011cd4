package calendar

import (
	"fmt"

	"tempical/internal/constants"
	"tempical/internal/property"
	"tempical/internal/utils"
	"tempical/internal/value"
)

// Validate walks the subtree depth-first checking each component's
// cardinality tuples and value predicates. It returns two lists of
// diagnostics: problems repaired (only populated when doFix is set)
// and problems left in place. With doFix, trivially repairable issues
// mutate the tree: a missing fix-by-empty property is added with an
// empty text value, a redundant duplicate is dropped, and duplicate
// STATUS properties collapse to the CANCELLED one when present.
func (c *Component) Validate(doFix bool) (fixed, unfixed []string) {
	info := typeInfoFor(c.typeName)

	for _, name := range info.exactlyOne {
		switch n := c.CountProperty(name); {
		case n == 0:
			unfixed = append(unfixed, diag(c, name, "required property is missing"))
		case n > 1:
			fixed, unfixed = c.fixDuplicate(name, doFix, fixed, unfixed)
		}
	}
	for _, name := range info.exactlyOneFixEmpty {
		switch n := c.CountProperty(name); {
		case n == 0:
			if doFix {
				p := property.NewText(name, "")
				p.SetVariant(c.variant)
				c.AddProperty(p)
				fixed = append(fixed, diag(c, name, "missing property added with empty value"))
			} else {
				unfixed = append(unfixed, diag(c, name, "required property is missing"))
			}
		case n > 1:
			fixed, unfixed = c.fixDuplicate(name, doFix, fixed, unfixed)
		}
	}
	for _, name := range info.zeroOrOne {
		if c.CountProperty(name) > 1 {
			fixed, unfixed = c.fixDuplicate(name, doFix, fixed, unfixed)
		}
	}
	for _, name := range info.oneOrMore {
		if c.CountProperty(name) == 0 {
			unfixed = append(unfixed, diag(c, name, "at least one property is required"))
		}
	}

	for name, check := range info.valueChecks {
		for _, p := range c.Properties(name) {
			if p.Value == nil {
				continue
			}
			if ok, reason := check(p.Value); !ok {
				unfixed = append(unfixed, diag(c, name, reason))
			}
		}
	}

	for _, s := range c.subs {
		sf, su := s.Validate(doFix)
		fixed = append(fixed, sf...)
		unfixed = append(unfixed, su...)
	}
	return fixed, unfixed
}

// fixDuplicate handles a property that appears more often than its
// cardinality allows. STATUS gets the special rule: when one of the
// duplicates is CANCELLED, that one is kept.
func (c *Component) fixDuplicate(name string, doFix bool, fixed, unfixed []string) ([]string, []string) {
	if !doFix {
		return fixed, append(unfixed, diag(c, name, "property appears more than once"))
	}
	ps := c.Properties(name)
	keep := ps[0]
	if utils.FoldCaseEqual(name, "STATUS") {
		for _, p := range ps {
			if t, ok := p.Value.(*value.Text); ok && equalFoldASCII(t.Raw, constants.StatusCancelled) {
				keep = p
				break
			}
		}
	}
	c.ReplaceProperty(keep)
	return append(fixed, diag(c, name, "duplicate properties removed")), unfixed
}

func diag(c *Component, name, reason string) string {
	return fmt.Sprintf("[%s] %s: %s", c.typeName, name, reason)
}
