package value

import "strings"

// ParseExtendedText parses the extended (dashed/colon-separated)
// spellings the XML and JSON surfaces use for date, date-time, time
// and period values, delegating every other kind to the plain text
// parser. TEXT values on those surfaces carry no backslash escaping,
// so they are wrapped directly.
func ParseExtendedText(k Kind, raw string, ctx Context) (Value, error) {
	switch k {
	case KindDate, KindDateTime:
		compact := compactInstantText(raw)
		return ParseText(k, compact, ctx)
	case KindTime:
		return ParseText(k, strings.ReplaceAll(raw, ":", ""), ctx)
	case KindPeriod:
		parts := strings.SplitN(raw, "/", 2)
		if len(parts) == 2 {
			start := compactInstantText(parts[0])
			end := parts[1]
			if !strings.HasPrefix(end, "P") && !strings.HasPrefix(end, "+P") && !strings.HasPrefix(end, "-P") {
				end = compactInstantText(end)
			}
			return ParseText(k, start+"/"+end, ctx)
		}
		return ParseText(k, raw, ctx)
	case KindText, KindAdr, KindN, KindOrg:
		return NewText(raw), nil
	default:
		return ParseText(k, raw, ctx)
	}
}

// compactInstantText turns `2024-03-10T01:30:00[Z]` (or a bare dashed
// date) into the compact wire spelling.
func compactInstantText(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, ":", "")
}
