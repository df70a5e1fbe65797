package normalize

import "strings"

// sectionSeparator is the blank line placed between narrative sections.
const sectionSeparator = "\n\n"

// ComposeDescription joins narrative fragments in the given priority order.
// Fragments are trimmed; empty fragments and exact repeats of an earlier
// fragment are skipped.
func ComposeDescription(candidates ...string) string {
	seen := make(map[string]struct{}, len(candidates))
	sections := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		sections = append(sections, c)
	}
	return strings.Join(sections, sectionSeparator)
}

// scopeSection renders "Scope: ..." or "" when the summary is blank.
func scopeSection(summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return ""
	}
	return "Scope: " + summary
}

// scopeItemsSection renders a bulleted "Scope Items:" block.
func scopeItemsSection(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Scope Items:")
	for _, it := range items {
		b.WriteString("\n- ")
		b.WriteString(strings.TrimSpace(it))
	}
	return b.String()
}
