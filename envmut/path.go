package envmut

import "strings"

// hasElement reports whether x already appears as one of cur's
// d-split elements.
func hasElement(cur, x, d string) bool {
	if cur == "" {
		return false
	}
	for _, part := range strings.Split(cur, d) {
		if part == x {
			return true
		}
	}
	return false
}

// prepend prepends x to cur, suppressing the insertion if x is
// already present as a d-separated element (spec §4.5's duplicate
// suppression). An empty cur simply becomes x.
func prepend(cur, x, d string) string {
	if hasElement(cur, x, d) {
		return cur
	}
	if cur == "" {
		return x
	}
	return x + d + cur
}

// appendValue is the symmetric counterpart of prepend.
func appendValue(cur, x, d string) string {
	if hasElement(cur, x, d) {
		return cur
	}
	if cur == "" {
		return x
	}
	return cur + d + x
}

// removeAll strips every d-separated occurrence of x from cur,
// collapsing the adjacent separators that removal would otherwise
// leave behind (spec §4.5's envRemove).
func removeAll(cur, x, d string) string {
	if cur == "" {
		return cur
	}
	parts := strings.Split(cur, d)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != x {
			out = append(out, p)
		}
	}
	return strings.Join(out, d)
}

// removeOnce strips the first d-separated occurrence of x from cur.
// Nothing calls it: Invert turns a prepend/append into a remove
// action, which strips every occurrence of x (removeAll).
func removeOnce(cur, x, d string) string {
	if cur == "" {
		return cur
	}
	parts := strings.Split(cur, d)
	out := make([]string, 0, len(parts))
	removed := false
	for _, p := range parts {
		if !removed && p == x {
			removed = true
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, d)
}
