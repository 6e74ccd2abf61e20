package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Version is an immutable label for one installed copy of a product
// (spec §3). Any string is a syntactically valid version; ordering
// between two versions is defined by Compare, never by string
// comparison.
type Version string

// The pseudo-versions ANY/NULL never appear as installed versions; they
// are flavor wildcards (see the db package) and are unrelated to
// Version ordering.

func (v Version) String() string { return string(v) }

// componentSplitter splits the VVV/EEE/FFF base strings on unescaped
// '.' or '_' runs, per §4.1 step 1.
var componentSplitter = regexp.MustCompile(`[._]+`)

var leadingDigits = regexp.MustCompile(`^[0-9]`)

// decompose splits a version string into its base (VVV), epoch (EEE)
// and build (FFF) parts per §4.1: "VVV[-EEE][+FFF] separated by
// unescaped '-' and '+'". A backslash escapes a literal '-', '+' or
// '\' that should not be treated as a separator.
func decompose(s string) (base, epoch, build string, hasEpoch, hasBuild bool) {
	if dash := findUnescaped(s, '-'); dash >= 0 {
		base = unescape(s[:dash])
		tail := s[dash+1:]
		hasEpoch = true
		if plus := findUnescaped(tail, '+'); plus >= 0 {
			epoch = unescape(tail[:plus])
			build = unescape(tail[plus+1:])
			hasBuild = true
		} else {
			epoch = unescape(tail)
		}
		return
	}

	if plus := findUnescaped(s, '+'); plus >= 0 {
		base = unescape(s[:plus])
		build = unescape(s[plus+1:])
		hasBuild = true
		return
	}

	base = unescape(s)
	return
}

// findUnescaped returns the index of the first unescaped occurrence of
// ch in s, or -1 if none exists.
func findUnescaped(s string, ch byte) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case ch:
			return i
		}
	}
	return -1
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	b := &strings.Builder{}
	b.Grow(len(s))
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Compare implements §4.1's three-step ordering algorithm. It returns
// a negative number if a < b, zero if a == b, and a positive number if
// a > b.
func Compare(a, b Version) int {
	baseA, epochA, buildA, hasEpochA, hasBuildA := decompose(string(a))
	baseB, epochB, buildB, hasEpochB, hasBuildB := decompose(string(b))

	if c := compareBase(baseA, baseB); c != 0 {
		return c
	}

	// Step 2: EEE sorts left of its absence (1.0-rc1 < 1.0).
	if hasEpochA != hasEpochB {
		if hasEpochA {
			return -1
		}
		return 1
	}
	if hasEpochA && hasEpochB {
		if c := Compare(Version(epochA), Version(epochB)); c != 0 {
			return c
		}
	}

	// Step 3: FFF sorts right of its absence (1.0 < 1.0+patch1).
	if hasBuildA != hasBuildB {
		if hasBuildA {
			return 1
		}
		return -1
	}
	if hasBuildA && hasBuildB {
		if c := Compare(Version(buildA), Version(buildB)); c != 0 {
			return c
		}
	}

	return 0
}

// Equal reports whether a and b compare equal under Compare.
func Equal(a, b Version) bool { return Compare(a, b) == 0 }

// Less reports whether a sorts strictly before b under Compare.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// compareBase compares two VVV/EEE/FFF base strings component by
// component (split on '.' or '_'), honoring the leading-prefix rule on
// the first component and the shorter-common-prefix-sorts-low rule.
func compareBase(a, b string) int {
	ca := splitComponents(a)
	cb := splitComponents(b)

	if len(ca) > 0 && len(cb) > 0 {
		prefixA, restA := splitPrefix(ca[0])
		prefixB, restB := splitPrefix(cb[0])
		if prefixA != prefixB {
			switch {
			case prefixA != "" && prefixB == "":
				return -1
			case prefixB != "" && prefixA == "":
				return 1
			case prefixA < prefixB:
				return -1
			default:
				return 1
			}
		}
		ca[0], cb[0] = restA, restB
	}

	for i := 0; ; i++ {
		switch {
		case i >= len(ca) && i >= len(cb):
			return 0
		case i >= len(ca):
			return -1
		case i >= len(cb):
			return 1
		}
		if c := compareComponent(ca[i], cb[i]); c != 0 {
			return c
		}
	}
}

func splitComponents(s string) []string {
	if s == "" {
		return nil
	}
	return componentSplitter.Split(s, -1)
}

// splitPrefix peels off a leading run of non-digit characters from the
// first version component, e.g. "rc1" -> ("rc", "1"), "1" -> ("", "1").
func splitPrefix(s string) (prefix, rest string) {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

// compareComponent compares a single component: numerically when both
// sides parse as integers, lexicographically otherwise.
func compareComponent(a, b string) int {
	if isInteger(a) && isInteger(b) {
		na, _ := strconv.Atoi(a)
		nb, _ := strconv.Atoi(b)
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func isInteger(s string) bool {
	return s != "" && leadingDigits.MatchString(s) && isAllDigits(s)
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
