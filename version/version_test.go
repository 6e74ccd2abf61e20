package version

import (
	"testing"

	"github.com/blang/semver/v4"
)

func TestCompareOrdering(t *testing.T) {
	// Ascending order; every adjacent (and non-adjacent) pair must
	// satisfy Compare(lower, higher) < 0, per the scenario in spec §8.1.
	ascending := []Version{
		"3.370",
		"3.450",
		"3.450+hack1",
		"11.1",
		"12.1",
	}

	for i := range ascending {
		for j := range ascending {
			got := Compare(ascending[i], ascending[j])
			switch {
			case i < j && got >= 0:
				t.Errorf("Compare(%q, %q) = %d, want < 0", ascending[i], ascending[j], got)
			case i > j && got <= 0:
				t.Errorf("Compare(%q, %q) = %d, want > 0", ascending[i], ascending[j], got)
			case i == j && got != 0:
				t.Errorf("Compare(%q, %q) = %d, want 0", ascending[i], ascending[j], got)
			}
		}
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	pairs := [][2]Version{
		{"1.0", "1.0"},
		{"1.0", "2.0"},
		{"1.0-rc1", "1.0"},
		{"1.0", "1.0+patch1"},
		{"v1.2.3", "1.2.3"},
		{"3.1.0", "3.1"},
	}

	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if Compare(a, b) != -Compare(b, a) {
			t.Errorf("Compare(%q, %q) != -Compare(%q, %q)", a, b, b, a)
		}
	}
}

func TestPrereleaseSortsBeforeRelease(t *testing.T) {
	if !Less("1.0-rc1", "1.0") {
		t.Error("1.0-rc1 should sort before 1.0")
	}
}

func TestBuildSortsAfterRelease(t *testing.T) {
	if !Less("1.0", "1.0+patch1") {
		t.Error("1.0 should sort before 1.0+patch1")
	}
}

func TestShorterCommonPrefixSortsLow(t *testing.T) {
	if !Less("1.2", "1.2.1") {
		t.Error("1.2 should sort before 1.2.1")
	}
	if !Less("1.2", "1.2.0") {
		t.Error("1.2 should sort before 1.2.0")
	}
}

func TestMixedIntegerAndStringComponents(t *testing.T) {
	// "rc" is not an integer: string comparison applies to that component.
	if !Less("1.0.rc1", "1.0.rc2") {
		t.Error("1.0.rc1 should sort before 1.0.rc2")
	}
}

func TestLeadingPrefixMismatchSortsLow(t *testing.T) {
	// "v1.2" carries a leading prefix on its first component that "1.2"
	// lacks; per §4.1 the side carrying the prefix sorts low.
	if !Less("v1.2", "1.2") {
		t.Error(`"v1.2" should sort before "1.2"`)
	}
}

func TestEpochRecursesFullAlgorithm(t *testing.T) {
	// The EEE segments are themselves compared with the full
	// algorithm, including their own shorter-prefix rule.
	if !Less("1.0-rc1", "1.0-rc1.1") {
		t.Error("1.0-rc1 should sort before 1.0-rc1.1")
	}
}

// TestCompareAgainstSemverOracle cross-checks Compare against an
// independent ordering implementation (blang/semver) for the subset of
// inputs both algorithms can parse: plain MAJOR.MINOR.PATCH strings
// with no epoch or build segment, where EUPS ordering and strict
// SemVer precedence necessarily agree.
func TestCompareAgainstSemverOracle(t *testing.T) {
	versions := []string{
		"1.0.0", "1.0.1", "1.1.0", "2.0.0", "0.9.9", "10.0.0", "1.10.0", "1.2.0",
	}

	for _, a := range versions {
		for _, b := range versions {
			oracleA, err := semver.Parse(a)
			if err != nil {
				t.Fatalf("semver.Parse(%q): %v", a, err)
			}
			oracleB, err := semver.Parse(b)
			if err != nil {
				t.Fatalf("semver.Parse(%q): %v", b, err)
			}

			want := oracleA.Compare(oracleB)
			got := Compare(Version(a), Version(b))
			if sign(want) != sign(got) {
				t.Errorf("Compare(%q, %q) = %d, semver oracle says %d", a, b, got, want)
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
