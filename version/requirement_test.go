package version

import "testing"

func TestParseExprBareImpliesEqual(t *testing.T) {
	e, err := ParseExpr("3.450")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 1 || e[0].Op != EqualTo || e[0].Version != "3.450" {
		t.Fatalf("got %#v", e)
	}
}

func TestParseExprEmptyMatchesEverything(t *testing.T) {
	e, err := ParseExpr("")
	if err != nil {
		t.Fatal(err)
	}
	if !e.Satisfies("0.0.1") || !e.Satisfies("99.0") {
		t.Fatal("empty expression should match any version")
	}
}

func TestParseExprOrOfPrimaries(t *testing.T) {
	e, err := ParseExpr(">= 11.0 || == 9.0")
	if err != nil {
		t.Fatal(err)
	}
	if len(e) != 2 {
		t.Fatalf("expected 2 primaries, got %d", len(e))
	}
	if !e.Satisfies("11.5") || !e.Satisfies("9.0") || e.Satisfies("10.0") {
		t.Fatal("unexpected Satisfies result")
	}
}

func TestParseExprRejectsGarbage(t *testing.T) {
	if _, err := ParseExpr("== "); err == nil {
		t.Fatal("expected error for missing version")
	}
}

// TestCfitsioScenario matches spec §8.1: given versions 3.370, 3.450,
// 3.450+hack1, a request ">= 3.450" must select 3.450+hack1 as the
// highest matching version.
func TestCfitsioScenario(t *testing.T) {
	e, err := ParseExpr(">= 3.450")
	if err != nil {
		t.Fatal(err)
	}

	versions := []Version{"3.370", "3.450", "3.450+hack1"}
	var best Version
	found := false
	for _, v := range versions {
		if !e.Satisfies(v) {
			continue
		}
		if !found || Less(best, v) {
			best = v
			found = true
		}
	}

	if !found || best != "3.450+hack1" {
		t.Fatalf("expected 3.450+hack1, got %q (found=%v)", best, found)
	}
}
