package table

import "testing"

func vars() map[string]string {
	return map[string]string{
		"PRODUCT_NAME":    "afw",
		"PRODUCT_DIR":     "/opt/afw/11.0",
		"PRODUCT_VERSION": "11.0",
		"UPS_DIR":         "ups",
		"FLAVOR":          "Linux64",
		"BUILD":           "opt",
	}
}

func TestParseFlatStyle(t *testing.T) {
	src := `
# comment line
Flavor = Linux64
envPrepend(PATH, ${PRODUCT_DIR}/bin)
setupRequired(base >= 1.0)
Flavor = ANY
envSet(FOO, bar)
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(f.Blocks))
	}

	actions, err := Evaluate(f, "Linux64", vars(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d: %+v", len(actions), actions)
	}
	if actions[0].Name != EnvPrepend || actions[0].Args[0] != "PATH" || actions[0].Args[1] != "/opt/afw/11.0/bin" {
		t.Errorf("unexpected first action: %+v", actions[0])
	}
	if actions[1].Name != SetupRequired {
		t.Errorf("unexpected second action: %+v", actions[1])
	}
}

func TestParseGroupedStyle(t *testing.T) {
	src := `
Group:
	Flavor = Linux64
Common:
	envSet(X, 1)
End:
Group:
	Flavor = ANY
Common:
	envSet(X, 0)
End:
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}

	actions, err := Evaluate(f, "Darwin64", vars(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Args[1] != "0" {
		t.Fatalf("expected ANY fallback to apply, got %+v", actions)
	}
}

func TestFirstMatchingBlockWins(t *testing.T) {
	src := `
Flavor = ANY
envSet(X, any)
Flavor = Linux64
envSet(X, linux)
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	actions, err := Evaluate(f, "Linux64", vars(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Args[1] != "any" {
		t.Fatalf("expected the first ANY block to win, got %+v", actions)
	}
}

func TestNoMatchingFlavor(t *testing.T) {
	src := `
Flavor = Darwin64
envSet(X, 1)
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Evaluate(f, "Linux64", vars(), nil); err != ErrNoMatchingFlavor {
		t.Fatalf("expected ErrNoMatchingFlavor, got %v", err)
	}
}

func TestIfConditional(t *testing.T) {
	src := `
Flavor = ANY
if (BUILD == opt) {
	envSet(MODE, optimized)
}
if (BUILD == debug) {
	envSet(MODE, debug)
}
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	actions, err := Evaluate(f, "ANY", vars(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Args[1] != "optimized" {
		t.Fatalf("expected only the BUILD==opt branch, got %+v", actions)
	}
}

func TestOptionalVarGuardSkipsAction(t *testing.T) {
	src := `
Flavor = ANY
envPrepend(EXTRA_PATH, $?{UNDEFINED_VAR}/lib)
envSet(AFTER, still-here)
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	actions, err := Evaluate(f, "ANY", vars(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Name != EnvSet {
		t.Fatalf("expected the guarded action to be skipped entirely, got %+v", actions)
	}
}

func TestProcessEnvFallback(t *testing.T) {
	src := `
Flavor = ANY
envSet(HOME_COPY, ${HOME})
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	actions, err := Evaluate(f, "ANY", vars(), map[string]string{"HOME": "/home/obs"})
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Args[1] != "/home/obs" {
		t.Fatalf("expected process-env fallback, got %+v", actions)
	}
}

func TestUnknownActionIsParseError(t *testing.T) {
	src := `
Flavor = ANY
bogusAction(1)
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Evaluate(f, "ANY", vars(), nil); err == nil {
		t.Fatal("expected an error for an unknown action")
	}
}

func TestDeprecatedProddirRecognized(t *testing.T) {
	src := `
Flavor = ANY
proddir()
`
	f, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	actions, err := Evaluate(f, "ANY", vars(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || !actions[0].Deprecated {
		t.Fatalf("expected a deprecated proddir action, got %+v", actions)
	}
}
