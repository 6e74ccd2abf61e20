package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eups-go/eups/db"
	"github.com/eups-go/eups/version"
)

func declareProduct(t *testing.T, s db.Stack, product, v, flavor, tableSrc string) {
	t.Helper()
	prodDir := filepath.Join(s.Root, "products", product, v)
	if err := os.MkdirAll(filepath.Join(prodDir, "ups"), 0o755); err != nil {
		t.Fatal(err)
	}
	tablePath := filepath.Join(prodDir, "ups", product+".table")
	if tableSrc == "" {
		tableSrc = "Flavor = ANY\nenvSet(DUMMY, 1)\n"
	}
	if err := os.WriteFile(tablePath, []byte(tableSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := db.VersionRecord{ProdDir: prodDir, TableFile: product + ".table"}
	if err := s.Declare(product, version.Version(v), flavor, rec, false); err != nil {
		t.Fatal(err)
	}
}

func TestResolveSimpleChain(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "cfitsio", "3.450", "Linux64", "")
	declareProduct(t, s, "afw", "11.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio == 3.450)\nenvSet(AFW_READY, 1)\n")

	plan, err := Resolve(Request{Product: "afw", VersionExpr: "11.0", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err != nil {
		t.Fatal(err)
	}
	if !version.Equal(plan.Root.Version, version.Version("11.0")) {
		t.Errorf("root version = %s", plan.Root.Version)
	}
	if len(plan.Actions) != 2 {
		t.Fatalf("expected 2 actions (dependency first), got %d: %+v", len(plan.Actions), plan.Actions)
	}
	if plan.Actions[0].Product != "cfitsio" {
		t.Errorf("expected cfitsio's action first, got %s", plan.Actions[0].Product)
	}
	if plan.Actions[1].Product != "afw" {
		t.Errorf("expected afw's action last, got %s", plan.Actions[1].Product)
	}
}

func TestResolveConsistentDiamondReuses(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "cfitsio", "3.450", "Linux64", "")
	declareProduct(t, s, "wcslib", "7.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio >= 3.0)\n")
	declareProduct(t, s, "afw", "11.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio == 3.450)\nsetupRequired(wcslib == 7.0)\n")

	plan, err := Resolve(Request{Product: "afw", VersionExpr: "11.0", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for _, a := range plan.Actions {
		if a.Product == "cfitsio" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected cfitsio's actions emitted exactly once, got %d", count)
	}
}

func TestResolveInconsistentVersionsFails(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "cfitsio", "3.370", "Linux64", "")
	declareProduct(t, s, "cfitsio", "3.450", "Linux64", "")
	declareProduct(t, s, "wcslib", "7.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio == 3.370)\n")
	declareProduct(t, s, "afw", "11.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio == 3.450)\nsetupRequired(wcslib == 7.0)\n")

	_, err := Resolve(Request{Product: "afw", VersionExpr: "11.0", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := err.(*FrameError)
	if !ok {
		t.Fatalf("expected *FrameError, got %T", err)
	}
	if _, ok := fe.Err.(*InconsistentVersionsError); !ok {
		t.Fatalf("expected *InconsistentVersionsError, got %T", fe.Err)
	}
}

func TestResolveOptionalFailureSwallowed(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "afw", "11.0", "Linux64",
		"Flavor = Linux64\nsetupOptional(missingpkg)\nenvSet(AFW_READY, 1)\n")

	plan, err := Resolve(Request{Product: "afw", VersionExpr: "11.0", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Warnings) == 0 {
		t.Error("expected a warning about the missing optional dependency")
	}
	if len(plan.Actions) != 1 {
		t.Fatalf("expected afw's own action to still be emitted, got %+v", plan.Actions)
	}
}

func TestResolveCycleDetected(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "a", "1.0", "Linux64", "Flavor = Linux64\nsetupRequired(b == 1.0)\n")
	declareProduct(t, s, "b", "1.0", "Linux64", "Flavor = Linux64\nsetupRequired(a == 2.0)\n")

	_, err := Resolve(Request{Product: "a", VersionExpr: "1.0", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := err.(*FrameError)
	if !ok {
		t.Fatalf("expected *FrameError, got %T", err)
	}
	if _, ok := fe.Err.(*CycleError); !ok {
		t.Fatalf("expected *CycleError, got %T (%v)", fe.Err, fe.Err)
	}
}

func TestResolveJustThisSkipsChildren(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "cfitsio", "3.450", "Linux64", "")
	declareProduct(t, s, "afw", "11.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio == 3.450)\nenvSet(AFW_READY, 1)\n")

	plan, err := Resolve(Request{
		Product: "afw", VersionExpr: "11.0", Flavor: "Linux64", Stacks: []db.Stack{s}, JustThis: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Product != "afw" {
		t.Fatalf("expected only afw's own action, got %+v", plan.Actions)
	}
}

func TestResolveOnlyDependenciesDropsRootActions(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "cfitsio", "3.450", "Linux64", "")
	declareProduct(t, s, "afw", "11.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio == 3.450)\nenvSet(AFW_READY, 1)\n")

	plan, err := Resolve(Request{
		Product: "afw", VersionExpr: "11.0", Flavor: "Linux64", Stacks: []db.Stack{s}, OnlyDependencies: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Product != "cfitsio" {
		t.Fatalf("expected only cfitsio's action, got %+v", plan.Actions)
	}
}

func TestResolveExpressionPicksHighestSatisfying(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "cfitsio", "3.370", "Linux64", "")
	declareProduct(t, s, "cfitsio", "3.450", "Linux64", "")
	declareProduct(t, s, "cfitsio", "3.450+hack1", "Linux64", "")

	plan, err := Resolve(Request{Product: "cfitsio", VersionExpr: ">= 3.450", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err != nil {
		t.Fatal(err)
	}
	if !version.Equal(plan.Root.Version, version.Version("3.450+hack1")) {
		t.Errorf("root version = %s, want 3.450+hack1", plan.Root.Version)
	}
}

func TestResolveTagBasedRoot(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "afw", "11.0", "Linux64", "")
	if err := s.Tag("", "afw", "current", version.Version("11.0"), "Linux64", "bob"); err != nil {
		t.Fatal(err)
	}

	plan, err := Resolve(Request{Product: "afw", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err != nil {
		t.Fatal(err)
	}
	if !version.Equal(plan.Root.Version, version.Version("11.0")) {
		t.Errorf("root version = %s", plan.Root.Version)
	}
}

func TestResolveSelectionsCoverEveryProductAndTag(t *testing.T) {
	s := db.Stack{Root: t.TempDir()}
	declareProduct(t, s, "cfitsio", "3.450", "Linux64", "")
	declareProduct(t, s, "afw", "11.0", "Linux64",
		"Flavor = Linux64\nsetupRequired(cfitsio == 3.450)\n")
	if err := s.Tag("", "afw", "current", version.Version("11.0"), "Linux64", "bob"); err != nil {
		t.Fatal(err)
	}

	plan, err := Resolve(Request{Product: "afw", Flavor: "Linux64", Stacks: []db.Stack{s}})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Selections) != 2 {
		t.Fatalf("expected one selection per product, got %d: %+v", len(plan.Selections), plan.Selections)
	}
	if plan.Selections[0].Product != "afw" || plan.Selections[0].Tag != "current" {
		t.Errorf("expected root afw resolved via tag %q, got %+v", "current", plan.Selections[0])
	}
	if plan.Selections[1].Product != "cfitsio" || plan.Selections[1].Tag != "" {
		t.Errorf("expected cfitsio resolved via its explicit expr (no tag), got %+v", plan.Selections[1])
	}
}
