package cli

import (
	"fmt"

	"github.com/eups-go/eups/db"
	"github.com/eups-go/eups/envmut"
	"github.com/eups-go/eups/resolve"
	"github.com/eups-go/eups/session"
	"github.com/eups-go/eups/table"
	"github.com/eups-go/eups/version"
)

// activeMarker reports whether product currently carries a
// SETUP_<PRODUCT> marker, decoding it if so (spec §3's "SETUP_<P>
// present iff active" invariant).
func activeMarker(env map[string]string, product string) (session.SessionMarker, bool) {
	raw, ok := env[session.VarName(product)]
	if !ok {
		return session.SessionMarker{}, false
	}
	m, err := session.Parse(raw)
	if err != nil {
		return session.SessionMarker{}, false
	}
	return m, true
}

// recordMarkers stamps a SETUP_<P>/<P>_DIR pair into env for every
// product the plan touched (spec §4.6), using the resolved stack path
// to recover each product's on-disk ProdDir.
func recordMarkers(env *envmut.Env, plan *resolve.Plan, flavor string) error {
	for _, sel := range plan.Selections {
		prodDir, _, err := sel.Stack.FindVersionFile(sel.Product, sel.Version, flavor)
		if err != nil {
			return fmt.Errorf("recording session marker for %s: %w", sel.Product, err)
		}
		marker := session.SessionMarker{
			Product: sel.Product,
			Version: string(sel.Version),
			Flavor:  flavor,
			Stack:   sel.Stack.Root,
			Tag:     sel.Tag,
		}
		env.Vars[session.DirVarName(sel.Product)] = prodDir
		env.Vars[session.VarName(sel.Product)] = session.Format(marker)
	}
	return nil
}

// clearMarkers removes the SETUP_<P>/<P>_DIR pair for product,
// reversing recordMarkers (spec §4.6: unsetup destroys the marker).
func clearMarkers(env *envmut.Env, product string) {
	delete(env.Vars, session.VarName(product))
	delete(env.Vars, session.DirVarName(product))
}

// unsetupProduct inverts a previously applied setup for product,
// reconstructing its forward plan from the recorded marker (spec
// §4.4's "Unsetup resolution") and applying the structural inverse of
// every action in reverse order. lookupEnv is the environment to
// substitute ${VAR} against while re-evaluating the table file; it is
// independent from env (the live Env being mutated) because the two
// can diverge once unsetup has started stripping variables.
func unsetupProduct(env *envmut.Env, marker session.SessionMarker, lookupEnv map[string]string) (*resolve.Plan, error) {
	if marker.IsLocal() {
		return unsetupLocal(env, marker, lookupEnv)
	}

	stack := db.Stack{Root: marker.Stack}
	req := resolve.Request{
		Product: marker.Product, VersionExpr: string(marker.Version),
		Flavor: marker.Flavor, Stacks: []db.Stack{stack}, Env: lookupEnv,
	}
	plan, err := resolve.Resolve(req)
	if err != nil {
		mismatch, msg := session.CheckStateMismatch(marker.Product, lookupEnv[session.DirVarName(marker.Product)], lookupEnv)
		if mismatch {
			return nil, fmt.Errorf("%s: %s (STATE_MISMATCH): %w", marker.Product, msg, err)
		}
		return nil, err
	}

	resolvedActions := make([]table.ResolvedAction, len(plan.Actions))
	for i, a := range plan.Actions {
		resolvedActions[i] = a.ResolvedAction
	}
	eng := envmut.NewEngine(env, true)
	if err := eng.Apply(envmut.InvertList(resolvedActions)); err != nil {
		return nil, fmt.Errorf("applying inverse actions for %s: %w", marker.Product, err)
	}

	for _, sel := range plan.Selections {
		clearMarkers(env, sel.Product)
	}
	return plan, nil
}

// unsetupLocal inverts a `setup -r <dir>` local setup: it was never
// recorded in any database, so its table file is found directly under
// dir/ups (spec §4.6, §9's Open Question: local setups are
// environment-only).
func unsetupLocal(env *envmut.Env, marker session.SessionMarker, lookupEnv map[string]string) (*resolve.Plan, error) {
	dir, _ := marker.LocalDir()
	prodDir := dir
	tableFile := prodDir + "/ups/" + marker.Product + ".table"

	f, err := table.LoadFile(tableFile)
	if err != nil {
		clearMarkers(env, marker.Product)
		return nil, fmt.Errorf("%s: local product dir gone (STATE_MISMATCH): %w", marker.Product, err)
	}

	var actions table.ActionList
	if f != nil {
		vars := map[string]string{
			"PRODUCT_NAME": marker.Product, "PRODUCT_DIR": prodDir,
			"PRODUCT_VERSION": string(marker.Version), "FLAVOR": marker.Flavor,
		}
		actions, err = table.Evaluate(f, marker.Flavor, vars, lookupEnv)
		if err != nil {
			return nil, err
		}
	}

	eng := envmut.NewEngine(env, true)
	if err := eng.Apply(envmut.InvertList(actions)); err != nil {
		return nil, err
	}
	clearMarkers(env, marker.Product)

	return &resolve.Plan{
		Root: db.ProductVersion{Product: marker.Product, Version: version.Version(marker.Version)},
	}, nil
}
