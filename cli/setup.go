package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/eups-go/eups/envmut"
	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/resolve"
	"github.com/eups-go/eups/session"
	"github.com/eups-go/eups/table"
	"github.com/spf13/pflag"
)

// cmdSetup implements the `setup` verb (spec §6): resolve a product's
// dependency tree (C4), apply its actions against the inherited
// environment (C5), stamp session markers for every product touched
// (C6), and print the resulting delta in the caller's shell syntax.
func cmdSetup(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("setup")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) == 0 {
		return errs.ExitUsage, fmt.Errorf("setup: a product name is required")
	}
	product := positional[0]
	versionExpr := strings.Join(positional[1:], " ")
	flavor := ActiveFlavor(opts.Flavor, ctx.Env)
	shell := ParseShell(ctx.Env["EUPS_SHELL"])

	env := envmut.New(ctx.Env)
	start := env.Clone()

	if opts.Root != "" {
		if err := setupLocal(env, product, opts, flavor, ctx.Env); err != nil {
			return errs.CodeOf(err), err
		}
		PrintMutations(ctx.Stdout, shell, envmut.Diff(start, env))
		return errs.ExitOK, nil
	}

	stacks := Stacks(ctx.Env, opts.Stack, opts.StackFilter)
	if len(stacks) == 0 {
		return errs.ExitUsage, fmt.Errorf("setup: no stacks configured (set EUPS_PATH/EUPS_DIR, or pass -Z)")
	}

	req := resolve.Request{
		Product: product, VersionExpr: versionExpr, Tag: opts.Tag,
		Flavor: flavor, Stacks: stacks, Home: ctx.Home, Env: ctx.Env,
		JustThis: opts.JustThis, OnlyDependencies: opts.OnlyDependencies,
		IgnoreCurrent: opts.IgnoreCurrent,
	}

	plan, err := resolve.Resolve(req)
	if err != nil {
		printFatal(ctx.Stderr, err)
		return errs.CodeOf(err), nil
	}
	if opts.effectiveVerbosity() >= 1 {
		for _, w := range plan.Warnings {
			fmt.Fprintln(ctx.Stderr, "warning:", w)
		}
	}
	dumpDebug(ctx, opts, plan)

	// A second setup of an already-active product first unsets the old
	// version (spec §3's invariant, §8 scenario 3).
	if marker, active := activeMarker(ctx.Env, product); active && marker.Version != string(plan.Root.Version) {
		if _, err := unsetupProduct(env, marker, ctx.Env); err != nil && !opts.Force {
			return errs.ExitResolution, fmt.Errorf("setup: implicit unsetup of active %s: %w", product, err)
		}
	}

	engine := envmut.NewEngine(env, opts.Force)
	if err := engine.Apply(flattenActions(plan)); err != nil {
		return errs.ExitInternal, err
	}
	if err := recordMarkers(env, plan, flavor); err != nil {
		return errs.ExitInconsistent, err
	}

	PrintMutations(ctx.Stdout, shell, envmut.Diff(start, env))
	return errs.ExitOK, nil
}

// cmdUnsetup implements the `unsetup` verb (spec §6/§4.6): recover the
// recorded session marker for product, re-evaluate its table file and
// invert every action, then remove the marker.
func cmdUnsetup(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("unsetup")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) == 0 {
		return errs.ExitUsage, fmt.Errorf("unsetup: a product name is required")
	}
	product := positional[0]
	shell := ParseShell(ctx.Env["EUPS_SHELL"])

	marker, active := activeMarker(ctx.Env, product)
	if !active {
		return errs.ExitResolution, fmt.Errorf("unsetup: %s is not currently set up", product)
	}

	env := envmut.New(ctx.Env)
	start := env.Clone()

	if _, err := unsetupProduct(env, marker, ctx.Env); err != nil {
		fmt.Fprintln(ctx.Stderr, "warning:", err)
		// Best-effort: the marker and PRODUCT_DIR mirror are still
		// cleared even when the inverse plan could not be fully
		// reconstructed (spec §8 scenario 5).
		clearMarkers(env, product)
	}

	PrintMutations(ctx.Stdout, shell, envmut.Diff(start, env))
	return errs.ExitOK, nil
}

func flattenActions(plan *resolve.Plan) []table.ResolvedAction {
	out := make([]table.ResolvedAction, len(plan.Actions))
	for i, a := range plan.Actions {
		out[i] = a.ResolvedAction
	}
	return out
}

// setupLocal implements `setup -r <dir>` (spec §4.6, §9's Open
// Question: environment-only, never written to the database). The
// table file is read from dir/ups/<product>.table unless -m overrides
// it.
func setupLocal(env *envmut.Env, product string, opts *CommonOptions, flavor string, lookupEnv map[string]string) error {
	prodDir, err := filepath.Abs(opts.Root)
	if err != nil {
		return err
	}

	tableFile := opts.TableFile
	if tableFile == "" {
		tableFile = filepath.Join(prodDir, "ups", product+".table")
	} else if tableFile != "none" && !filepath.IsAbs(tableFile) {
		tableFile = filepath.Join(prodDir, "ups", tableFile)
	}

	var actions table.ActionList
	if tableFile != "none" {
		f, err := table.LoadFile(tableFile)
		if err != nil {
			return err
		}
		if f != nil {
			vars := map[string]string{
				"PRODUCT_NAME": product, "PRODUCT_DIR": prodDir,
				"PRODUCT_VERSION": "LOCAL", "FLAVOR": flavor, "UPS_DIR": "ups",
			}
			actions, err = table.Evaluate(f, flavor, vars, lookupEnv)
			if err != nil {
				return err
			}
		}
	}

	resolved := make([]table.ResolvedAction, 0, len(actions))
	for _, a := range actions {
		if a.Name == table.SetupRequired || a.Name == table.SetupOptional {
			continue // a local root's dependencies are out of scope for -r (spec is silent; kept minimal).
		}
		resolved = append(resolved, a)
	}

	engine := envmut.NewEngine(env, opts.Force)
	if err := engine.Apply(resolved); err != nil {
		return err
	}

	marker := session.SessionMarker{
		Product: product,
		Version: session.LocalPrefix + prodDir,
		Flavor:  flavor,
		Stack:   prodDir,
	}
	env.Vars[session.DirVarName(product)] = prodDir
	env.Vars[session.VarName(product)] = session.Format(marker)
	return nil
}

// printFatal writes spec §7's single FATAL message: the root cause
// followed by the chain of product frames that led to it.
func printFatal(stderr io.Writer, err error) {
	fmt.Fprintf(stderr, "FATAL: %v\n", err)
}
