package cli

import (
	"fmt"

	"github.com/eups-go/eups/envmut"
	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/resolve"
	"github.com/spf13/pflag"
)

// cmdPath implements the `path` verb: print the value a setup would
// contribute to a path-flavored variable (default PATH, overridden by
// -m) without emitting shell-eval statements (SPEC_FULL.md's
// SUPPLEMENTED FEATURES, the structural analogue of a tool that
// assembles PYTHONPATH from a resolved dependency list, generalized to
// any variable). `path <product> [version-expr]`.
func cmdPath(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("path")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) < 1 {
		return errs.ExitUsage, fmt.Errorf("path: usage: path <product> [version-expr]")
	}
	product := positional[0]
	versionExpr := ""
	if len(positional) > 1 {
		versionExpr = positional[1]
	}

	variable := opts.TableFile
	if variable == "" {
		variable = "PATH"
	}

	stacks := Stacks(ctx.Env, opts.Stack, opts.StackFilter)
	if len(stacks) == 0 {
		return errs.ExitUsage, fmt.Errorf("path: no stacks configured")
	}
	flavor := ActiveFlavor(opts.Flavor, ctx.Env)

	plan, err := resolve.Resolve(resolve.Request{
		Product: product, VersionExpr: versionExpr, Tag: opts.Tag,
		Flavor: flavor, Stacks: stacks, Home: Home(ctx.Env), Env: ctx.Env,
		JustThis: opts.JustThis, OnlyDependencies: opts.OnlyDependencies,
		IgnoreCurrent: opts.IgnoreCurrent,
	})
	if err != nil {
		return errs.CodeOf(err), err
	}

	env := envmut.New(ctx.Env)
	engine := envmut.NewEngine(env, true)
	if err := engine.Apply(flattenActions(plan)); err != nil {
		return errs.ExitInternal, err
	}

	fmt.Fprintln(ctx.Stdout, env.Vars[variable])
	return errs.ExitOK, nil
}
