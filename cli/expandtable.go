package cli

import (
	"fmt"
	"strings"

	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/resolve"
	"github.com/spf13/pflag"
)

// cmdExpandtable implements the `expandtable` verb: parse and evaluate
// one product's table file for the active flavor/build and print the
// resulting ActionList, one action per line, without applying it
// (SPEC_FULL.md's SUPPLEMENTED FEATURES). `expandtable <product>
// [version-expr]`.
func cmdExpandtable(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("expandtable")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) < 1 {
		return errs.ExitUsage, fmt.Errorf("expandtable: usage: expandtable <product> [version-expr]")
	}
	product := positional[0]
	versionExpr := ""
	if len(positional) > 1 {
		versionExpr = positional[1]
	}

	stacks := Stacks(ctx.Env, opts.Stack, opts.StackFilter)
	if len(stacks) == 0 {
		return errs.ExitUsage, fmt.Errorf("expandtable: no stacks configured")
	}
	flavor := ActiveFlavor(opts.Flavor, ctx.Env)

	plan, err := resolve.Resolve(resolve.Request{
		Product:     product,
		VersionExpr: versionExpr,
		Tag:         opts.Tag,
		Flavor:      flavor,
		Stacks:      stacks,
		Home:        Home(ctx.Env),
		Env:         ctx.Env,
		JustThis:    true,
	})
	if err != nil {
		return errs.CodeOf(err), err
	}

	for _, a := range plan.Actions {
		fmt.Fprintf(ctx.Stdout, "%s(%s)\n", a.Name, strings.Join(a.Args, ", "))
	}
	return errs.ExitOK, nil
}
