package cli

import (
	"fmt"

	"github.com/eups-go/eups/errs"
	"github.com/spf13/pflag"
)

// cmdFlavor implements the `flavor` verb: print the flavor that would
// be used to resolve a setup right now, honoring the same -f/EUPS_FLAVOR
// precedence as every other verb (spec §6).
func cmdFlavor(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("flavor")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	fmt.Fprintln(ctx.Stdout, ActiveFlavor(opts.Flavor, ctx.Env))
	return errs.ExitOK, nil
}
