package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/eups-go/eups/db"
	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/session"
	"github.com/spf13/pflag"
)

// cmdList implements the `list` verb (spec §6, §4.3's ListProducts):
// a human-readable table of declared (product, version, stack), their
// tags, and whether each is currently active. Flavor is not shown.
func cmdList(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("list")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	product := ""
	if positional := fs.Args(); len(positional) > 0 {
		product = positional[0]
	}

	stacks := Stacks(ctx.Env, opts.Stack, opts.StackFilter)
	if len(stacks) == 0 {
		return errs.ExitUsage, fmt.Errorf("list: no stacks configured (set EUPS_PATH/EUPS_DIR, or pass -Z)")
	}

	entries, err := db.ListProducts(stacks, product)
	if err != nil {
		return errs.ExitInconsistent, err
	}

	active := make(map[string]session.SessionMarker)
	for _, m := range session.ActiveProducts(ctx.Env) {
		active[m.Product] = m
	}

	tagsByProduct := make(map[string][]db.TagPointer)

	w := tabwriter.NewWriter(ctx.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tVERSION\tSTACK\tTAGS\tSETUP")
	for _, e := range entries {
		tags, ok := tagsByProduct[e.Product]
		if !ok {
			tags, _ = e.Stack.Tags(e.Product)
			tagsByProduct[e.Product] = tags
		}

		var names []string
		for _, t := range tags {
			if t.Version == e.Version {
				names = append(names, t.Tag)
			}
		}

		setup := ""
		if m, ok := active[e.Product]; ok && m.Version == string(e.Version) {
			setup = "Y"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Product, e.Version, e.Stack.Root, strings.Join(names, ","), setup)
	}
	return errs.ExitOK, w.Flush()
}
