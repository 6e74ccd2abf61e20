package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/eups-go/eups/db"
	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/version"
	"github.com/spf13/pflag"
)

// cmdTags implements the `tags` verb (spec §4.3's Tag/Untag): a small
// subcommand dispatcher, `tags list [product]`, `tags assign <tag>
// <product> <version>`, and `tags remove <tag> <product>`, each
// accepting the common -f/-Z/-u options.
func cmdTags(ctx *Context, args []string) (int, error) {
	if len(args) == 0 {
		return errs.ExitUsage, fmt.Errorf("tags: usage: tags list|assign|remove ...")
	}
	switch args[0] {
	case "list":
		return cmdTagsList(ctx, args[1:])
	case "assign":
		return cmdTagsAssign(ctx, args[1:])
	case "remove":
		return cmdTagsRemove(ctx, args[1:])
	default:
		return errs.ExitUsage, fmt.Errorf("tags: unknown subcommand %q", args[0])
	}
}

func newTagFlagSet(name string) (*pflag.FlagSet, *CommonOptions, *bool) {
	fs, opts := newCommonFlagSet(name)
	user := fs.BoolP("user", "u", false, "operate on the caller's personal tag, not the shared one")
	return fs, opts, user
}

func cmdTagsList(ctx *Context, args []string) (int, error) {
	fs, opts, _ := newTagFlagSet("tags list")
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
		return errs.ExitUsage, fmt.Errorf("tags: no stacks configured")
	}

	w := tabwriter.NewWriter(ctx.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tPRODUCT\tFLAVOR\tVERSION\tSTACK")
	products, err := db.ListProducts(stacks, product)
	if err != nil {
		return errs.ExitInconsistent, err
	}
	seen := make(map[string]bool)
	for _, p := range products {
		if seen[p.Product] {
			continue
		}
		seen[p.Product] = true
		tags, err := p.Stack.Tags(p.Product)
		if err != nil {
			return errs.ExitInconsistent, err
		}
		for _, t := range tags {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Tag, p.Product, t.Flavor, t.Version, p.Stack.Root)
		}
	}
	return errs.ExitOK, w.Flush()
}

func cmdTagsAssign(ctx *Context, args []string) (int, error) {
	fs, opts, user := newTagFlagSet("tags assign")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) < 3 {
		return errs.ExitUsage, fmt.Errorf("tags assign: usage: tags assign <tag> <product> <version>")
	}
	tag, product, v := positional[0], positional[1], positional[2]

	stack, err := singleStack(ctx, opts)
	if err != nil {
		return errs.ExitUsage, err
	}
	flavor := ActiveFlavor(opts.Flavor, ctx.Env)

	home := ""
	if *user {
		home = ctx.Home
	}

	lock, err := stack.Lock()
	if err != nil {
		return errs.CodeOf(err), err
	}
	defer lock.Unlock()

	if err := stack.Tag(home, product, tag, version.Version(v), flavor, ctx.Env["USER"]); err != nil {
		return errs.CodeOf(err), err
	}
	fmt.Fprintf(ctx.Stdout, "%s now points at %s %s for %s\n", tag, product, v, flavor)
	return errs.ExitOK, nil
}

func cmdTagsRemove(ctx *Context, args []string) (int, error) {
	fs, opts, user := newTagFlagSet("tags remove")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) < 2 {
		return errs.ExitUsage, fmt.Errorf("tags remove: usage: tags remove <tag> <product>")
	}
	tag, product := positional[0], positional[1]

	stack, err := singleStack(ctx, opts)
	if err != nil {
		return errs.ExitUsage, err
	}
	flavor := ActiveFlavor(opts.Flavor, ctx.Env)

	home := ""
	if *user {
		home = ctx.Home
	}

	lock, err := stack.Lock()
	if err != nil {
		return errs.CodeOf(err), err
	}
	defer lock.Unlock()

	if err := stack.Untag(home, product, tag, flavor); err != nil {
		return errs.CodeOf(err), err
	}
	fmt.Fprintf(ctx.Stdout, "removed %s for %s %s\n", tag, product, flavor)
	return errs.ExitOK, nil
}
