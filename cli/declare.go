package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/eups-go/eups/db"
	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/version"
	"github.com/spf13/pflag"
)

// cmdDeclare implements the `declare` verb (spec §4.3's Declare):
// `declare [-f flavor] [-Z stack] [-m tablefile] [-t tag] <product>
// <version> <prodDir>`.
func cmdDeclare(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("declare")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) < 3 {
		return errs.ExitUsage, fmt.Errorf("declare: usage: declare <product> <version> <prodDir>")
	}
	product, v, dir := positional[0], positional[1], positional[2]

	stack, err := singleStack(ctx, opts)
	if err != nil {
		return errs.ExitUsage, err
	}
	flavor := ActiveFlavor(opts.Flavor, ctx.Env)

	prodDir, err := filepath.Abs(dir)
	if err != nil {
		return errs.ExitGeneral, err
	}

	tableFile := opts.TableFile
	if tableFile == "" {
		tableFile = product + ".table"
	}

	lock, err := stack.Lock()
	if err != nil {
		return errs.CodeOf(err), err
	}
	defer lock.Unlock()

	rec := db.VersionRecord{
		ProdDir:   prodDir,
		UpsDir:    "ups",
		TableFile: tableFile,
		Declarer:  ctx.Env["USER"],
		Declared:  nowRFC3339(),
	}
	if err := stack.Declare(product, version.Version(v), flavor, rec, opts.Force); err != nil {
		return errs.CodeOf(err), err
	}

	if opts.Tag != "" {
		home := ""
		if err := stack.Tag(home, product, opts.Tag, version.Version(v), flavor, ctx.Env["USER"]); err != nil {
			return errs.CodeOf(err), err
		}
	}

	fmt.Fprintf(ctx.Stdout, "declared %s %s for %s in %s\n", product, v, flavor, stack.Root)
	return errs.ExitOK, nil
}

// cmdUndeclare implements the `undeclare` verb: `undeclare [-f
// flavor] [-Z stack] <product> <version>`.
func cmdUndeclare(ctx *Context, args []string) (int, error) {
	fs, opts := newCommonFlagSet("undeclare")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return errs.ExitOK, nil
		}
		return errs.ExitUsage, err
	}
	positional := fs.Args()
	if len(positional) < 2 {
		return errs.ExitUsage, fmt.Errorf("undeclare: usage: undeclare <product> <version>")
	}
	product, v := positional[0], positional[1]

	stack, err := singleStack(ctx, opts)
	if err != nil {
		return errs.ExitUsage, err
	}
	flavor := ActiveFlavor(opts.Flavor, ctx.Env)

	lock, err := stack.Lock()
	if err != nil {
		return errs.CodeOf(err), err
	}
	defer lock.Unlock()

	if err := stack.Undeclare(product, version.Version(v), flavor); err != nil {
		return errs.CodeOf(err), err
	}
	fmt.Fprintf(ctx.Stdout, "undeclared %s %s for %s in %s\n", product, v, flavor, stack.Root)
	return errs.ExitOK, nil
}

// singleStack picks the one stack a write operation (declare,
// undeclare, tag) applies to: an explicit -Z, or the first entry of
// the stack path otherwise (spec §4.3's writes are always scoped to
// one stack).
func singleStack(ctx *Context, opts *CommonOptions) (db.Stack, error) {
	stacks := Stacks(ctx.Env, opts.Stack, opts.StackFilter)
	if len(stacks) == 0 {
		return db.Stack{}, fmt.Errorf("no stacks configured (set EUPS_PATH/EUPS_DIR, or pass -Z)")
	}
	return stacks[0], nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
