package cli

import (
	"fmt"
	"io"

	"github.com/eups-go/eups/errs"
)

// Context carries the ambient state every verb needs: the inherited
// environment (spec §4.5's starting snapshot — a plain map, never the
// live process environment itself, per spec §9's redesign note), the
// user's home directory for user-tag resolution, and where to write
// shell-eval output versus human diagnostics. Separating Context from
// os.Environ()/os.Stdout the way the teacher separates run([]string)
// from main() is what makes every verb testable without a subprocess.
type Context struct {
	Env    map[string]string
	Home   string
	Stdout io.Writer
	Stderr io.Writer
}

const usage = `eups is a tool for managing concurrent versions of installed software.

Usage:

  eups <command> [options] [args]

The commands are:

  setup        activate a product (and its dependencies) in the shell
  unsetup      deactivate a previously set up product
  list         list declared products
  declare      declare a product version into the database
  undeclare    remove a declared product version
  tags         list, assign, or remove tags (chains)
  flavor       print the resolved active flavor
  expandtable  parse and print a product's table-file actions
  path         print the value a setup would contribute to a variable
`

// Run dispatches argv's verb, mirroring the teacher's run([]string)
// (int, error) shape so main can stay a two-line wrapper and every
// verb can be driven directly from tests.
func Run(ctx *Context, argv []string) (int, error) {
	if len(argv) < 2 {
		fmt.Fprint(ctx.Stderr, usage)
		return errs.ExitUsage, nil
	}

	if cfg, err := LoadUserConfig(ctx.Home); err == nil {
		ApplyUserConfig(ctx.Env, cfg)
	} else {
		fmt.Fprintln(ctx.Stderr, "warning: ~/.eups/config.toml:", err)
	}

	switch argv[1] {
	case "help", "--help", "-h":
		fmt.Fprint(ctx.Stdout, usage)
		return errs.ExitOK, nil
	case "setup":
		return cmdSetup(ctx, argv[2:])
	case "unsetup":
		return cmdUnsetup(ctx, argv[2:])
	case "list":
		return cmdList(ctx, argv[2:])
	case "declare":
		return cmdDeclare(ctx, argv[2:])
	case "undeclare":
		return cmdUndeclare(ctx, argv[2:])
	case "tags":
		return cmdTags(ctx, argv[2:])
	case "flavor":
		return cmdFlavor(ctx, argv[2:])
	case "expandtable":
		return cmdExpandtable(ctx, argv[2:])
	case "path":
		return cmdPath(ctx, argv[2:])
	default:
		fmt.Fprintf(ctx.Stderr, "eups %s: unknown command\n", argv[1])
		return errs.ExitUsage, nil
	}
}
