package resolve

import (
	"fmt"
	"strings"

	"github.com/eups-go/eups/db"
	"github.com/eups-go/eups/table"
	"github.com/eups-go/eups/version"
)

// Frame is one entry of the resolver's cycle-detection stack: the
// product and version currently being expanded (spec §4.4's "stack:
// list<frame>").
type Frame struct {
	Product string
	Version version.Version
}

// Action is one table-file action tagged with the (product, version)
// that owns it, per spec §4.4 step 5's audit requirement.
type Action struct {
	table.ResolvedAction
	Product string
	Version version.Version
}

// Plan is the resolver's output: a fully ordered ActionList (a
// dependency's actions precede its dependent's) plus the root
// selection and any non-fatal diagnostics collected along the way.
type Plan struct {
	Root     db.ProductVersion
	Actions  []Action
	Warnings []string

	// Selections lists every distinct product this plan resolved, in
	// first-selected order (root included), for C6's session-marker
	// bookkeeping: one SETUP_<P>/<P>_DIR pair per product the plan
	// actually touched, not just the root (spec §3's invariant that a
	// SETUP_<PRODUCT> marker is present iff the product is active).
	Selections []Selection
}

// Selection is one resolved (product, version, stack), plus the tag
// name it was resolved through when its request carried no explicit
// version expression (empty otherwise).
type Selection struct {
	db.ProductVersion
	Tag string
}

type selection struct {
	version version.Version
	expr    string
}

type resolver struct {
	req        Request
	selected   map[string]selection
	frames     []Frame
	warnings   []string
	selections []Selection
}

// Resolve walks req's dependency tree and produces a single ordered
// Plan, or a *FrameError wrapping the root cause with the chain of
// frames active when it occurred (spec §7).
func Resolve(req Request) (*Plan, error) {
	r := &resolver{req: req, selected: make(map[string]selection)}

	actions, pv, err := r.resolveProduct(req.Product, req.VersionExpr, req.Tag, true)
	if err != nil {
		return nil, err
	}

	if req.OnlyDependencies {
		actions = actions[:len(actions)-countOwn(actions, req.Product, pv.Version)]
	}

	return &Plan{Root: pv, Actions: actions, Warnings: r.warnings, Selections: r.selections}, nil
}

func countOwn(actions []Action, product string, v version.Version) int {
	n := 0
	for _, a := range actions {
		if a.Product == product && version.Equal(a.Version, v) {
			n++
		}
	}
	return n
}

// resolveProduct resolves one (product, versionExpr|tag) node: selects
// its version, reads its table file, and recurses into its required
// and optional children, per spec §4.4 steps 1-4. isRoot marks the
// root request, for which -j suppresses recursion into children. A
// failing setupRequired child propagates; a failing setupOptional
// child is turned into a warning.
func (r *resolver) resolveProduct(product, expr, tag string, isRoot bool) ([]Action, db.ProductVersion, error) {
	if fi := r.frameIndex(product); fi >= 0 {
		frame := r.frames[fi]
		if expr == "" || satisfiesExpr(frame.Version, expr) {
			return nil, db.ProductVersion{Product: product, Version: frame.Version}, nil
		}
		chain := make([]string, 0, len(r.frames)+1)
		for _, f := range r.frames {
			chain = append(chain, f.Product)
		}
		chain = append(chain, product)
		return nil, db.ProductVersion{}, r.fail(&CycleError{Chain: chain})
	}

	if existing, ok := r.selected[product]; ok {
		if expr == "" || satisfiesExpr(existing.version, expr) {
			if expr != "" && expr != existing.expr {
				r.warnings = append(r.warnings, fmt.Sprintf(
					"%s already set up at %s (via %q); reusing for %q", product, existing.version, existing.expr, expr))
			}
			return nil, db.ProductVersion{Product: product, Version: existing.version}, nil
		}
		return nil, db.ProductVersion{}, r.fail(&InconsistentVersionsError{
			Product: product, SelectedVersion: existing.version, RequestedExpr: expr,
		})
	}

	sel, err := r.resolveNode(product, expr, tag)
	if err != nil {
		return nil, db.ProductVersion{}, r.fail(err)
	}

	r.selected[product] = selection{version: sel.version, expr: expr}
	selTag := ""
	if expr == "" {
		selTag = tag
		if selTag == "" {
			selTag = "current"
		}
	}
	r.selections = append(r.selections, Selection{
		ProductVersion: db.ProductVersion{Product: product, Version: sel.version, Stack: sel.stack},
		Tag:            selTag,
	})
	r.frames = append(r.frames, Frame{Product: product, Version: sel.version})
	defer func() { r.frames = r.frames[:len(r.frames)-1] }()

	var out []Action

	if !(isRoot && r.req.JustThis) {
		for _, a := range sel.actionList {
			if a.Name != table.SetupRequired && a.Name != table.SetupOptional {
				continue
			}
			for _, arg := range a.Args {
				childProduct, childExpr, childTag := splitSetupArg(arg)
				if r.req.IgnoreCurrent {
					childExpr = ""
				}
				required := a.Name == table.SetupRequired

				childActions, _, err := r.resolveProduct(childProduct, childExpr, childTag, false)
				if err != nil {
					if required {
						return nil, db.ProductVersion{}, err
					}
					r.warnings = append(r.warnings, fmt.Sprintf("optional %s: %v", childProduct, err))
					continue
				}
				out = append(out, childActions...)
			}
		}
	}

	for _, a := range sel.actionList {
		if a.Name == table.SetupRequired || a.Name == table.SetupOptional {
			continue
		}
		out = append(out, Action{ResolvedAction: a, Product: product, Version: sel.version})
	}

	return out, db.ProductVersion{Product: product, Version: sel.version, Stack: sel.stack}, nil
}

type resolvedNode struct {
	stack      db.Stack
	version    version.Version
	actionList table.ActionList
}

func (r *resolver) resolveNode(product, expr, tag string) (resolvedNode, error) {
	stack, v, err := selectRootVersion(Request{
		Product: product, VersionExpr: expr, Tag: tag,
		Flavor: r.req.Flavor, Stacks: r.req.Stacks, Home: r.req.Home,
	})
	if err != nil {
		return resolvedNode{}, err
	}

	prodDir, tableFile, err := stack.FindVersionFile(product, v, r.req.Flavor)
	if err != nil {
		return resolvedNode{}, err
	}

	var actions table.ActionList
	if tableFile != "" {
		f, err := table.LoadFile(tableFile)
		if err != nil {
			return resolvedNode{}, err
		}
		if f != nil {
			vars := map[string]string{
				"PRODUCT_NAME":    product,
				"PRODUCT_DIR":     prodDir,
				"PRODUCT_VERSION": string(v),
				"UPS_DIR":         "ups",
				"FLAVOR":          r.req.Flavor,
				"BUILD":           r.req.BuildType,
			}
			actions, err = table.Evaluate(f, r.req.Flavor, vars, r.req.Env)
			if err != nil {
				return resolvedNode{}, err
			}
		}
	}

	return resolvedNode{stack: stack, version: v, actionList: actions}, nil
}

func (r *resolver) frameIndex(product string) int {
	for i, f := range r.frames {
		if f.Product == product {
			return i
		}
	}
	return -1
}

func satisfiesExpr(v version.Version, expr string) bool {
	if isBareVersion(expr) {
		return version.Equal(v, version.Version(strings.TrimSpace(expr)))
	}
	e, err := version.ParseExpr(expr)
	if err != nil {
		return false
	}
	return e.Satisfies(v)
}

// splitSetupArg splits one setupRequired/setupOptional argument into
// its product name, trailing version expression, and an explicit -t
// tag override, per spec §4.2's argument shape: "<product>
// [version-expr] [-f <flavor>] [-t <tag>] [-v] [-r <root>]".
// -f/-r are recognized and skipped: this resolver always uses the
// parent request's active flavor and database-backed lookup, never a
// child-specified flavor override or local root.
func splitSetupArg(arg string) (product, expr, tag string) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return "", "", ""
	}
	product = fields[0]

	var exprParts []string
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "-t":
			if i+1 < len(fields) {
				i++
				tag = fields[i]
			}
		case "-f", "-r":
			if i+1 < len(fields) {
				i++
			}
		case "-v", "-j", "-D", "-i":
			// Flags with no argument; not modeled by this resolver.
		default:
			exprParts = append(exprParts, fields[i])
		}
	}
	return product, strings.Join(exprParts, " "), tag
}

// fail wraps err with the frame stack active right now, at the point
// the error actually originated. An error that has already passed
// through fail once (e.g. bubbling up from a required child) is
// returned unchanged so its original, deeper frame chain survives.
func (r *resolver) fail(err error) error {
	if _, ok := err.(*FrameError); ok {
		return err
	}
	return &FrameError{Err: err, Frames: append([]Frame(nil), r.frames...)}
}
