package envmut

import (
	"fmt"

	"github.com/eups-go/eups/table"
)

const defaultDelim = ":"

// undoEntry records enough to reverse exactly one applied action
// within this engine instance, independent of the action's own
// inverse semantics: the literal before/after of the single key it
// touched.
type undoEntry struct {
	isAlias  bool
	key      string
	hadValue bool
	prior    string
}

// Engine applies a resolved ActionList against a live Env, keeping a
// same-session undo log so a later setup of the same product (or an
// explicit force override) can roll back exactly what this engine
// itself did, without needing the cross-process approximation that
// Invert uses (spec §4.5's "force mode ... overriding the rollback
// stack").
type Engine struct {
	Env     *Env
	Force   bool
	history []undoEntry
}

// NewEngine returns an Engine operating on env in place.
func NewEngine(env *Env, force bool) *Engine {
	return &Engine{Env: env, Force: force}
}

// Apply executes actions' forward semantics in order, recording undo
// history as it goes. Unknown action names are a programming error at
// this layer (the table package already rejects them at parse time);
// deprecated actions (proddir/setupenv) are no-ops here, absorbed
// instead by the session package's SETUP_<P>/<PRODUCT>_DIR handling.
func (e *Engine) Apply(actions []table.ResolvedAction) error {
	for _, a := range actions {
		if err := e.applyOne(a); err != nil {
			return err
		}
	}
	return nil
}

// Rollback reverses every action applied by this engine since it was
// created (or since the last Rollback), in LIFO order.
func (e *Engine) Rollback() {
	for i := len(e.history) - 1; i >= 0; i-- {
		h := e.history[i]
		if h.isAlias {
			if h.hadValue {
				e.Env.Aliases[h.key] = h.prior
			} else {
				delete(e.Env.Aliases, h.key)
			}
			continue
		}
		if h.hadValue {
			e.Env.set(h.key, h.prior)
		} else {
			e.Env.unset(h.key)
		}
	}
	e.history = nil
}

func (e *Engine) recordVar(key string) {
	prior, had := e.Env.get(key)
	e.history = append(e.history, undoEntry{key: key, hadValue: had, prior: prior})
}

func (e *Engine) recordAlias(name string) {
	prior, had := e.Env.Aliases[name]
	e.history = append(e.history, undoEntry{isAlias: true, key: name, hadValue: had, prior: prior})
}

func (e *Engine) applyOne(a table.ResolvedAction) error {
	if a.Deprecated {
		return nil
	}

	switch a.Name {
	case table.EnvSet:
		v, err := arg(a, 0)
		if err != nil {
			return err
		}
		x, err := arg(a, 1)
		if err != nil {
			return err
		}
		e.recordVar(v)
		e.Env.set(v, x)

	case table.EnvUnset:
		v, err := arg(a, 0)
		if err != nil {
			return err
		}
		e.recordVar(v)
		e.Env.unset(v)

	case table.EnvPrepend, table.PathPrepend:
		v, x, d, err := pathArgs(a)
		if err != nil {
			return err
		}
		cur, _ := e.Env.get(v)
		e.recordVar(v)
		e.Env.set(v, prepend(cur, x, d))

	case table.EnvAppend, table.PathAppend:
		v, x, d, err := pathArgs(a)
		if err != nil {
			return err
		}
		cur, _ := e.Env.get(v)
		e.recordVar(v)
		e.Env.set(v, appendValue(cur, x, d))

	case table.EnvRemove, table.PathRemove:
		v, x, d, err := pathArgs(a)
		if err != nil {
			return err
		}
		cur, _ := e.Env.get(v)
		e.recordVar(v)
		e.Env.set(v, removeAll(cur, x, d))

	case table.AddAlias:
		name, err := arg(a, 0)
		if err != nil {
			return err
		}
		value, err := arg(a, 1)
		if err != nil {
			return err
		}
		e.recordAlias(name)
		e.Env.Aliases[name] = value

	case unAlias:
		name, err := arg(a, 0)
		if err != nil {
			return err
		}
		e.recordAlias(name)
		delete(e.Env.Aliases, name)

	case table.SetupRequired, table.SetupOptional:
		// Recursion into child products is the resolver's job (§4.4);
		// by the time an ActionList reaches this engine, dependency
		// actions have already been flattened in and ordered.

	default:
		return fmt.Errorf("envmut: unhandled action %q", a.Name)
	}
	return nil
}

func arg(a table.ResolvedAction, i int) (string, error) {
	if i >= len(a.Args) {
		return "", fmt.Errorf("envmut: %s: expected at least %d argument(s)", a.Name, i+1)
	}
	return a.Args[i], nil
}

func pathArgs(a table.ResolvedAction) (v, x, d string, err error) {
	v, err = arg(a, 0)
	if err != nil {
		return
	}
	x, err = arg(a, 1)
	if err != nil {
		return
	}
	d = defaultDelim
	if len(a.Args) > 2 && a.Args[2] != "" {
		d = a.Args[2]
	}
	return
}
