package envmut

import "github.com/eups-go/eups/table"

// Invert computes the structural, history-free inverse of one
// resolved action, per the Forward/Inverse table in spec §4.5. Unlike
// Engine.Rollback (which replays this process's own undo log),
// Invert lets unsetup reconstruct a best-effort reversal in a brand
// new process that never saw the original setup's starting snapshot —
// the common case, since setup and unsetup are almost always two
// separate shell-eval invocations.
//
// The second return value is false when an action has no meaningful
// structural inverse (envUnset: the prior value was never recorded
// anywhere this process can see) or inverts to nothing (setupRequired/
// setupOptional, whose inversion is the resolver's job of recursing
// into the dependency and inverting its own actions, not this
// action itself).
func Invert(a table.ResolvedAction) (table.ResolvedAction, bool) {
	switch a.Name {
	case table.EnvSet:
		if len(a.Args) < 1 {
			return table.ResolvedAction{}, false
		}
		return table.ResolvedAction{Name: table.EnvUnset, Args: a.Args[:1], Line: a.Line}, true

	case table.EnvUnset:
		// No history to restore from in a fresh process; best-effort
		// means doing nothing rather than guessing a value.
		return table.ResolvedAction{}, false

	case table.EnvPrepend:
		return invertPathAction(a, table.EnvRemove)
	case table.EnvAppend:
		return invertPathAction(a, table.EnvRemove)
	case table.EnvRemove:
		return invertPathAction(a, table.EnvAppend)

	case table.PathPrepend:
		return invertPathAction(a, table.PathRemove)
	case table.PathAppend:
		return invertPathAction(a, table.PathRemove)
	case table.PathRemove:
		return invertPathAction(a, table.PathAppend)

	case table.AddAlias:
		if len(a.Args) < 1 {
			return table.ResolvedAction{}, false
		}
		return table.ResolvedAction{Name: unAlias, Args: a.Args[:1], Line: a.Line}, true

	case table.SetupRequired, table.SetupOptional:
		return table.ResolvedAction{}, false

	default:
		return table.ResolvedAction{}, false
	}
}

// unAlias is a synthetic action name, never produced by the table
// parser (addAlias is the only alias verb in spec §4.2's grammar), used
// internally to carry "remove this alias" through the same
// ResolvedAction/Engine plumbing as every other action.
const unAlias = "__unAlias"

func invertPathAction(a table.ResolvedAction, inverseName string) (table.ResolvedAction, bool) {
	if len(a.Args) < 2 {
		return table.ResolvedAction{}, false
	}
	args := append([]string(nil), a.Args...)
	return table.ResolvedAction{Name: inverseName, Args: args, Line: a.Line}, true
}

// InvertList inverts a forward ActionList in its entirety, reversing
// order so that a dependent's actions are undone before its
// dependency's (the mirror image of forward order, spec §4.4's
// "Unsetup resolution"). Actions with no structural inverse are
// dropped silently; Invert itself documents why each case is safe to
// skip.
func InvertList(actions []table.ResolvedAction) []table.ResolvedAction {
	var out []table.ResolvedAction
	for i := len(actions) - 1; i >= 0; i-- {
		if inv, ok := Invert(actions[i]); ok {
			out = append(out, inv)
		}
	}
	return out
}
