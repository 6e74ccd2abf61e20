package table

import (
	"fmt"
	"regexp"
	"strings"
)

// ErrNoMatchingFlavor is returned when no flavor block in the table
// file applies to the active flavor (spec §4.2/§7: NO_MATCHING_FLAVOR).
var ErrNoMatchingFlavor = fmt.Errorf("no matching flavor block")

// action kinds recognized by the evaluator (spec §4.2).
const (
	EnvSet        = "envSet"
	EnvUnset      = "envUnset"
	EnvPrepend    = "envPrepend"
	EnvAppend     = "envAppend"
	EnvRemove     = "envRemove"
	PathPrepend   = "pathPrepend"
	PathAppend    = "pathAppend"
	PathRemove    = "pathRemove"
	AddAlias      = "addAlias"
	SetupRequired = "setupRequired"
	SetupOptional = "setupOptional"
	ProdDir       = "proddir"
	SetupEnv      = "setupenv"
)

var knownActions = map[string]bool{
	EnvSet: true, EnvUnset: true, EnvPrepend: true, EnvAppend: true, EnvRemove: true,
	PathPrepend: true, PathAppend: true, PathRemove: true,
	AddAlias: true, SetupRequired: true, SetupOptional: true,
	ProdDir: true, SetupEnv: true,
}

// ResolvedAction is one evaluated, fully-substituted action ready for
// the resolver (setupRequired/setupOptional) or the environment-
// mutation engine (everything else) to consume.
type ResolvedAction struct {
	Name       string
	Args       []string
	Line       int
	Deprecated bool // proddir/setupenv: recognized but absorbed into envSet/SETUP_<P> semantics.
}

// ActionList is the ordered, typed output of table-file evaluation.
type ActionList []ResolvedAction

type tableEnv struct {
	vars map[string]string
	env  map[string]string
}

func (e tableEnv) Get(name string) (string, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	v, ok := e.env[name]
	return v, ok
}

var varRefRe = regexp.MustCompile(`\$\??\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Evaluate walks the file for the given active flavor, evaluates
// if-conditions against build/flavor, substitutes ${VAR} and $?{VAR}
// tokens in action arguments, and emits the resulting ActionList in
// source order (spec §4.2 "Output").
//
// vars is the substitution bag (PRODUCT_NAME, PRODUCT_DIR, ...) plus
// FLAVOR/BUILD for conditional evaluation. env is the inherited
// process environment, consulted only when a name is absent from
// vars. No legacy UPS_PROD_* synonyms are added here or by the
// resolver; such a name resolves only if vars or env carries it.
func Evaluate(f *File, flavor string, vars map[string]string, env map[string]string) (ActionList, error) {
	var block *FlavorBlock
	for i := range f.Blocks {
		if f.Blocks[i].Applies(flavor) {
			block = &f.Blocks[i]
			break
		}
	}
	if block == nil {
		return nil, ErrNoMatchingFlavor
	}

	tenv := tableEnv{vars: vars, env: env}
	var out ActionList
	if err := evalStmts(block.Body, tenv, vars, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func evalStmts(stmts []Stmt, tenv tableEnv, vars map[string]string, out *ActionList) error {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case Action:
			resolved, ok, err := resolveAction(s, vars, tenv.env)
			if err != nil {
				return err
			}
			if ok {
				*out = append(*out, resolved)
			}
		case If:
			ok, err := s.Cond.Evaluate(tenv)
			if err != nil {
				return fmt.Errorf("table file line %d: evaluating if-condition: %w", s.Line, err)
			}
			if ok {
				if err := evalStmts(s.Then, tenv, vars, out); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("table file: unknown statement type %T", stmt)
		}
	}
	return nil
}

func resolveAction(a Action, vars, env map[string]string) (ResolvedAction, bool, error) {
	if !knownActions[a.Name] {
		return ResolvedAction{}, false, &ParseError{Line: a.Line, Msg: fmt.Sprintf("unknown action %q", a.Name)}
	}

	args := make([]string, len(a.Args))
	for i, raw := range a.Args {
		expanded, ok, err := substitute(raw, vars, env)
		if err != nil {
			return ResolvedAction{}, false, fmt.Errorf("table file line %d: %w", a.Line, err)
		}
		if !ok {
			// A $?{VAR} guard referenced an undefined variable: the
			// whole action is skipped, not partially expanded.
			return ResolvedAction{}, false, nil
		}
		args[i] = expanded
	}

	name, deprecated := a.Name, false
	if name == ProdDir || name == SetupEnv {
		deprecated = true
	}

	return ResolvedAction{Name: name, Args: args, Line: a.Line, Deprecated: deprecated}, true, nil
}

// substitute expands every ${VAR} and $?{VAR} token in s against vars
// (checked first) then env. A $?{VAR} token for an undefined variable
// causes ok=false (caller must discard the whole action, not just the
// token); an undefined ${VAR} expands to the empty string.
func substitute(s string, vars, env map[string]string) (result string, ok bool, err error) {
	var missing bool
	out := varRefRe.ReplaceAllStringFunc(s, func(tok string) string {
		optional := strings.HasPrefix(tok, "$?{")
		name := varRefRe.FindStringSubmatch(tok)[1]

		if v, found := vars[name]; found {
			return v
		}
		if v, found := env[name]; found {
			return v
		}
		if optional {
			missing = true
		}
		return ""
	})
	if missing {
		return "", false, nil
	}
	return out, true, nil
}
