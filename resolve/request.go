// Package resolve implements the dependency resolver (C4): selecting a
// root product's version, reading its table file via the table
// package, and recursively walking setupRequired/setupOptional edges
// into a single consistent, ordered ActionList (spec §4.4).
package resolve

import (
	"github.com/eups-go/eups/db"
)

// Request describes one root setup/unsetup request (spec §4.4's
// "Input").
type Request struct {
	Product string

	// VersionExpr is a bare version, a relational expression, or empty
	// (resolve Tag instead).
	VersionExpr string
	Tag         string // defaults to "current" when VersionExpr == "".

	Flavor string
	Stacks []db.Stack
	Home   string // for user-tag resolution; "" disables it.

	// BuildType feeds the table file's BUILD substitution variable.
	BuildType string

	// Env is the ambient process environment, consulted as a fallback
	// during ${VAR}/$?{VAR} substitution and by if-conditions.
	Env map[string]string

	// JustThis (-j) suppresses recursion into setupRequired/Optional
	// children entirely: only the root's own actions are emitted.
	JustThis bool

	// OnlyDependencies (-D) suppresses the root's own actions, keeping
	// only the actions contributed by its dependency subtree.
	OnlyDependencies bool

	// IgnoreCurrent (-i) ignores explicit version expressions found in
	// child setupRequired/setupOptional arguments, resolving every
	// child via its current tag instead.
	IgnoreCurrent bool
}

func (r Request) tag() string {
	if r.Tag == "" {
		return "current"
	}
	return r.Tag
}
