// Package cli is the CLI front (C7, spec §4's component table): argv
// parsing and verb dispatch, built the same way the teacher dispatches
// `rope`'s verbs from a flat switch in `run`, translating a resolved
// plan into the shell-neutral envmut.Mutation stream and then into one
// target shell's eval syntax — the only place in the repo that knows
// sh/csh/zsh/fish syntax (spec §9's redesign note).
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eups-go/eups/envmut"
)

// Shell identifies the output syntax requested via EUPS_SHELL (spec
// §6).
type Shell int

const (
	ShSh Shell = iota
	ShCsh
	ShZsh
	ShFish
)

// ParseShell maps an EUPS_SHELL value to a Shell, defaulting to ShSh
// for anything unrecognized (the conservative, widest-compatible
// choice).
func ParseShell(s string) Shell {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csh", "tcsh":
		return ShCsh
	case "zsh":
		return ShZsh
	case "fish":
		return ShFish
	default:
		return ShSh
	}
}

// quoteSh single-quotes value for sh/zsh/bash, escaping embedded single
// quotes the POSIX way ('\'').
func quoteSh(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// quoteCsh quotes value for csh/tcsh, which has no escape for an
// embedded single quote inside single quotes; double quotes are used
// instead when the value itself contains one.
func quoteCsh(value string) string {
	if strings.Contains(value, "'") {
		return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	return "'" + value + "'"
}

// PrintMutations renders muts as a stream of shell-evalable commands in
// the syntax of the given shell sh (spec §6's "Stdout ... a stream of
// shell-evalable commands"). The caller's shell wrapper is expected to
// `eval` this output verbatim.
func PrintMutations(w io.Writer, sh Shell, muts []envmut.Mutation) {
	for _, m := range muts {
		printMutation(w, sh, m)
	}
}

func printMutation(w io.Writer, sh Shell, m envmut.Mutation) {
	switch sh {
	case ShCsh:
		printMutationCsh(w, m)
	case ShFish:
		printMutationFish(w, m)
	default: // ShSh, ShZsh: bash-compatible Bourne syntax.
		printMutationSh(w, m)
	}
}

func printMutationSh(w io.Writer, m envmut.Mutation) {
	switch m.Kind {
	case envmut.SetVar:
		fmt.Fprintf(w, "export %s=%s;\n", m.Name, quoteSh(m.Value))
	case envmut.UnsetVar:
		fmt.Fprintf(w, "unset %s;\n", m.Name)
	case envmut.SetAlias:
		fmt.Fprintf(w, "alias %s=%s;\n", m.Name, quoteSh(m.Value))
	case envmut.UnsetAlias:
		fmt.Fprintf(w, "unalias %s >/dev/null 2>&1;\n", m.Name)
	}
}

func printMutationCsh(w io.Writer, m envmut.Mutation) {
	switch m.Kind {
	case envmut.SetVar:
		fmt.Fprintf(w, "setenv %s %s;\n", m.Name, quoteCsh(m.Value))
	case envmut.UnsetVar:
		fmt.Fprintf(w, "unsetenv %s;\n", m.Name)
	case envmut.SetAlias:
		fmt.Fprintf(w, "alias %s %s;\n", m.Name, quoteCsh(m.Value))
	case envmut.UnsetAlias:
		fmt.Fprintf(w, "unalias %s;\n", m.Name)
	}
}

func printMutationFish(w io.Writer, m envmut.Mutation) {
	switch m.Kind {
	case envmut.SetVar:
		fmt.Fprintf(w, "set -gx %s %s;\n", m.Name, quoteSh(m.Value))
	case envmut.UnsetVar:
		fmt.Fprintf(w, "set -e %s;\n", m.Name)
	case envmut.SetAlias:
		fmt.Fprintf(w, "alias %s %s;\n", m.Name, quoteSh(m.Value))
	case envmut.UnsetAlias:
		fmt.Fprintf(w, "functions -e %s >/dev/null 2>&1;\n", m.Name)
	}
}
