package cli

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/eups-go/eups/db"
)

// EnvironToMap turns the os.Environ()/exec.Cmd.Env-style "NAME=value"
// slice into a map, the form every package below this one operates on
// (spec §4.5's Env is a map, never the process's own environment
// directly — see spec §9's redesign note).
func EnvironToMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	return m
}

// StackRoots splits EUPS_PATH (colon-separated, ordered, earlier
// shadows later) into a list of stack roots, falling back to the
// single-stack EUPS_DIR when EUPS_PATH is unset (spec §6).
func StackRoots(env map[string]string) []string {
	if path := env["EUPS_PATH"]; path != "" {
		var roots []string
		for _, r := range strings.Split(path, ":") {
			if r != "" {
				roots = append(roots, r)
			}
		}
		return roots
	}
	if dir := env["EUPS_DIR"]; dir != "" {
		return []string{dir}
	}
	return nil
}

// Stacks resolves StackRoots filtered by a -Z single-stack override or
// a -z substring filter (spec §6's `-Z <stack>` / `-z <token>`), in
// that precedence order.
func Stacks(env map[string]string, onlyStack, filterToken string) []db.Stack {
	if onlyStack != "" {
		return []db.Stack{{Root: onlyStack}}
	}

	roots := StackRoots(env)
	var out []db.Stack
	for _, r := range roots {
		if filterToken != "" && !strings.Contains(r, filterToken) {
			continue
		}
		out = append(out, db.Stack{Root: r})
	}
	return out
}

// ActiveFlavor resolves the active flavor: an explicit -f override,
// then EUPS_FLAVOR, then a built-in platform probe (spec §6).
func ActiveFlavor(explicit string, env map[string]string) string {
	if explicit != "" {
		return explicit
	}
	if f := env["EUPS_FLAVOR"]; f != "" {
		return f
	}
	return probeFlavor()
}

// probeFlavor derives a default flavor from the running platform, in
// the family-then-arch shape EUPS flavors conventionally take
// (Linux64, Darwin64, ...).
func probeFlavor() string {
	os := capitalize(runtime.GOOS)
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		return os + "64"
	}
	return os
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DebugLevel parses EUPS_DEBUG as a verbosity floor (spec §6); an
// unset or unparsable value floors at 0.
func DebugLevel(env map[string]string) int {
	n, err := strconv.Atoi(env["EUPS_DEBUG"])
	if err != nil {
		return 0
	}
	return n
}

// Home returns the user's home directory for user-tag resolution
// (spec §3/§4.3), or "" to disable it.
func Home(env map[string]string) string {
	return env["HOME"]
}
