package resolve

import (
	"strings"

	"github.com/eups-go/eups/db"
	"github.com/eups-go/eups/version"
)

// isBareVersion reports whether expr contains none of the characters
// that only appear in a relational expression, never in a bare version
// string (spec §4.1, §3: VVV[-EEE][+FFF] never contains these).
func isBareVersion(expr string) bool {
	return !strings.ContainsAny(expr, "=<>|")
}

// selectRootVersion implements spec §4.4 step 1: resolve a root
// (product, versionExpr|tag) request to a concrete stack and version.
func selectRootVersion(req Request) (db.Stack, version.Version, error) {
	switch {
	case req.VersionExpr == "":
		s, v, err := db.ResolveTag(req.Stacks, req.Home, req.Product, req.tag(), req.Flavor)
		if err != nil {
			return db.Stack{}, "", err
		}
		return s, v, nil

	case isBareVersion(req.VersionExpr):
		return selectExactVersion(req)

	default:
		return selectExpressionVersion(req)
	}
}

// selectExactVersion looks up the literal version string in stacks in
// order, returning the first stack where it is declared for the
// active flavor.
func selectExactVersion(req Request) (db.Stack, version.Version, error) {
	v := version.Version(strings.TrimSpace(req.VersionExpr))

	var lastErr error
	for _, s := range req.Stacks {
		if _, _, err := s.FindVersionFile(req.Product, v, req.Flavor); err == nil {
			return s, v, nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = &db.NoSuchProductError{Product: req.Product}
	}
	return db.Stack{}, "", lastErr
}

// selectExpressionVersion enumerates every declared version of the
// product across all stacks, keeps those satisfying the expression,
// and picks the highest; ties break by earlier stack order, then by
// lexicographically lower version string, per spec §4.4 step 1.
func selectExpressionVersion(req Request) (db.Stack, version.Version, error) {
	expr, err := version.ParseExpr(req.VersionExpr)
	if err != nil {
		return db.Stack{}, "", err
	}

	all, err := db.ListProducts(req.Stacks, req.Product)
	if err != nil {
		return db.Stack{}, "", err
	}

	stackIndex := make(map[string]int, len(req.Stacks))
	for i, s := range req.Stacks {
		stackIndex[s.Root] = i
	}

	var best *db.ProductVersion
	for i := range all {
		pv := all[i]
		if !expr.Satisfies(pv.Version) {
			continue
		}
		if _, _, err := pv.Stack.FindVersionFile(pv.Product, pv.Version, req.Flavor); err != nil {
			continue
		}
		if best == nil || better(pv, *best, stackIndex) {
			pv := pv
			best = &pv
		}
	}

	if best == nil {
		return db.Stack{}, "", &NoMatchingVersionError{Product: req.Product, Expr: req.VersionExpr}
	}
	return best.Stack, best.Version, nil
}

// better reports whether candidate should replace current as the best
// match: higher version wins; a tie in Compare breaks by earlier
// stack order, then by the lexicographically lower version string.
func better(candidate, current db.ProductVersion, stackIndex map[string]int) bool {
	if c := version.Compare(candidate.Version, current.Version); c != 0 {
		return c > 0
	}
	ci, cj := stackIndex[candidate.Stack.Root], stackIndex[current.Stack.Root]
	if ci != cj {
		return ci < cj
	}
	return string(candidate.Version) < string(current.Version)
}
