package envmut

import "sort"

// MutationKind distinguishes the four shapes of change Diff can
// produce (spec §4.5's "Serialization").
type MutationKind int

const (
	SetVar MutationKind = iota
	UnsetVar
	SetAlias
	UnsetAlias
)

// Mutation is one shell-neutral record of a change between two Env
// snapshots. C7 is the only place that knows how to render a Mutation
// in a particular shell's syntax (spec §9's redesign note).
type Mutation struct {
	Kind  MutationKind
	Name  string
	Value string // unused for UnsetVar/UnsetAlias.
}

// Diff compares before and after and returns the ordered, deterministic
// set of mutations that would turn before into after: variables and
// aliases that were added or changed are SetVar/SetAlias, ones that
// disappeared are UnsetVar/UnsetAlias. Unchanged entries are omitted.
// Results are sorted by kind then name so that two runs over the same
// inputs always serialize identically.
func Diff(before, after *Env) []Mutation {
	var out []Mutation

	for _, name := range sortedKeys(after.Vars) {
		v := after.Vars[name]
		if prev, had := before.Vars[name]; !had || prev != v {
			out = append(out, Mutation{Kind: SetVar, Name: name, Value: v})
		}
	}
	for _, name := range sortedKeys(before.Vars) {
		if _, stillThere := after.Vars[name]; !stillThere {
			out = append(out, Mutation{Kind: UnsetVar, Name: name})
		}
	}

	for _, name := range sortedKeys(after.Aliases) {
		v := after.Aliases[name]
		if prev, had := before.Aliases[name]; !had || prev != v {
			out = append(out, Mutation{Kind: SetAlias, Name: name, Value: v})
		}
	}
	for _, name := range sortedKeys(before.Aliases) {
		if _, stillThere := after.Aliases[name]; !stillThere {
			out = append(out, Mutation{Kind: UnsetAlias, Name: name})
		}
	}

	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
