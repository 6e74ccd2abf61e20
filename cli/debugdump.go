package cli

import (
	"fmt"

	"github.com/eups-go/eups/resolve"
	"gopkg.in/yaml.v2"
)

// debugPlan is the YAML-serializable shape of a resolve.Plan dumped
// for diagnosability at high verbosity, grounded on ocibuild's
// "unmarshal/marshal internal structures as YAML for humans" use of
// gopkg.in/yaml.v2 in its platform-config handling.
type debugPlan struct {
	Root       string   `yaml:"root"`
	Stacks     []string `yaml:"stacks"`
	Selections []string `yaml:"selections"`
	Actions    []string `yaml:"actions"`
	Warnings   []string `yaml:"warnings,omitempty"`
}

// dumpDebug writes a YAML dump of the resolved plan and stack path to
// stderr when EUPS_DEBUG or repeated -v requests verbosity level 2 or
// higher (spec §6's EUPS_DEBUG verbosity floor).
func dumpDebug(ctx *Context, opts *CommonOptions, plan *resolve.Plan) {
	level := opts.Verbose
	if envLevel := DebugLevel(ctx.Env); envLevel > level {
		level = envLevel
	}
	if level < 2 {
		return
	}

	d := debugPlan{Root: fmt.Sprintf("%s %s", plan.Root.Product, plan.Root.Version)}
	seenStack := make(map[string]bool)
	for _, s := range plan.Selections {
		if !seenStack[s.Stack.Root] {
			seenStack[s.Stack.Root] = true
			d.Stacks = append(d.Stacks, s.Stack.Root)
		}
		d.Selections = append(d.Selections, fmt.Sprintf("%s %s (tag=%s, stack=%s)", s.Product, s.Version, s.Tag, s.Stack.Root))
	}
	for _, a := range plan.Actions {
		d.Actions = append(d.Actions, fmt.Sprintf("%s@%s: %s(%v)", a.Product, a.Version, a.Name, a.Args))
	}
	d.Warnings = plan.Warnings

	out, err := yaml.Marshal(d)
	if err != nil {
		fmt.Fprintln(ctx.Stderr, "debug: failed to marshal plan:", err)
		return
	}
	fmt.Fprintln(ctx.Stderr, "--- resolved plan ---")
	ctx.Stderr.Write(out)
}
