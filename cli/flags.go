package cli

import "github.com/spf13/pflag"

// CommonOptions holds the option set shared by every verb (spec §6's
// "common options"), parsed the same GNU-getopt way the teacher parses
// `rope add`'s flags with `pflag.NewFlagSet(..., pflag.ContinueOnError)`.
type CommonOptions struct {
	Flavor           string // -f
	Stack            string // -Z
	StackFilter      string // -z
	Root             string // -r
	Tag              string // -t
	TableFile        string // -m
	Verbose          int    // -v, repeatable
	Quiet            bool   // -q
	JustThis         bool   // -j
	OnlyDependencies bool   // -D
	Force            bool   // -F
	IgnoreCurrent    bool   // -i
}

// newCommonFlagSet builds a pflag.FlagSet pre-wired with spec §6's
// shared options, bound into opts. Repeated -v is counted into
// opts.Verbose with pflag's CountVarP.
func newCommonFlagSet(name string) (*pflag.FlagSet, *CommonOptions) {
	opts := &CommonOptions{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&opts.Flavor, "flavor", "f", "", "override active flavor")
	fs.StringVarP(&opts.Stack, "stack", "Z", "", "single stack path")
	fs.StringVarP(&opts.StackFilter, "filter", "z", "", "filter stack path by substring")
	fs.StringVarP(&opts.Root, "root", "r", "", "local root (no database entry)")
	fs.StringVarP(&opts.Tag, "tag", "t", "", "use named tag instead of current")
	fs.StringVarP(&opts.TableFile, "table", "m", "", "explicit table file, or 'none'")
	fs.CountVarP(&opts.Verbose, "verbose", "v", "increase verbosity")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress non-fatal diagnostics")
	fs.BoolVarP(&opts.JustThis, "just", "j", false, "just this product, no dependencies")
	fs.BoolVarP(&opts.OnlyDependencies, "dependencies-only", "D", false, "only dependencies, not this product")
	fs.BoolVarP(&opts.Force, "force", "F", false, "force (override existing session state)")
	fs.BoolVarP(&opts.IgnoreCurrent, "ignore-versions", "i", false, "ignore explicit versions in child table files")
	return fs, opts
}

// effectiveVerbosity folds -q into a negative verbosity floor so
// downstream diagnostic filtering (spec §6's "Stderr ... filtered by
// -v/-q") is a single integer comparison.
func (o CommonOptions) effectiveVerbosity() int {
	if o.Quiet {
		return -1
	}
	return o.Verbose
}
