package resolve

import (
	"fmt"
	"strings"

	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/version"
)

// NoMatchingVersionError is NO_MATCHING_VERSION (spec §7): a version
// expression had no declared version satisfying it anywhere on the
// stack path.
type NoMatchingVersionError struct {
	Product string
	Expr    string
}

func (e *NoMatchingVersionError) Error() string {
	if e.Expr == "" {
		return fmt.Sprintf("no matching version for %s", e.Product)
	}
	return fmt.Sprintf("no version of %s matches %q", e.Product, e.Expr)
}
func (e *NoMatchingVersionError) ExitCode() int { return errs.ExitResolution }

// InconsistentVersionsError is INCONSISTENT_VERSIONS (spec §7): two
// setupRequired edges asked for incompatible versions of the same
// product.
type InconsistentVersionsError struct {
	Product         string
	SelectedVersion version.Version
	RequestedExpr   string
}

func (e *InconsistentVersionsError) Error() string {
	return fmt.Sprintf("%s already set up at %s, which does not satisfy %q",
		e.Product, e.SelectedVersion, e.RequestedExpr)
}
func (e *InconsistentVersionsError) ExitCode() int { return errs.ExitInconsistent }

// CycleError is CYCLE (spec §7): a product re-enters its own
// dependency chain with a requirement its already-selected version on
// the frame stack cannot satisfy.
type CycleError struct {
	Chain []string // product names, root first.
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Chain, " -> "))
}
func (e *CycleError) ExitCode() int { return errs.ExitInconsistent }

// FrameError decorates an error with the chain of (product, version)
// frames active when it occurred, for the "FATAL ... chain of product
// frames" diagnostic required by spec §7.
type FrameError struct {
	Err    error
	Frames []Frame
}

func (e *FrameError) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Err.Error())
	for i := len(e.Frames) - 1; i >= 0; i-- {
		fmt.Fprintf(b, "\n\trequired by %s@%s", e.Frames[i].Product, e.Frames[i].Version)
	}
	return b.String()
}

func (e *FrameError) Unwrap() error { return e.Err }

func (e *FrameError) ExitCode() int { return errs.CodeOf(e.Err) }

var (
	_ errs.Coded = (*NoMatchingVersionError)(nil)
	_ errs.Coded = (*InconsistentVersionsError)(nil)
	_ errs.Coded = (*CycleError)(nil)
	_ errs.Coded = (*FrameError)(nil)
)
