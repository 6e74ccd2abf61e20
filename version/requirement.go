package version

import (
	"fmt"
	"strings"
)

// Comparison operators used by both version expressions (§3) and
// table-file conditional expressions (§4.2).
const (
	EqualTo        = "=="
	NotEqual       = "!="
	LessThan       = "<"
	LessOrEqual    = "<="
	Greater        = ">"
	GreaterOrEqual = ">="
)

var comparisonOps = []string{
	LessOrEqual, LessThan, EqualTo, NotEqual, GreaterOrEqual, Greater,
}

// Primary is one relation of a version expression: an operator against
// a version. A bare version string (no operator) implies EqualTo.
type Primary struct {
	Op      string
	Version Version
}

func (p Primary) Satisfies(v Version) bool {
	c := Compare(v, p.Version)
	switch p.Op {
	case LessOrEqual:
		return c <= 0
	case LessThan:
		return c < 0
	case NotEqual:
		return c != 0
	case EqualTo:
		return c == 0
	case GreaterOrEqual:
		return c >= 0
	case Greater:
		return c > 0
	default:
		panic(fmt.Sprintf("unknown version comparison operator: %q", p.Op))
	}
}

func (p Primary) String() string {
	return p.Op + string(p.Version)
}

// Expr is a version expression: a "||"-separated list of primary
// relations (spec §3). An empty Expr matches every version, which is
// how ParseExpr represents an absent version-expr in a setup request.
type Expr []Primary

// Satisfies reports whether v matches any primary in the expression.
func (e Expr) Satisfies(v Version) bool {
	if len(e) == 0 {
		return true
	}
	for _, p := range e {
		if p.Satisfies(v) {
			return true
		}
	}
	return false
}

func (e Expr) String() string {
	parts := make([]string, len(e))
	for i, p := range e {
		parts[i] = p.String()
	}
	return strings.Join(parts, " || ")
}

// ParseExpr parses a version expression as accepted in a setup request
// or in a setupRequired/setupOptional argument: zero or more
// "||"-separated primaries, each an optional comparison operator
// followed by a version. A bare version implies EqualTo.
func ParseExpr(input string) (Expr, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	var primaries []Primary
	for _, piece := range strings.Split(input, "||") {
		p := &parser{s: strings.TrimSpace(piece)}
		primary, err := parsePrimary(p)
		if err != nil {
			return nil, fmt.Errorf("parsing version expression %q: %w", input, err)
		}
		p.skipWhitespace()
		if p.peekRune() != eof {
			return nil, fmt.Errorf("parsing version expression %q: unexpected trailing input %q", input, p.s[p.pos:])
		}
		primaries = append(primaries, primary)
	}

	return primaries, nil
}

func parsePrimary(p *parser) (Primary, error) {
	p.skipWhitespace()
	op := p.expect(comparisonOps...)
	if op == "" {
		op = EqualTo
	}

	p.skipWhitespace()
	value := p.expectFunc(isVersionRune)
	if value == "" {
		return Primary{}, fmt.Errorf("expected a version after %q", op)
	}

	return Primary{Op: op, Version: Version(value)}, nil
}

func isVersionRune(r rune, _ int) bool {
	switch r {
	case ' ', '\t', '|', '(', ')', '&':
		return false
	default:
		return true
	}
}
