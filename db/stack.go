package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/version"
)

// Stack is one product stack: a directory tree rooted at Root holding
// ups_db/<product>/{<version>.version,<tag>.chain} (spec §3, §4.3).
// Stacks are searched in the order given by the caller (EUPS_PATH
// order), first match wins.
type Stack struct {
	Root string
}

func (s Stack) upsDB() string {
	return filepath.Join(s.Root, "ups_db")
}

func (s Stack) productDir(product string) string {
	return filepath.Join(s.upsDB(), product)
}

func (s Stack) versionFilePath(product string, v version.Version) string {
	return filepath.Join(s.productDir(product), string(v)+".version")
}

func (s Stack) chainFilePath(product, tag string) string {
	return filepath.Join(s.productDir(product), tag+".chain")
}

// stackID derives a filesystem-safe, deterministic identifier for a
// stack's user-tag directory (spec §4.3's <stack-id> in
// <home>/.eups/ups_db/<stack-id>/<product>/<tag>.chain). Spec.md does
// not pin down the derivation; this implementation uses the stack's
// absolute root with path separators and ':' folded to underscores,
// which is stable across runs. Distinct roots can collide: "/a_b" and
// "/a/b" both map to "a_b".
func stackID(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	abs = strings.TrimPrefix(abs, string(filepath.Separator))
	return strings.NewReplacer(string(filepath.Separator), "_", ":", "_").Replace(abs)
}

func userChainFilePath(home string, s Stack, product, tag string) string {
	return filepath.Join(home, ".eups", "ups_db", stackID(s.Root), product, tag+".chain")
}

// Product-database errors, distinct from the table package's parse
// errors: these are about what exists in the database, not how a
// table file reads.
type NoSuchProductError struct{ Product string }

func (e *NoSuchProductError) Error() string {
	return fmt.Sprintf("no such product: %s", e.Product)
}
func (e *NoSuchProductError) ExitCode() int { return errs.ExitResolution }

type NoSuchVersionError struct {
	Product string
	Version version.Version
}

func (e *NoSuchVersionError) Error() string {
	return fmt.Sprintf("no such version: %s %s", e.Product, e.Version)
}
func (e *NoSuchVersionError) ExitCode() int { return errs.ExitResolution }

type NoMatchingFlavorError struct {
	Product string
	Version version.Version
	Flavor  string
}

func (e *NoMatchingFlavorError) Error() string {
	return fmt.Sprintf("%s %s has no flavor matching %s", e.Product, e.Version, e.Flavor)
}
func (e *NoMatchingFlavorError) ExitCode() int { return errs.ExitResolution }

type NoSuchTagError struct {
	Product string
	Tag     string
}

func (e *NoSuchTagError) Error() string {
	return fmt.Sprintf("no such tag: %s %s", e.Product, e.Tag)
}
func (e *NoSuchTagError) ExitCode() int { return errs.ExitResolution }

var (
	_ errs.Coded = (*NoSuchProductError)(nil)
	_ errs.Coded = (*NoSuchVersionError)(nil)
	_ errs.Coded = (*NoMatchingFlavorError)(nil)
	_ errs.Coded = (*NoSuchTagError)(nil)
)

// matchFlavor picks the best-matching section out of a *.version or
// *.chain file for the requested flavor, per spec §4.3's precedence:
// an exact match wins, then a section filed under the ANY/NULL
// wildcard, otherwise there is no match at all.
func matchFlavor(flavors []string, want string) (string, bool) {
	for _, f := range flavors {
		if f == want {
			return f, true
		}
	}
	for _, f := range flavors {
		if f == "ANY" || f == "NULL" {
			return f, true
		}
	}
	return "", false
}

// FindVersionFile locates the declared (product, version) in this
// stack for the given flavor, returning its product directory and
// table-file path. It distinguishes a version that was never declared
// (NoSuchVersionError) from one that was declared but not for this
// flavor (NoMatchingFlavorError).
func (s Stack) FindVersionFile(product string, v version.Version, flavor string) (prodDir, tableFile string, err error) {
	path := s.versionFilePath(product, v)
	vf, err := loadVersionFile(path, product, v)
	if os.IsNotExist(err) {
		return "", "", &NoSuchVersionError{Product: product, Version: v}
	} else if err != nil {
		return "", "", err
	}

	fl, ok := matchFlavor(vf.Flavors(), flavor)
	if !ok {
		return "", "", &NoMatchingFlavorError{Product: product, Version: v, Flavor: flavor}
	}
	rec, _ := vf.Record(fl)

	prodDir = rec.ProdDir
	tableFile = rec.TableFile
	if tableFile != "" && tableFile != "none" && !filepath.IsAbs(tableFile) {
		tableFile = filepath.Join(prodDir, rec.UpsDir, tableFile)
	}
	return prodDir, tableFile, nil
}

// ResolveTag resolves product/tag to a concrete version by scanning
// stacks in order. Within a single stack, a user's own tag directory
// shadows the stack's global chain file for that same tag (spec
// Open Question, resolved in SPEC_FULL.md: per-user tags are a strictly
// personal override and take precedence over the shared one without
// altering it).
func ResolveTag(stacks []Stack, home, product, tag, flavor string) (Stack, version.Version, error) {
	for _, s := range stacks {
		if home != "" {
			if v, ok := resolveChainAt(userChainFilePath(home, s, product, tag), product, tag, flavor); ok {
				return s, v, nil
			}
		}
		if v, ok := resolveChainAt(s.chainFilePath(product, tag), product, tag, flavor); ok {
			return s, v, nil
		}
	}
	return Stack{}, "", &NoSuchTagError{Product: product, Tag: tag}
}

func resolveChainAt(path, product, tag, flavor string) (version.Version, bool) {
	cf, err := loadChainFile(path, product, tag)
	if err != nil {
		return "", false
	}
	fl, ok := matchFlavor(cf.Flavors(), flavor)
	if !ok {
		return "", false
	}
	rec, _ := cf.Record(fl)
	return rec.Version, true
}

// ProductVersion is one entry of a ListProducts result: a declared
// version of a product in a particular stack.
type ProductVersion struct {
	Product string
	Version version.Version
	Stack   Stack
}

// ListProducts enumerates every declared (product, version) across
// stacks, optionally filtered to a single product name. Order is
// stack order, then alphabetical by product, then version order.
func ListProducts(stacks []Stack, product string) ([]ProductVersion, error) {
	var out []ProductVersion
	for _, s := range stacks {
		entries, err := os.ReadDir(s.upsDB())
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if product != "" && e.Name() != product {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			vs, err := listVersions(s, name)
			if err != nil {
				return nil, err
			}
			for _, v := range vs {
				out = append(out, ProductVersion{Product: name, Version: v, Stack: s})
			}
		}
	}
	return out, nil
}

func listVersions(s Stack, product string) ([]version.Version, error) {
	entries, err := os.ReadDir(s.productDir(product))
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var vs []version.Version
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".version") {
			continue
		}
		vs = append(vs, version.Version(strings.TrimSuffix(name, ".version")))
	}
	sort.Slice(vs, func(i, j int) bool { return version.Less(vs[i], vs[j]) })
	return vs, nil
}
