package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eups-go/eups/errs"
	"github.com/eups-go/eups/version"
)

// ExistsDifferentError is returned by Declare when the (product,
// version) is already declared for this flavor with a different
// ProdDir/TableFile, and force was not requested (spec §4.3,
// EXISTS_DIFFERENT).
type ExistsDifferentError struct {
	Product string
	Version version.Version
	Flavor  string
}

func (e *ExistsDifferentError) Error() string {
	return fmt.Sprintf("%s %s already declared for %s with different attributes", e.Product, e.Version, e.Flavor)
}
func (e *ExistsDifferentError) ExitCode() int { return errs.ExitInconsistent }

var _ errs.Coded = (*ExistsDifferentError)(nil)

// Declare records that (product, version) lives at rec.ProdDir for
// flavor, creating or updating the product's *.version file. A
// matching prior declaration is a harmless no-op; a conflicting one is
// rejected unless force is set, per spec §4.3 and §8's redeclaration
// scenario.
func (s Stack) Declare(product string, v version.Version, flavor string, rec VersionRecord, force bool) error {
	path := s.versionFilePath(product, v)

	vf, err := loadVersionFile(path, product, v)
	if os.IsNotExist(err) {
		vf = newVersionFile(product, v)
	} else if err != nil {
		return err
	}

	if existing, ok := vf.Record(flavor); ok {
		if existing.ProdDir == rec.ProdDir && existing.TableFile == rec.TableFile {
			return nil
		}
		if !force {
			return &ExistsDifferentError{Product: product, Version: v, Flavor: flavor}
		}
	}

	vf.setRecord(flavor, rec)

	if err := os.MkdirAll(s.productDir(product), 0o755); err != nil {
		return fmt.Errorf("creating product directory: %w", err)
	}
	return writeFileAtomic(path, vf.bytes(), 0o644)
}

// Undeclare removes the flavor section for (product, version) from
// its *.version file. Removing the last remaining flavor deletes the
// file entirely.
func (s Stack) Undeclare(product string, v version.Version, flavor string) error {
	path := s.versionFilePath(product, v)

	vf, err := loadVersionFile(path, product, v)
	if os.IsNotExist(err) {
		return &NoSuchVersionError{Product: product, Version: v}
	} else if err != nil {
		return err
	}

	if _, ok := vf.Record(flavor); !ok {
		return &NoMatchingFlavorError{Product: product, Version: v, Flavor: flavor}
	}

	remaining := make([]string, 0, len(vf.Flavors()))
	for _, f := range vf.Flavors() {
		if f != flavor {
			remaining = append(remaining, f)
		}
	}
	if len(remaining) == 0 {
		return os.Remove(path)
	}

	nvf := newVersionFile(product, v)
	for _, f := range remaining {
		rec, _ := vf.Record(f)
		nvf.setRecord(f, rec)
	}
	return writeFileAtomic(path, nvf.bytes(), 0o644)
}

// Tag points tag at v for flavor, scoped to home when home != "" (a
// personal tag under ~/.eups/ups_db) or to the stack's shared chain
// file otherwise (spec §4.3, §3's tag/chain model).
func (s Stack) Tag(home, product, tag string, v version.Version, flavor, declarer string) error {
	path := s.chainPathFor(home, product, tag)

	cf, err := loadChainFile(path, product, tag)
	if os.IsNotExist(err) {
		cf = newChainFile(product, tag)
	} else if err != nil {
		return err
	}

	cf.setRecord(flavor, ChainRecord{Version: v, Declarer: declarer})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating tag directory: %w", err)
	}
	return writeFileAtomic(path, cf.bytes(), 0o644)
}

// Untag removes tag's flavor section, deleting the chain file
// entirely once its last flavor is gone.
func (s Stack) Untag(home, product, tag, flavor string) error {
	path := s.chainPathFor(home, product, tag)

	cf, err := loadChainFile(path, product, tag)
	if os.IsNotExist(err) {
		return &NoSuchTagError{Product: product, Tag: tag}
	} else if err != nil {
		return err
	}

	cf.deleteRecord(flavor)
	if cf.empty() {
		return os.Remove(path)
	}
	return writeFileAtomic(path, cf.bytes(), 0o644)
}

func (s Stack) chainPathFor(home, product, tag string) string {
	if home != "" {
		return userChainFilePath(home, s, product, tag)
	}
	return s.chainFilePath(product, tag)
}
