package db

import (
	"fmt"
	"os"

	"github.com/eups-go/eups/version"
)

// VersionRecord is one flavor section of a *.version file: where a
// declared (product, version) lives on disk for one flavor (spec §3,
// §4.3).
type VersionRecord struct {
	ProdDir   string
	UpsDir    string // relative to ProdDir; defaults to "ups".
	TableFile string // absolute, relative to UpsDir, or "none".
	Declarer  string
	Declared  string
}

// VersionFile is the parsed form of <product>/<version>.version.
type VersionFile struct {
	Product string
	Version version.Version

	file *sectionFile
}

func loadVersionFile(path, product string, v version.Version) (*VersionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sf, err := parseSectionFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &VersionFile{Product: product, Version: v, file: sf}, nil
}

// Record returns the section for an exact flavor, or ok=false.
func (vf *VersionFile) Record(flavor string) (VersionRecord, bool) {
	s, ok := vf.file.get(flavor)
	if !ok {
		return VersionRecord{}, false
	}
	return VersionRecord{
		ProdDir:   s["PROD_DIR"],
		UpsDir:    orDefault(s["UPS_DIR"], "ups"),
		TableFile: s["TABLE_FILE"],
		Declarer:  s["DECLARER"],
		Declared:  s["DECLARED"],
	}, true
}

// Flavors lists every flavor section present in the file.
func (vf *VersionFile) Flavors() []string {
	return append([]string(nil), vf.file.order...)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func newVersionFile(product string, v version.Version) *VersionFile {
	return &VersionFile{Product: product, Version: v, file: newSectionFile()}
}

func (vf *VersionFile) setRecord(flavor string, r VersionRecord) {
	s := Section{
		"PROD_DIR":   r.ProdDir,
		"UPS_DIR":    r.UpsDir,
		"TABLE_FILE": r.TableFile,
	}
	if r.Declarer != "" {
		s["DECLARER"] = r.Declarer
	}
	if r.Declared != "" {
		s["DECLARED"] = r.Declared
	}
	vf.file.set(flavor, s)
}

func (vf *VersionFile) bytes() []byte { return vf.file.render() }
