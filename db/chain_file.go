package db

import (
	"fmt"
	"os"

	"github.com/eups-go/eups/version"
)

// ChainRecord is one flavor section of a *.chain file: the version a
// tag currently points to for that flavor (spec §3, §4.3).
type ChainRecord struct {
	Version  version.Version
	Declarer string
	Declared string
}

// ChainFile is the parsed form of <product>/<tag>.chain.
type ChainFile struct {
	Product string
	Tag     string

	file *sectionFile
}

func loadChainFile(path, product, tag string) (*ChainFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sf, err := parseSectionFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &ChainFile{Product: product, Tag: tag, file: sf}, nil
}

func newChainFile(product, tag string) *ChainFile {
	return &ChainFile{Product: product, Tag: tag, file: newSectionFile()}
}

// Record returns the section for an exact flavor, or ok=false.
func (cf *ChainFile) Record(flavor string) (ChainRecord, bool) {
	s, ok := cf.file.get(flavor)
	if !ok {
		return ChainRecord{}, false
	}
	return ChainRecord{
		Version:  version.Version(s["VERSION"]),
		Declarer: s["DECLARER"],
		Declared: s["DECLARED"],
	}, true
}

func (cf *ChainFile) Flavors() []string {
	return append([]string(nil), cf.file.order...)
}

func (cf *ChainFile) setRecord(flavor string, r ChainRecord) {
	s := Section{"VERSION": string(r.Version)}
	if r.Declarer != "" {
		s["DECLARER"] = r.Declarer
	}
	if r.Declared != "" {
		s["DECLARED"] = r.Declared
	}
	cf.file.set(flavor, s)
}

func (cf *ChainFile) deleteRecord(flavor string) {
	cf.file.delete(flavor)
}

func (cf *ChainFile) empty() bool {
	return len(cf.file.order) == 0
}

func (cf *ChainFile) bytes() []byte { return cf.file.render() }
