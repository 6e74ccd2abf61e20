package db

import (
	"os"
	"sort"
	"strings"

	"github.com/eups-go/eups/version"
)

// TagPointer is one (tag, flavor) -> version pointer read out of a
// product's *.chain files (spec §3's tag/chain model), used by `list`
// and `tags` to show which tags currently resolve to which version.
type TagPointer struct {
	Tag     string
	Flavor  string
	Version version.Version
}

// Tags enumerates every tag pointer declared for product in this
// stack's global (non-user) chain files.
func (s Stack) Tags(product string) ([]TagPointer, error) {
	entries, err := os.ReadDir(s.productDir(product))
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var out []TagPointer
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".chain") {
			names = append(names, strings.TrimSuffix(e.Name(), ".chain"))
		}
	}
	sort.Strings(names)

	for _, tag := range names {
		cf, err := loadChainFile(s.chainFilePath(product, tag), product, tag)
		if err != nil {
			continue
		}
		for _, flavor := range cf.Flavors() {
			rec, _ := cf.Record(flavor)
			out = append(out, TagPointer{Tag: tag, Flavor: flavor, Version: rec.Version})
		}
	}
	return out, nil
}
