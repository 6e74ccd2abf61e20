package table

import (
	"errors"
	"os"
)

// LoadFile reads and parses the table file at path. The literal path
// "none" is tolerated and yields a nil *File with no actions (spec
// §4.2); any other missing path is reported as *MissingError.
func LoadFile(path string) (*File, error) {
	if path == "none" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &MissingError{Path: path}
	} else if err != nil {
		return nil, err
	}

	return Parse(string(data))
}
