package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// UserConfig is the optional ~/.eups/config.toml (DOMAIN STACK): a
// per-user default flavor and a default stack path, used verbatim as
// EUPS_PATH when that is unset, grounded on tsuku's internal/userconfig package's
// BurntSushi/toml-backed settings file. Every field here is always
// overridable by the corresponding -f/-Z/EUPS_FLAVOR/EUPS_PATH, per
// spec §6's precedence.
type UserConfig struct {
	Flavor       string `toml:"flavor"`
	DefaultStack string `toml:"default_stack"`
}

// LoadUserConfig reads home/.eups/config.toml. A missing file is not
// an error: it simply yields the zero UserConfig, matching the
// teacher's "search, don't hard-code, tolerate absence" idiom for
// rope.json in util.go.
func LoadUserConfig(home string) (UserConfig, error) {
	if home == "" {
		return UserConfig{}, nil
	}
	path := filepath.Join(home, ".eups", "config.toml")

	var cfg UserConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyUserConfig folds cfg's defaults into env as a final fallback
// layer, below -f/-Z/EUPS_FLAVOR/EUPS_PATH but above the built-in
// platform probe (spec §6). Keys already present in env are left
// untouched.
func ApplyUserConfig(env map[string]string, cfg UserConfig) {
	if cfg.Flavor != "" {
		if _, ok := env["EUPS_FLAVOR"]; !ok {
			env["EUPS_FLAVOR"] = cfg.Flavor
		}
	}
	if cfg.DefaultStack != "" {
		if _, ok := env["EUPS_PATH"]; !ok {
			env["EUPS_PATH"] = cfg.DefaultStack
		}
	}
}
