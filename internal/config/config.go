// Package config persists named conversion profiles so the column layout
// of a bank export only has to be figured out once.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ofxer-dev/ofxer/internal/camt"
)

// Profile is one named bank-export layout in ofxer.yaml.
type Profile struct {
	SkipRows   int    `yaml:"skip_rows"`
	Columns    []int  `yaml:"columns"` // date, memo, title, amount
	DateLayout string `yaml:"date_layout,omitempty"`
	Encoding   string `yaml:"encoding,omitempty"`
	Account    string `yaml:"account,omitempty"`
}

// File is the top-level ofxer.yaml structure.
type File struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadConfig converts the profile into a validated loader configuration.
func (p Profile) LoadConfig() (camt.LoadConfig, error) {
	if len(p.Columns) != 4 {
		return camt.LoadConfig{}, fmt.Errorf("%w: profile needs 4 column indices, got %d",
			camt.ErrConfig, len(p.Columns))
	}
	cols, err := camt.NewColumns(p.Columns[0], p.Columns[1], p.Columns[2], p.Columns[3])
	if err != nil {
		return camt.LoadConfig{}, err
	}
	cfg := camt.LoadConfig{
		SkipRows:   p.SkipRows,
		Columns:    cols,
		DateLayout: p.DateLayout,
		Encoding:   p.Encoding,
	}
	return cfg, cfg.Validate()
}

// Builtin returns the presets shipped with the tool. Column positions
// follow the current export formats of the respective portals.
func Builtin() map[string]Profile {
	return map[string]Profile{
		"sparkasse": {
			SkipRows: 1,
			Columns:  []int{1, 4, 11, 14},
			Encoding: "latin1",
		},
		"dkb": {
			SkipRows:   1,
			Columns:    []int{0, 3, 2, 4},
			DateLayout: "02.01.2006",
		},
	}
}

// Load reads an ofxer.yaml file from disk.
func Load(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	return f.Profiles, nil
}

// Save writes profiles to a YAML file.
func Save(path string, profiles map[string]Profile) error {
	data, err := yaml.Marshal(File{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	return nil
}

// Resolve looks up name in the user file at path (if non-empty), falling
// back to the builtins. User profiles shadow builtins of the same name.
func Resolve(name, path string) (Profile, error) {
	if path != "" {
		profiles, err := Load(path)
		if err != nil {
			return Profile{}, err
		}
		if p, ok := profiles[name]; ok {
			return p, nil
		}
	}
	if p, ok := Builtin()[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("unknown profile %q", name)
}

// Names returns the sorted profile names visible with the given user file.
func Names(path string) ([]string, error) {
	merged := Builtin()
	if path != "" {
		profiles, err := Load(path)
		if err != nil {
			return nil, err
		}
		for name, p := range profiles {
			merged[name] = p
		}
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
