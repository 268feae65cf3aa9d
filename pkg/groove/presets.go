package groove

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// ErrUnknownPreset is returned by Preset for a name with no built-in groove.
var ErrUnknownPreset = errors.New("unknown preset")

// Presets returns the built-in grooves ordered by name.
func Presets() ([]*Groove, error) {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil, err
	}
	out := make([]*Groove, 0, len(entries))
	for _, e := range entries {
		data, err := presetFS.ReadFile(path.Join("presets", e.Name()))
		if err != nil {
			return nil, err
		}
		g, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", e.Name(), err)
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PresetNames lists the built-in grooves.
func PresetNames() []string {
	entries, _ := presetFS.ReadDir("presets")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// Preset returns the built-in groove called name.
func Preset(name string) (*Groove, error) {
	data, err := presetFS.ReadFile(path.Join("presets", strings.ToLower(name)+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return Parse(data)
}
