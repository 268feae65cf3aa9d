// Package groove reads declarative drum parts and plays them on a drummer.
//
// A groove is a YAML (or JSON) document with a name, optional settings and
// an ordered list of steps:
//
//	name: tresillo
//	settings:
//	  bpm: 100
//	steps:
//	  - count_in: 1
//	  - sync:
//	      duration: eighth
//	      voices:
//	        kick: ["10010010"]
//	        closed_hh: ["11111111"]
package groove

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"

	"github.com/james-see/drumscript/pkg/config"
	"github.com/james-see/drumscript/pkg/drummer"
	"github.com/james-see/drumscript/pkg/logging"
	"github.com/james-see/drumscript/pkg/score"
)

// Groove is a named drum part.
type Groove struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Settings    config.Settings `yaml:"settings,omitempty" json:"settings,omitempty"`
	Steps       []Step          `yaml:"steps" json:"steps"`
}

// Parse reads a groove document, YAML or JSON.
func Parse(data []byte) (*Groove, error) {
	var (
		g   Groove
		err error
	)
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(data, &g)
	} else {
		err = yaml.Unmarshal(data, &g)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse groove: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Load reads a groove file.
func Load(path string) (*Groove, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read groove file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Marshal renders the groove as YAML.
func (g *Groove) Marshal() ([]byte, error) {
	return yaml.Marshal(g)
}

// Validate checks that every step does exactly one thing within the
// groove limits and that the settings are usable.
func (g *Groove) Validate() error {
	var errs []error
	if len(g.Steps) == 0 {
		errs = append(errs, errors.New("groove has no steps"))
	}
	for i, step := range g.Steps {
		if _, err := step.Kind(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
			continue
		}
		if err := step.checkLimits(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
		}
	}
	if err := g.Settings.WithDefaults().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Render plays every step on d in order.
func (g *Groove) Render(d *drummer.Drummer) error {
	log := logging.GetLogger("groove").WithField("groove", g.Name)
	for i, step := range g.Steps {
		kind, err := step.Kind()
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := step.play(d); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, kind, err)
		}
		log.WithFields(logrus.Fields{
			"step":    i + 1,
			"kind":    kind,
			"counter": d.Score().CounterFloat(),
		}).Debug("Render")
	}
	return nil
}

// Build creates a drummer from the groove's settings, with overrides taking
// precedence, and renders the groove on it. The score holds at most
// MaxEvents notes and rests.
func Build(g *Groove, overrides config.Settings) (*drummer.Drummer, error) {
	d, err := drummer.New(g.Settings.Merge(overrides), score.WithEventLimit(MaxEvents))
	if err != nil {
		return nil, err
	}
	if err := g.Render(d); err != nil {
		return nil, fmt.Errorf("groove %q: %w", g.Name, err)
	}
	return d, nil
}
