// Package config holds the settings a drum score is built with.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Defaults
const (
	DefaultFile      = "drumscript.mid"
	DefaultBPM       = 120.0
	DefaultVolume    = 100
	DefaultChannel   = 9 // General MIDI percussion
	DefaultReverb    = 15
	DefaultBars      = 4
	DefaultSignature = "4/4"
	DefaultLogLevel  = "info"
)

// MaxBars caps Bars.
const MaxBars = 64

// Settings configures a score. Zero values are replaced by defaults in
// WithDefaults.
type Settings struct {
	// File is where the MIDI file is written
	File string `yaml:"file,omitempty" json:"file,omitempty"`

	// BPM is the tempo in quarter notes per minute
	BPM float64 `yaml:"bpm,omitempty" json:"bpm,omitempty"`

	// Volume is the default note velocity (0-127); 0 writes silent notes
	Volume *int `yaml:"volume,omitempty" json:"volume,omitempty"`

	// Channel is the zero-based MIDI channel; 9 is the GM drum channel
	Channel *int `yaml:"channel,omitempty" json:"channel,omitempty"`

	// Reverb is the CC91 send level (0-127)
	Reverb *int `yaml:"reverb,omitempty" json:"reverb,omitempty"`

	// Bars is the default phrase length used by count-ins and metronomes
	Bars int `yaml:"bars,omitempty" json:"bars,omitempty"`

	// Signature is the time signature, e.g. "4/4" or "6/8"
	Signature string `yaml:"signature,omitempty" json:"signature,omitempty"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{}.WithDefaults()
}

// WithDefaults fills unset fields.
func (s Settings) WithDefaults() Settings {
	if s.File == "" {
		s.File = DefaultFile
	}
	if s.BPM == 0 {
		s.BPM = DefaultBPM
	}
	if s.Volume == nil {
		s.Volume = intPtr(DefaultVolume)
	}
	if s.Channel == nil {
		s.Channel = intPtr(DefaultChannel)
	}
	if s.Reverb == nil {
		s.Reverb = intPtr(DefaultReverb)
	}
	if s.Bars == 0 {
		s.Bars = DefaultBars
	}
	if s.Signature == "" {
		s.Signature = DefaultSignature
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	return s
}

// Merge returns s with every field that is set in o taking precedence.
func (s Settings) Merge(o Settings) Settings {
	if o.File != "" {
		s.File = o.File
	}
	if o.BPM != 0 {
		s.BPM = o.BPM
	}
	if o.Volume != nil {
		s.Volume = intPtr(*o.Volume)
	}
	if o.Channel != nil {
		s.Channel = intPtr(*o.Channel)
	}
	if o.Reverb != nil {
		s.Reverb = intPtr(*o.Reverb)
	}
	if o.Bars != 0 {
		s.Bars = o.Bars
	}
	if o.Signature != "" {
		s.Signature = o.Signature
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	return s
}

// VolumeLevel returns the configured default velocity or the default.
func (s Settings) VolumeLevel() int {
	if s.Volume == nil {
		return DefaultVolume
	}
	return *s.Volume
}

// ChannelNumber returns the configured channel or the default.
func (s Settings) ChannelNumber() int {
	if s.Channel == nil {
		return DefaultChannel
	}
	return *s.Channel
}

// ReverbLevel returns the configured reverb send or the default.
func (s Settings) ReverbLevel() int {
	if s.Reverb == nil {
		return DefaultReverb
	}
	return *s.Reverb
}

// Validate checks ranges after defaults are applied.
func (s Settings) Validate() error {
	var errs []error
	if s.BPM <= 0 {
		errs = append(errs, fmt.Errorf("bpm must be positive, got %v", s.BPM))
	}
	if v := s.VolumeLevel(); v < 0 || v > 127 {
		errs = append(errs, fmt.Errorf("volume must be 0-127, got %d", v))
	}
	if ch := s.ChannelNumber(); ch < 0 || ch > 15 {
		errs = append(errs, fmt.Errorf("channel must be 0-15, got %d", ch))
	}
	if r := s.ReverbLevel(); r < 0 || r > 127 {
		errs = append(errs, fmt.Errorf("reverb must be 0-127, got %d", r))
	}
	if s.Bars < 0 || s.Bars > MaxBars {
		errs = append(errs, fmt.Errorf("bars must be 0-%d, got %d", MaxBars, s.Bars))
	}
	if _, _, err := ParseSignature(s.Signature); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseSignature splits "7/8" into beats and divisions. The divisions must
// be a power of two.
func ParseSignature(sig string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(sig), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time signature %q", sig)
	}
	beats, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || beats <= 0 {
		return 0, 0, fmt.Errorf("invalid time signature %q: bad beat count", sig)
	}
	divisions, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || divisions <= 0 || divisions&(divisions-1) != 0 {
		return 0, 0, fmt.Errorf("invalid time signature %q: divisions must be a power of two", sig)
	}
	return beats, divisions, nil
}

// Parse reads YAML settings.
func Parse(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// Load reads a YAML settings file and applies defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, err
	}
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return s, nil
}

// Marshal renders settings as YAML.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func intPtr(v int) *int {
	return &v
}
