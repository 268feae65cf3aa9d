package groove

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/drumscript/pkg/config"
	"github.com/james-see/drumscript/pkg/drummer"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/score"
)

const simple = `
name: simple
settings:
  bpm: 90
steps:
  - pattern:
      patterns: ["1010"]
      instruments: [snare]
  - euclid:
      onsets: 3
      steps: 8
      duration: eighth
      instruments: [kick]
`

func hits(d *drummer.Drummer) []score.Event {
	var out []score.Event
	for _, ev := range d.Score().Events() {
		if ev.IsNote() {
			out = append(out, ev)
		}
	}
	return out
}

func TestParseAndBuild(t *testing.T) {
	g, err := Parse([]byte(simple))
	require.NoError(t, err)
	assert.Equal(t, "simple", g.Name)
	assert.Equal(t, 90.0, g.Settings.BPM)
	require.Len(t, g.Steps, 2)

	d, err := Build(g, config.Settings{})
	require.NoError(t, err)

	notes := hits(d)
	require.Len(t, notes, 5)
	assert.Equal(t, []score.Patch{kit.Snare}, notes[0].Patches)
	assert.Equal(t, []score.Patch{kit.Kick}, notes[2].Patches)
	assert.Equal(t, uint32(4*96), notes[2].At)
	assert.Zero(t, d.Counter().Cmp(big.NewRat(8, 1)))
}

func TestBuildOverrides(t *testing.T) {
	g, err := Parse([]byte(simple))
	require.NoError(t, err)

	d, err := Build(g, config.Settings{BPM: 140})
	require.NoError(t, err)
	assert.Equal(t, 140.0, d.Settings().BPM)
}

func TestParseJSON(t *testing.T) {
	doc := `{"name": "json", "steps": [{"note": {"instruments": ["kick", "crash"], "duration": "half"}}, {"rest": {}}]}`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)

	d, err := Build(g, config.Settings{})
	require.NoError(t, err)
	notes := hits(d)
	require.Len(t, notes, 1)
	assert.Equal(t, []score.Patch{kit.Kick, kit.Crash1}, notes[0].Patches)
	assert.Zero(t, d.Counter().Cmp(big.NewRat(3, 1)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no steps", doc: "name: empty\n"},
		{name: "empty step", doc: "name: x\nsteps:\n  - {}\n"},
		{name: "two kinds", doc: "name: x\nsteps:\n  - tempo: 100\n    signature: 3/4\n"},
		{name: "bad settings", doc: "name: x\nsettings:\n  signature: 5/5\nsteps:\n  - tempo: 100\n"},
		{name: "not yaml", doc: "steps: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateLimits(t *testing.T) {
	tests := []struct {
		name  string
		step  string
		limit bool
	}{
		{name: "unknown duration", step: "roll:\n      duration: minim"},
		{name: "euclid onsets over steps", step: "euclid:\n      onsets: 9\n      steps: 8"},
		{name: "euclid steps", step: "euclid:\n      onsets: 1\n      steps: 100000"},
		{name: "combinatorial beats", step: "combinatorial:\n      duration: sixteenth\n      beats: 22", limit: true},
		{name: "pattern repeat", step: "pattern:\n      patterns: [\"1\"]\n      repeat: 1000000", limit: true},
		{name: "euclid repeat", step: "euclid:\n      onsets: 3\n      steps: 8\n      repeat: 65", limit: true},
		{name: "count_in bars", step: "count_in: 100000", limit: true},
		{name: "metronome bars", step: "metronome: 65", limit: true},
		{name: "raw roll length", step: "roll:\n      duration: d100000", limit: true},
		{name: "raw steady length", step: "steady:\n      duration: d6145", limit: true},
		{name: "raw rest length", step: "rest:\n      duration: d1000000", limit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte("name: x\nsteps:\n  - rest: {}\n  - " + tt.step + "\n"))
			require.Error(t, err)
			assert.ErrorContains(t, err, "step 2")
			if tt.limit {
				assert.ErrorIs(t, err, ErrLimit)
			}
		})
	}

	t.Run("settings bars", func(t *testing.T) {
		_, err := Parse([]byte("name: x\nsettings:\n  bars: 65\nsteps:\n  - count_in: 0\n"))
		assert.Error(t, err)
	})

	t.Run("at the limits", func(t *testing.T) {
		doc := `
name: edge
steps:
  - rest:
      duration: d6144
  - count_in: 64
  - euclid:
      onsets: 3
      steps: 1024
      repeat: 64
  - combinatorial:
      duration: sixteenth
      beats: 4
      repeat: 64
`
		g, err := Parse([]byte(doc))
		require.NoError(t, err)
		_, err = Build(g, config.Settings{})
		assert.NoError(t, err)
	})
}

func TestBuildEventLimit(t *testing.T) {
	// 2^16 patterns of 16 sixteenths, each played 64 times
	doc := `
name: long
steps:
  - combinatorial:
      duration: sixteenth
      beats: 16
      repeat: 64
`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)
	_, err = Build(g, config.Settings{})
	assert.ErrorIs(t, err, score.ErrEventLimit)
}

func TestStepKind(t *testing.T) {
	bars := 2
	kind, err := Step{CountIn: &bars}.Kind()
	require.NoError(t, err)
	assert.Equal(t, "count_in", kind)

	kind, err = Step{Tempo: 90}.Kind()
	require.NoError(t, err)
	assert.Equal(t, "tempo", kind)

	_, err = Step{Tempo: 90, Metronome: &bars}.Kind()
	assert.ErrorContains(t, err, "metronome, tempo")
}

func TestRenderErrorsNameTheStep(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown instrument",
			doc:  "name: x\nsteps:\n  - rest: {}\n  - pattern:\n      patterns: [\"1\"]\n      instruments: [cowbel]\n",
			want: "step 2 (pattern)",
		},
		{
			name: "flam without room",
			doc:  "name: x\nsteps:\n  - rest: {}\n  - flam:\n      duration: thirtysecond\n",
			want: "step 2 (flam)",
		},
		{
			name: "fill without phrase",
			doc:  "name: x\nsteps:\n  - fill:\n      phrases:\n        snare: [\"1010\"]\n",
			want: "step 1 (fill)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = Build(g, config.Settings{})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestFillStep(t *testing.T) {
	doc := `
name: fill
steps:
  - fill:
      duration: 16
      fill:
        snare: "1111"
      phrases:
        snare: ["1111"]
        kick: ["1000"]
`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)
	d, err := Build(g, config.Settings{})
	require.NoError(t, err)

	counts := map[score.Patch]int{}
	for _, ev := range hits(d) {
		counts[ev.Patches[0]]++
	}
	assert.Equal(t, map[score.Patch]int{kit.Kick: 1, kit.Snare: 7}, counts)
}

func TestSyncStepDerivesDuration(t *testing.T) {
	doc := `
name: sync
steps:
  - sync:
      voices:
        closed_hh: ["11111111"]
        kick: ["1000"]
`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)
	d, err := Build(g, config.Settings{})
	require.NoError(t, err)

	// eighths for both voices, so the kick lasts half a bar
	assert.Zero(t, d.Score().Position().Cmp(big.NewRat(4, 1)))
	assert.Len(t, hits(d), 9)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simple.yaml")
	require.NoError(t, os.WriteFile(path, []byte(simple), 0644))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "simple", g.Name)

	data, err := g.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, g, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	presets, err := Presets()
	require.NoError(t, err)
	require.Len(t, presets, len(PresetNames()))
	assert.Equal(t, []string{"rock", "rudiments", "study", "tresillo", "waltz"}, PresetNames())

	for _, g := range presets {
		t.Run(g.Name, func(t *testing.T) {
			d, err := Build(g, config.Settings{})
			require.NoError(t, err)
			assert.NotEmpty(t, hits(d))

			data, err := d.Bytes()
			require.NoError(t, err)
			summary, err := score.Inspect(data)
			require.NoError(t, err)
			assert.Len(t, summary.Hits, countKeys(hits(d)))
		})
	}
}

func TestPreset(t *testing.T) {
	g, err := Preset("Waltz")
	require.NoError(t, err)
	assert.Equal(t, "waltz", g.Name)

	d, err := Build(g, config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, 6, d.Beats())
	assert.Equal(t, 8, d.Divisions())

	_, err = Preset("polka")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func countKeys(events []score.Event) int {
	n := 0
	for _, ev := range events {
		n += len(ev.Patches)
	}
	return n
}
