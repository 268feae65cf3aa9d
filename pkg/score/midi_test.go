package score

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/drumscript/pkg/duration"
)

func TestEncodeMIDIRoundTrip(t *testing.T) {
	s := New()
	require.NoError(t, s.SetTempo(100))
	require.NoError(t, s.SetTimeSignature(3, 4))
	s.Control(91, 15)

	require.NoError(t, s.Note(duration.Quarter, kick, hat))
	require.NoError(t, s.Note(duration.Quarter, hat))
	require.NoError(t, s.Accent(127, duration.Quarter, snare))
	require.NoError(t, s.Rest(duration.Whole))

	data, err := EncodeMIDI(s)
	require.NoError(t, err)
	assert.Equal(t, "MThd", string(data[:4]))

	summary, err := Inspect(data)
	require.NoError(t, err)

	assert.Equal(t, uint16(96), summary.TicksPerQuarter)
	assert.InDelta(t, 100.0, summary.Tempo, 0.01)
	assert.Equal(t, uint8(3), summary.Beats)
	assert.Equal(t, uint8(4), summary.Divisions)
	assert.Equal(t, uint8(15), summary.Controls[91])

	require.Len(t, summary.Hits, 4)
	assert.Equal(t, map[uint8]int{35: 1, 42: 2, 38: 1}, summary.KeyCounts())
	assert.Equal(t, uint32(192), summary.Hits[3].Tick)
	assert.Equal(t, uint8(127), summary.Hits[3].Velocity)
	assert.Equal(t, uint8(9), summary.Hits[0].Channel)

	// trailing whole rest is kept
	assert.Equal(t, uint32(7*96), summary.EndTick)
}

func TestMIDIWriterMergesVoices(t *testing.T) {
	s := New()
	require.NoError(t, s.Sync(
		func() error {
			for i := 0; i < 4; i++ {
				if err := s.Note(duration.Quarter, hat); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			if err := s.Note(duration.Half, kick); err != nil {
				return err
			}
			return s.Note(duration.Half, snare)
		},
	))

	data, err := EncodeMIDI(s)
	require.NoError(t, err)

	summary, err := Inspect(data)
	require.NoError(t, err)
	require.Len(t, summary.Hits, 6)

	var ticks []uint32
	for _, h := range summary.Hits {
		ticks = append(ticks, h.Tick)
	}
	assert.Equal(t, []uint32{0, 0, 96, 192, 192, 288}, ticks)
}

func TestMIDIWriterRetrigger(t *testing.T) {
	w := NewMIDIWriter()
	require.NoError(t, w.AppendNote(0, 48, 9, []uint8{38}, 100))
	require.NoError(t, w.AppendNote(48, 48, 9, []uint8{38}, 100))

	s, err := w.SMF()
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	// on, off, on, off, end-of-track
	track := s.Tracks[0]
	require.Len(t, track, 5)
	assert.Equal(t, byte(0x99), track[0].Message[0])
	assert.Equal(t, uint32(48), track[1].Delta)
	assert.Equal(t, byte(0x89), track[1].Message[0])
	assert.Equal(t, uint32(0), track[2].Delta)
	assert.Equal(t, byte(0x99), track[2].Message[0])
}

func TestMIDIWriterValidation(t *testing.T) {
	w := NewMIDIWriter()
	assert.Error(t, w.AppendNote(0, 10, 16, []uint8{38}, 100))
	assert.Error(t, w.AppendNote(0, 10, 9, []uint8{200}, 100))
	assert.Error(t, w.SetTimeSignature(0, 3, 6))
	assert.Error(t, w.SetTempo(0, 0))
	assert.Error(t, w.SetControl(0, 20, 7, 100))
	assert.NoError(t, w.AppendNote(0, 0, 9, []uint8{38}, 100))
}

func TestMIDIWriterWriteFile(t *testing.T) {
	s := New()
	require.NoError(t, s.Note(duration.Quarter, kick))

	w := NewMIDIWriter()
	require.NoError(t, s.Flush(w))

	path := filepath.Join(t.TempDir(), "out.mid")
	require.NoError(t, w.WriteFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(14))

	summary, err := InspectFile(path)
	require.NoError(t, err)
	assert.Len(t, summary.Hits, 1)
}

func TestMIDIWriterSilentNotes(t *testing.T) {
	tests := []struct {
		name     string
		velocity int
		hits     int
	}{
		{"silent", 0, 1},
		{"quietest", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			require.NoError(t, s.Accent(tt.velocity, duration.Quarter, snare))
			require.NoError(t, s.Note(duration.Quarter, kick))

			w := NewMIDIWriter()
			require.NoError(t, s.Flush(w))
			sm, err := w.SMF()
			require.NoError(t, err)
			for _, ev := range sm.Tracks[0] {
				msg := []byte(ev.Message)
				if len(msg) == 3 && msg[0]&0xF0 == 0x90 {
					assert.NotZero(t, msg[2], "note-on with velocity 0")
				}
			}

			data, err := w.Bytes()
			require.NoError(t, err)
			summary, err := Inspect(data)
			require.NoError(t, err)
			require.Len(t, summary.Hits, tt.hits)
			assert.Equal(t, uint8(kick), summary.Hits[tt.hits-1].Key)
			assert.Equal(t, uint32(96), summary.Hits[tt.hits-1].Tick)
			assert.Equal(t, uint32(192), summary.EndTick)
		})
	}
}
