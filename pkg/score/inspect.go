package score

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Hit is a note-on read back from a MIDI file.
type Hit struct {
	Tick     uint32 `json:"tick"`
	Channel  uint8  `json:"channel"`
	Key      uint8  `json:"key"`
	Velocity uint8  `json:"velocity"`
}

// Summary describes a MIDI file at the level a drum part cares about.
type Summary struct {
	TicksPerQuarter uint16          `json:"ticks_per_quarter"`
	Tempo           float64         `json:"tempo"`
	Beats           uint8           `json:"beats"`
	Divisions       uint8           `json:"divisions"`
	Hits            []Hit           `json:"hits"`
	EndTick         uint32          `json:"end_tick"`
	Controls        map[uint8]uint8 `json:"controls"`
}

// KeyCounts returns the number of hits per key.
func (s *Summary) KeyCounts() map[uint8]int {
	out := make(map[uint8]int)
	for _, h := range s.Hits {
		out[h.Key]++
	}
	return out
}

// InspectFile reads and summarizes a MIDI file.
func InspectFile(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Inspect(data)
}

// Inspect parses MIDI data and collects tempo, meter, controllers and
// note-ons from all tracks.
func Inspect(data []byte) (*Summary, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	summary := &Summary{
		TicksPerQuarter: 96,
		Tempo:           120.0,
		Beats:           4,
		Divisions:       4,
		Controls:        make(map[uint8]uint8),
	}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		summary.TicksPerQuarter = mt.Resolution()
	}

	for _, track := range s.Tracks {
		var currentTick uint32
		for _, ev := range track {
			currentTick += ev.Delta
			if currentTick > summary.EndTick {
				summary.EndTick = currentTick
			}
			msg := ev.Message

			// Tempo meta message (FF 51 03 tt tt tt)
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				us := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if us > 0 {
					summary.Tempo = 60000000.0 / float64(us)
				}
				continue
			}

			// Time signature meta message (FF 58 04 nn dd cc bb)
			if len(msg) >= 5 && msg[0] == 0xFF && msg[1] == 0x58 {
				summary.Beats = msg[3]
				summary.Divisions = 1 << msg[4]
				continue
			}

			if len(msg) < 3 {
				continue
			}
			status := msg[0]
			switch {
			// Note On with a velocity; velocity 0 is a release
			case status >= 0x90 && status <= 0x9F && msg[2] > 0:
				summary.Hits = append(summary.Hits, Hit{
					Tick:     currentTick,
					Channel:  status & 0x0F,
					Key:      msg[1],
					Velocity: msg[2],
				})
			// Control change
			case status >= 0xB0 && status <= 0xBF:
				summary.Controls[msg[1]] = msg[2]
			}
		}
	}

	sort.SliceStable(summary.Hits, func(i, j int) bool {
		return summary.Hits[i].Tick < summary.Hits[j].Tick
	})
	return summary, nil
}
