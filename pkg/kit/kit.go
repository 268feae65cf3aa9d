// Package kit names the General MIDI percussion keys.
package kit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/james-see/drumscript/pkg/score"
)

// General MIDI percussion map (channel 10)
const (
	Click         score.Patch = 33
	Bell          score.Patch = 34
	Kick          score.Patch = 35
	BassDrum      score.Patch = 36
	SideStick     score.Patch = 37
	Snare         score.Patch = 38
	Clap          score.Patch = 39
	ElectricSnare score.Patch = 40
	LowFloorTom   score.Patch = 41
	ClosedHH      score.Patch = 42
	HiFloorTom    score.Patch = 43
	PedalHH       score.Patch = 44
	LowTom        score.Patch = 45
	OpenHH        score.Patch = 46
	LowMidTom     score.Patch = 47
	HiMidTom      score.Patch = 48
	Crash1        score.Patch = 49
	HiTom         score.Patch = 50
	Ride1         score.Patch = 51
	China         score.Patch = 52
	RideBell      score.Patch = 53
	Tambourine    score.Patch = 54
	Splash        score.Patch = 55
	Cowbell       score.Patch = 56
	Crash2        score.Patch = 57
	Vibraslap     score.Patch = 58
	Ride2         score.Patch = 59
	HiBongo       score.Patch = 60
	LowBongo      score.Patch = 61
	MuteHiConga   score.Patch = 62
	OpenHiConga   score.Patch = 63
	LowConga      score.Patch = 64
	HighTimbale   score.Patch = 65
	LowTimbale    score.Patch = 66
	HighAgogo     score.Patch = 67
	LowAgogo      score.Patch = 68
	Cabasa        score.Patch = 69
	Maracas       score.Patch = 70
	ShortWhistle  score.Patch = 71
	LongWhistle   score.Patch = 72
	ShortGuiro    score.Patch = 73
	LongGuiro     score.Patch = 74
	Claves        score.Patch = 75
	HiWoodBlock   score.Patch = 76
	LowWoodBlock  score.Patch = 77
	MuteCuica     score.Patch = 78
	OpenCuica     score.Patch = 79
	MuteTriangle  score.Patch = 80
	OpenTriangle  score.Patch = 81
)

var names = map[string]score.Patch{
	"click":          Click,
	"bell":           Bell,
	"kick":           Kick,
	"bass_drum":      BassDrum,
	"side_stick":     SideStick,
	"snare":          Snare,
	"clap":           Clap,
	"electric_snare": ElectricSnare,
	"low_floor_tom":  LowFloorTom,
	"closed_hh":      ClosedHH,
	"hi_floor_tom":   HiFloorTom,
	"pedal_hh":       PedalHH,
	"low_tom":        LowTom,
	"open_hh":        OpenHH,
	"low_mid_tom":    LowMidTom,
	"hi_mid_tom":     HiMidTom,
	"crash1":         Crash1,
	"hi_tom":         HiTom,
	"ride1":          Ride1,
	"china":          China,
	"ride_bell":      RideBell,
	"tambourine":     Tambourine,
	"splash":         Splash,
	"cowbell":        Cowbell,
	"crash2":         Crash2,
	"vibraslap":      Vibraslap,
	"ride2":          Ride2,
	"hi_bongo":       HiBongo,
	"low_bongo":      LowBongo,
	"mute_hi_conga":  MuteHiConga,
	"open_hi_conga":  OpenHiConga,
	"low_conga":      LowConga,
	"high_timbale":   HighTimbale,
	"low_timbale":    LowTimbale,
	"high_agogo":     HighAgogo,
	"low_agogo":      LowAgogo,
	"cabasa":         Cabasa,
	"maracas":        Maracas,
	"short_whistle":  ShortWhistle,
	"long_whistle":   LongWhistle,
	"short_guiro":    ShortGuiro,
	"long_guiro":     LongGuiro,
	"claves":         Claves,
	"hi_wood_block":  HiWoodBlock,
	"low_wood_block": LowWoodBlock,
	"mute_cuica":     MuteCuica,
	"open_cuica":     OpenCuica,
	"mute_triangle":  MuteTriangle,
	"open_triangle":  OpenTriangle,
}

// Common shorthand
var aliases = map[string]string{
	"bd":       "kick",
	"sd":       "snare",
	"hh":       "closed_hh",
	"hihat":    "closed_hh",
	"ch":       "closed_hh",
	"oh":       "open_hh",
	"ride":     "ride1",
	"crash":    "crash1",
	"rimshot":  "side_stick",
	"clave":    "claves",
	"triangle": "open_triangle",
}

// Lookup resolves a kit name, a shorthand or a key number (27-87).
func Lookup(name string) (score.Patch, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if p, ok := names[key]; ok {
		return p, nil
	}
	if n, err := strconv.Atoi(key); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("instrument key %d out of range", n)
		}
		return score.Patch(n), nil
	}
	return 0, fmt.Errorf("unknown instrument %q", name)
}

// Name returns the kit name of p, or its number when it has none.
func Name(p score.Patch) string {
	for name, patch := range names {
		if patch == p {
			return name
		}
	}
	return strconv.Itoa(int(p))
}

// Entry is one row of the kit table.
type Entry struct {
	Name  string      `json:"name"`
	Patch score.Patch `json:"patch"`
}

// Entries lists the kit ordered by key number.
func Entries() []Entry {
	out := make([]Entry, 0, len(names))
	for name, patch := range names {
		out = append(out, Entry{Name: name, Patch: patch})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Patch < out[j].Patch })
	return out
}
