// Package main is the entry point for drumscript CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/james-see/drumscript/pkg/api"
	"github.com/james-see/drumscript/pkg/config"
	"github.com/james-see/drumscript/pkg/drummer"
	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/groove"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/logging"
	"github.com/james-see/drumscript/pkg/rhythm"
	"github.com/james-see/drumscript/pkg/score"
	"github.com/james-see/drumscript/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile  string
	configFile  string
	logLevel    string
	bpm         float64
	signature   string
	volume      int
	serverPort  int
	outDir      string
	instruments []string
	noteLength  string
	repeat      int
	rotate      int
	negate      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "drumscript",
	Short: "Write drum parts as beat-strings and render them to MIDI",
	Long: `drumscript turns compact rhythm descriptions into Standard MIDI Files.

Beat-strings ("1010"), Euclidean rhythms, every variation of a given
length, fills spliced onto phrases and rudiments can be played directly
or described in a YAML groove document.

Examples:
  drumscript pattern 10001000 00100010 -i kick -i snare -o beat.mid
  drumscript euclid 3 8 -i kick -o tresillo.mid
  drumscript render groove.yaml -o groove.mid
  drumscript preset rock --bpm 96
  drumscript inspect groove.mid
  drumscript tui
  drumscript serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			level = s.WithDefaults().LogLevel
		}
		return logging.SetLevel(level)
	},
	SilenceUsage: true,
}

var renderCmd = &cobra.Command{
	Use:   "render <groove.yaml>",
	Short: "Render a groove document to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var presetCmd = &cobra.Command{
	Use:   "preset <name>",
	Short: "Render a built-in groove to MIDI",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreset,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in grooves",
	Args:  cobra.NoArgs,
	RunE:  runPresets,
}

var patternCmd = &cobra.Command{
	Use:   "pattern <beat-string>...",
	Short: "Play beat-strings, one per instrument, at the same time",
	Long: `Plays each beat-string on the instrument given at the same position
with -i. With a single instrument the beat-strings are played one after
the other instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPattern,
}

var euclidCmd = &cobra.Command{
	Use:   "euclid <onsets> <steps>",
	Short: "Print a Euclidean rhythm, or render it with -o",
	Args:  cobra.ExactArgs(2),
	RunE:  runEuclid,
}

var kitCmd = &cobra.Command{
	Use:   "kit",
	Short: "List drum kit instruments",
	Args:  cobra.NoArgs,
	Run:   runKit,
}

var durationsCmd = &cobra.Command{
	Use:   "durations",
	Short: "List note durations",
	Args:  cobra.NoArgs,
	Run:   runDurations,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Summarize a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Settings file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Float64Var(&bpm, "bpm", 0, "Tempo override")
	rootCmd.PersistentFlags().StringVar(&signature, "signature", "", "Time signature override, e.g. 6/8")
	rootCmd.PersistentFlags().IntVar(&volume, "volume", 0, "Default velocity override (0-127)")

	// Rendering commands
	for _, cmd := range []*cobra.Command{renderCmd, presetCmd, patternCmd, euclidCmd} {
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	}
	for _, cmd := range []*cobra.Command{patternCmd, euclidCmd} {
		cmd.Flags().StringSliceVarP(&instruments, "instrument", "i", nil, "Instrument name or key number")
		cmd.Flags().StringVarP(&noteLength, "duration", "d", "", "Length of each symbol, e.g. sixteenth")
		cmd.Flags().IntVarP(&repeat, "repeat", "r", 1, "Times to play each pattern")
	}
	patternCmd.Flags().BoolVar(&negate, "negate", false, "Swap onsets and rests")
	euclidCmd.Flags().IntVar(&rotate, "rotate", 0, "Rotate right by this many steps")

	// tui command
	tuiCmd.Flags().StringVar(&outDir, "dir", ".", "Directory rendered files are written to")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(patternCmd)
	rootCmd.AddCommand(euclidCmd)
	rootCmd.AddCommand(kitCmd)
	rootCmd.AddCommand(durationsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadSettings reads --config without applying defaults, so a groove's own
// settings still win over unset fields, and applies the flag overrides.
func loadSettings() (config.Settings, error) {
	var s config.Settings
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return s, fmt.Errorf("failed to read config file: %w", err)
		}
		if s, err = config.Parse(data); err != nil {
			return s, err
		}
	}
	flags := config.Settings{
		BPM:       bpm,
		Signature: signature,
		LogLevel:  logLevel,
	}
	if rootCmd.PersistentFlags().Changed("volume") {
		flags.Volume = &volume
	}
	return s.Merge(flags), nil
}

func getOutputPath(settings config.Settings, fallback string) string {
	if outputFile != "" {
		return outputFile
	}
	if settings.File != "" {
		return settings.File
	}
	return fallback
}

func writeGroove(g *groove.Groove, fallback string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	d, err := groove.Build(g, settings)
	if err != nil {
		return err
	}
	output := getOutputPath(settings, fallback)
	if err := d.WriteFile(output); err != nil {
		return err
	}
	fmt.Printf("Rendered %s -> %s (%g beats)\n", g.Name, output, d.Score().CounterFloat())
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	input := args[0]
	g, err := groove.Load(input)
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return writeGroove(g, base+".mid")
}

func runPreset(cmd *cobra.Command, args []string) error {
	g, err := groove.Preset(args[0])
	if err != nil {
		return err
	}
	return writeGroove(g, g.Name+".mid")
}

func runPresets(cmd *cobra.Command, args []string) error {
	presets, err := groove.Presets()
	if err != nil {
		return err
	}
	for _, g := range presets {
		fmt.Printf("%-12s %s\n", g.Name, g.Description)
	}
	return nil
}

func newDrummer() (*drummer.Drummer, config.Settings, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, settings, err
	}
	d, err := drummer.New(settings)
	if err != nil {
		return nil, settings, err
	}
	return d, settings, nil
}

func parseInstruments() ([]score.Patch, error) {
	names := instruments
	if len(names) == 0 {
		names = []string{"snare"}
	}
	out := make([]score.Patch, 0, len(names))
	for _, name := range names {
		p, err := kit.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseNoteLength() (duration.Token, error) {
	if noteLength == "" {
		return "", nil
	}
	return duration.Parse(noteLength)
}

func runPattern(cmd *cobra.Command, args []string) error {
	d, settings, err := newDrummer()
	if err != nil {
		return err
	}
	patches, err := parseInstruments()
	if err != nil {
		return err
	}
	dur, err := parseNoteLength()
	if err != nil {
		return err
	}

	if len(patches) == 1 {
		err = d.Pattern(drummer.PatternOptions{
			Patterns:    args,
			Duration:    dur,
			Instruments: patches,
			Repeat:      repeat,
			Negate:      negate,
		})
	} else {
		if len(patches) != len(args) {
			return fmt.Errorf("got %d beat-strings for %d instruments", len(args), len(patches))
		}
		voices := make([]func() error, len(args))
		for i := range args {
			opts := drummer.PatternOptions{
				Patterns:    []string{args[i]},
				Duration:    dur,
				Instruments: []score.Patch{patches[i]},
				Repeat:      repeat,
				Negate:      negate,
			}
			voices[i] = func() error { return d.Pattern(opts) }
		}
		err = d.Sync(voices...)
	}
	if err != nil {
		return err
	}

	output := getOutputPath(settings, config.DefaultFile)
	if err := d.WriteFile(output); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%g beats)\n", output, d.Score().CounterFloat())
	return nil
}

func runEuclid(cmd *cobra.Command, args []string) error {
	onsets, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid onsets %q", args[0])
	}
	steps, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid steps %q", args[1])
	}
	if err := rhythm.CheckEuclid(onsets, steps); err != nil {
		return err
	}
	pattern := rhythm.Rotate(rhythm.Euclid(onsets, steps), rotate)
	fmt.Println(pattern)

	if outputFile == "" {
		return nil
	}
	d, _, err := newDrummer()
	if err != nil {
		return err
	}
	patches, err := parseInstruments()
	if err != nil {
		return err
	}
	dur, err := parseNoteLength()
	if err != nil {
		return err
	}
	err = d.Pattern(drummer.PatternOptions{
		Patterns:    []string{pattern},
		Duration:    dur,
		Instruments: patches,
		Repeat:      repeat,
	})
	if err != nil {
		return err
	}
	return d.WriteFile(outputFile)
}

func runKit(cmd *cobra.Command, args []string) {
	for _, e := range kit.Entries() {
		fmt.Printf("%3d  %s\n", e.Patch, e.Name)
	}
}

func runDurations(cmd *cobra.Command, args []string) {
	for _, tok := range duration.Tokens() {
		ticks, _ := duration.Ticks(tok)
		fmt.Printf("%-28s %6s beats %4d ticks\n", tok, duration.MustBeatLength(tok).RatString(), ticks)
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	summary, err := score.InspectFile(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Resolution: %d ticks per quarter\n", summary.TicksPerQuarter)
	fmt.Printf("Tempo:      %.2f BPM\n", summary.Tempo)
	fmt.Printf("Meter:      %d/%d\n", summary.Beats, summary.Divisions)
	fmt.Printf("Length:     %d ticks\n", summary.EndTick)
	fmt.Printf("Hits:       %d\n", len(summary.Hits))

	counts := summary.KeyCounts()
	for _, e := range kit.Entries() {
		if n := counts[uint8(e.Patch)]; n > 0 {
			fmt.Printf("  %-16s %d\n", e.Name, n)
		}
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := settings.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	return tui.Run(outDir, settings)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
