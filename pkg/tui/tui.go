// Package tui provides a terminal user interface for drumscript
package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/drumscript/pkg/config"
	"github.com/james-see/drumscript/pkg/groove"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/logging"
	"github.com/james-see/drumscript/pkg/score"
)

// Drum-machine color scheme
var (
	// Primary colors - amber pads and silver
	amber      = lipgloss.Color("#FFB000")
	padRed     = lipgloss.Color("#FF4F4F")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(padRed).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateRendering
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string

	// Preset is the built-in groove to render; empty for the other items
	Preset string
	action action
}

type action int

const (
	actionPreset action = iota
	actionOpenFile
	actionExit
)

// Model represents the TUI model
type Model struct {
	state        State
	items        []MenuItem
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	outDir       string
	overrides    config.Settings
	selected     MenuItem
	selectedFile string
	result       renderDoneMsg
	width        int
	height       int
}

// renderDoneMsg signals render completion
type renderDoneMsg struct {
	outputFile string
	beats      float64
	hits       map[uint8]int
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model that writes MIDI files to outDir.
func New(outDir string, overrides config.Settings) Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".yaml", ".yml", ".json"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(amber)

	return Model{
		state:      StateMenu,
		items:      menuItems(),
		filePicker: fp,
		spinner:    s,
		outDir:     outDir,
		overrides:  overrides,
	}
}

func menuItems() []MenuItem {
	var items []MenuItem
	if presets, err := groove.Presets(); err == nil {
		for _, g := range presets {
			items = append(items, MenuItem{
				Title:       g.Name,
				Description: g.Description,
				Preset:      g.Name,
				action:      actionPreset,
			})
		}
	}
	return append(items,
		MenuItem{Title: "Open groove file", Description: "Render a YAML or JSON groove document", action: actionOpenFile},
		MenuItem{Title: "Exit", Description: "Exit the application", action: actionExit},
	)
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateRendering
			return m, tea.Batch(m.spinner.Tick, m.performRender())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case renderDoneMsg:
		m.state = StateResult
		m.result = msg
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(m.items)-1 {
			m.menuIndex++
		}
	case "enter":
		m.selected = m.items[m.menuIndex]
		switch m.selected.action {
		case actionExit:
			return m, tea.Quit
		case actionOpenFile:
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		default:
			m.selectedFile = ""
			m.state = StateRendering
			return m, tea.Batch(m.spinner.Tick, m.performRender())
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.result = renderDoneMsg{}
		m.selectedFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performRender() tea.Cmd {
	selected, file, outDir, overrides := m.selected, m.selectedFile, m.outDir, m.overrides
	return func() tea.Msg {
		return render(selected, file, outDir, overrides)
	}
}

func render(item MenuItem, file, outDir string, overrides config.Settings) renderDoneMsg {
	var (
		g   *groove.Groove
		err error
	)
	if file != "" {
		g, err = groove.Load(file)
	} else {
		g, err = groove.Preset(item.Preset)
	}
	if err != nil {
		return renderDoneMsg{err: err}
	}

	d, err := groove.Build(g, overrides)
	if err != nil {
		return renderDoneMsg{err: err}
	}

	// Generate output filename
	outputFile := filepath.Join(outDir, g.Name+".mid")
	if file != "" {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		outputFile = filepath.Join(outDir, base+".mid")
	}
	if err := d.WriteFile(outputFile); err != nil {
		return renderDoneMsg{err: err}
	}

	summary, err := score.InspectFile(outputFile)
	if err != nil {
		return renderDoneMsg{err: err}
	}
	return renderDoneMsg{
		outputFile: outputFile,
		beats:      d.Score().CounterFloat(),
		hits:       summary.KeyCounts(),
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	header := asciiLogo()
	s.WriteString(header)
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateRendering:
		s.WriteString(m.viewRendering())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT GROOVE "))
	s.WriteString("\n\n")

	for i, item := range m.items {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(padRed).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT GROOVE FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewRendering() string {
	var s strings.Builder

	name := m.selected.Title
	if m.selectedFile != "" {
		name = filepath.Base(m.selectedFile)
	}
	s.WriteString(titleStyle.Render(" RENDERING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Rendering %s...\n", m.spinner.View(), name))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  output: %s", m.outDir)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.result.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Render failed: %s", m.result.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Render complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Output: %s\n", m.result.outputFile))
		s.WriteString(fmt.Sprintf("Beats:  %g\n", m.result.beats))
		for _, e := range kit.Entries() {
			if n := m.result.hits[uint8(e.Patch)]; n > 0 {
				s.WriteString(fmt.Sprintf("  %-16s %d\n", e.Name, n))
			}
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
      _                                _       _
   __| |_ __ _   _ _ __ ___  ___  ___ _ __(_)_ __ | |_
  / _' | '__| | | | '_ ' _ \/ __|/ __| '__| | '_ \| __|
 | (_| | |  | |_| | | | | | \__ \ (__| |  | | |_) | |_
  \__,_|_|   \__,_|_| |_| |_|___/\___|_|  |_| .__/ \__|
                                            |_|
`
	return lipgloss.NewStyle().Foreground(amber).Render(logo)
}

// Run starts the TUI application. Log output is silenced while it runs.
func Run(outDir string, overrides config.Settings) error {
	logging.SetOutput(io.Discard)
	defer logging.SetOutput(os.Stderr)

	p := tea.NewProgram(New(outDir, overrides), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
