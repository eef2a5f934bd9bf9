package tui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi-table/sequencer"
	"midi-table/theme"
)

const (
	defaultRows  = 16
	stripWidth   = 64
	reservedRows = 8 // header, strip, help and spacing
)

// Model previews a converted file: a track list, a timeline strip and the
// event rows of the focused track
type Model struct {
	Tracks   []sequencer.Track
	Base     string
	Theme    *theme.Theme
	selected int
	offset   int // first visible event row
	rows     int
	quitting bool
}

func NewModel(base string, tracks []sequencer.Track, th *theme.Theme) Model {
	return Model{
		Tracks: tracks,
		Base:   base,
		Theme:  th,
		rows:   defaultRows,
	}
}

// Run shows the preview on out until the user quits
func Run(m Model, out io.Writer) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(out)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m = m.focus(m.selected - 1)

		case "down", "j", "tab":
			m = m.focus(m.selected + 1)

		case "pgdown", "f", " ":
			m = m.scroll(m.rows)

		case "pgup", "b":
			m = m.scroll(-m.rows)

		case "g", "home":
			m.offset = 0

		case "G", "end":
			m = m.scroll(len(m.current().Events))
		}

	case tea.WindowSizeMsg:
		m.rows = max(msg.Height-reservedRows-len(m.Tracks), 4)
		m = m.scroll(0)
	}

	return m, nil
}

func (m Model) focus(i int) Model {
	if len(m.Tracks) == 0 {
		return m
	}
	m.selected = (i + len(m.Tracks)) % len(m.Tracks)
	m.offset = 0
	return m
}

func (m Model) scroll(delta int) Model {
	n := len(m.current().Events)
	m.offset = min(max(m.offset+delta, 0), max(n-m.rows, 0))
	return m
}

func (m Model) current() *sequencer.Track {
	if len(m.Tracks) == 0 {
		return &sequencer.Track{}
	}
	return &m.Tracks[m.selected]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	selStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("%s  %d tracks", m.Base, len(m.Tracks))))
	out.WriteString("\n\n")

	if len(m.Tracks) == 0 {
		out.WriteString(dimStyle.Render("no track produced any events"))
		out.WriteString("\n\n")
		out.WriteString(dimStyle.Render("q:quit"))
		return out.String()
	}

	for i := range m.Tracks {
		t := &m.Tracks[i]
		line := fmt.Sprintf("%s_%-20s %5d events %5d notes %8.0fms  src#%d",
			m.Base, t.Name, len(t.Events), t.Notes(), t.Length(), t.Index)
		if i == m.selected {
			out.WriteString(selStyle.Render(string(m.Theme.Symbols.Selected) + " " + line))
		} else {
			out.WriteString(fgStyle.Render("  " + line))
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(m.strip(m.current()))
	out.WriteString("\n\n")
	out.WriteString(m.eventRows(m.current()))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("j/k:track  f/b:page  g/G:top/end  q:quit"))

	return out.String()
}

// strip draws the track as a fixed-width timeline, one cell per time slice
// coloured by the pitch sounding at its midpoint
func (m Model) strip(t *sequencer.Track) string {
	length := t.Length()
	if length <= 0 {
		return ""
	}

	var out strings.Builder
	for cell := 0; cell < stripWidth; cell++ {
		at := (float64(cell) + 0.5) * length / stripWidth
		ev, ok := eventAt(t, at)
		switch {
		case !ok:
			out.WriteRune(m.Theme.Symbols.Gap)
		case ev.IsRest():
			out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render(string(m.Theme.Symbols.Rest)))
		default:
			out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Pitch(ev.Freq)).Render(string(m.Theme.Symbols.Note)))
		}
	}
	return out.String()
}

// eventAt finds the event covering time at (ms) in engine playback order
func eventAt(t *sequencer.Track, at float64) (sequencer.Event, bool) {
	var clock float64
	for _, ev := range t.Events {
		start := ev.Start
		if t.Mode != sequencer.Absolute {
			start = clock
			clock += ev.Duration
		}
		if at >= start && at < start+ev.Duration {
			return ev, true
		}
	}
	return sequencer.Event{}, false
}

func (m Model) eventRows(t *sequencer.Track) string {
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var out strings.Builder
	end := min(m.offset+m.rows, len(t.Events))
	for i := m.offset; i < end; i++ {
		ev := t.Events[i]
		var row string
		if t.Mode == sequencer.Absolute {
			row = fmt.Sprintf("%5d  {%d, %d, %d}", i, int64(ev.Freq), int64(ev.Start), int64(ev.Duration))
		} else {
			row = fmt.Sprintf("%5d  {%d, %d}", i, int64(ev.Freq), int64(ev.Duration))
		}
		if ev.IsRest() {
			out.WriteString(dimStyle.Render(row + "  rest"))
		} else {
			out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Pitch(ev.Freq)).Render(row))
		}
		out.WriteString("\n")
	}
	if end < len(t.Events) {
		out.WriteString(warnStyle.Render(fmt.Sprintf("  ... %d more", len(t.Events)-end)))
		out.WriteString("\n")
	}
	return out.String()
}
