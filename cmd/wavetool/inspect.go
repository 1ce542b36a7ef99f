package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/waveform"
	"github.com/wippyai/waveform/tr0"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// previewRows bounds the rows drawn per chunk.
const previewRows = 20

func (a *app) inspectCommand() *cobra.Command {
	var chunkSize int
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Page through a waveform file interactively",
		Long: `Page through a waveform file one chunk at a time. Press s to choose
which signals are shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newInspectModel(args[0], a.readOptions(), chunkSize)
			defer m.close()
			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 1000, "Rows per page")
	return cmd
}

type inspectState int

const (
	stateBrowse inspectState = iota
	stateEditSignals
)

type inspectModel struct {
	err      error
	cursor   *tr0.Cursor
	chunk    *waveform.DataChunk
	filename string
	opts     []tr0.Option
	pageRows int
	signals  []string
	input    textinput.Model
	state    inspectState
	atEnd    bool
}

type openedMsg struct {
	err    error
	cursor *tr0.Cursor
}

type chunkMsg struct {
	err   error
	chunk *waveform.DataChunk
}

func newInspectModel(filename string, opts []tr0.Option, pageRows int) *inspectModel {
	return &inspectModel{
		filename: filename,
		opts:     opts,
		pageRows: pageRows,
		state:    stateBrowse,
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return m.open
}

// open maps the file with the current projection.
func (m *inspectModel) open() tea.Msg {
	opts := append(append([]tr0.Option(nil), m.opts...), tr0.WithSignals(m.signals...))
	c, err := tr0.OpenStream(m.filename, opts...)
	return openedMsg{cursor: c, err: err}
}

func (m *inspectModel) next() tea.Msg {
	chunk, err := m.cursor.Advance(m.pageRows)
	return chunkMsg{chunk: chunk, err: err}
}

func (m *inspectModel) close() {
	if m.cursor != nil {
		m.cursor.Close()
		m.cursor = nil
	}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateEditSignals {
			return m.updateSignals(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.close()
			return m, tea.Quit

		case "n", "right", " ":
			if m.cursor != nil && !m.atEnd && m.err == nil {
				return m, m.next
			}

		case "r":
			if m.cursor != nil {
				m.cursor.Reset()
				m.atEnd = false
				m.err = nil
				return m, m.next
			}

		case "s":
			ti := textinput.New()
			ti.Placeholder = "v(out), i(vdd)"
			ti.Prompt = "signals: "
			ti.Width = 60
			ti.SetValue(strings.Join(m.signals, ", "))
			ti.Focus()
			m.input = ti
			m.state = stateEditSignals
			return m, textinput.Blink
		}

	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.close()
		m.cursor = msg.cursor
		m.atEnd = false
		m.err = nil
		return m, m.next

	case chunkMsg:
		switch {
		case errors.Is(msg.err, io.EOF):
			m.atEnd = true
		case msg.err != nil:
			m.err = msg.err
		default:
			m.chunk = msg.chunk
		}
	}
	return m, nil
}

func (m *inspectModel) updateSignals(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.close()
		return m, tea.Quit
	case "esc":
		m.state = stateBrowse
		return m, nil
	case "enter":
		m.signals = parseSignals(m.input.Value())
		m.state = stateBrowse
		m.chunk = nil
		return m, m.open
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func parseSignals(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wavetool inspect"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.cursor == nil {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\nPress q to quit.")
			return b.String()
		}
		b.WriteString("Opening file...")
		return b.String()
	}

	meta := m.cursor.Metadata()
	b.WriteString(infoStyle.Render(fmt.Sprintf("%s  %s  %d variables  %d tables",
		meta.Analysis, meta.Version.Token(), len(meta.Variables), meta.SweepCount)))
	b.WriteString("\n")

	if m.state == stateEditSignals {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("comma separated, empty for all • enter apply • esc cancel"))
		return b.String()
	}

	if m.chunk != nil {
		b.WriteString(renderChunk(m.chunk, meta))
	}
	switch {
	case m.err != nil:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.atEnd:
		b.WriteString("\n")
		b.WriteString(infoStyle.Render("end of file"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("n next • r rewind • s signals • q quit"))
	return b.String()
}

func renderChunk(c *waveform.DataChunk, meta *waveform.Metadata) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nchunk %d  table %d  %d rows  %s [%g, %g]", c.Index, c.Table, c.Len(), meta.ScaleName, c.Start, c.End)
	if c.SweepValue != nil {
		fmt.Fprintf(&b, "  %s = %g", meta.SweepName, *c.SweepValue)
	}
	b.WriteString("\n\n")

	names := c.Names()
	cells := make([]string, len(names))
	for i, name := range names {
		cells[i] = fmt.Sprintf("%-22s", name)
	}
	b.WriteString(columnStyle.Render(strings.Join(cells, " ")))
	b.WriteString("\n")

	rows := min(c.Len(), previewRows)
	for r := 0; r < rows; r++ {
		for i := range names {
			v, _ := c.Column(i)
			cells[i] = fmt.Sprintf("%-22s", formatSample(v, r))
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	if c.Len() > rows {
		b.WriteString(helpStyle.Render(fmt.Sprintf("... %d more rows", c.Len()-rows)))
		b.WriteString("\n")
	}
	return b.String()
}

func formatSample(v waveform.VectorData, i int) string {
	if v.IsComplex() {
		x := v.Complex[i]
		return fmt.Sprintf("%.5g%+.5gj", real(x), imag(x))
	}
	return fmt.Sprintf("%.6g", v.Real[i])
}
