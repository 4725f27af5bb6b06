package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/claireharelson/ORF-finder/internal/report"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	// Strand styles
	forwardStyle = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	reverseStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// orfRecord is one ORF together with the sequence it was found on.
type orfRecord struct {
	SeqID string
	Index int
	report.Entry
}

type listItem struct {
	record orfRecord
}

func (i listItem) FilterValue() string {
	return i.record.SeqID
}

func (i listItem) Title() string {
	return fmt.Sprintf("%s ORF%d", i.record.SeqID, i.record.Index+1)
}

func (i listItem) Description() string {
	return fmt.Sprintf("Strand: %s    Frame: %+d    Pos: %d    Len: %d",
		strandStyle(i.record.Strand).Render(i.record.Strand), i.record.Frame, i.record.Pos, i.record.Length)
}

func strandStyle(s string) lipgloss.Style {
	if s == "-" {
		return reverseStyle
	}
	return forwardStyle
}

type mode int

const (
	modeCoding mode = iota
	modeStrand
	modeProtein
)

func (m mode) String() string {
	switch m {
	case modeCoding:
		return "Coding"
	case modeStrand:
		return "Original strand"
	case modeProtein:
		return "Protein"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	records       []orfRecord
	input         string
	minLength     int
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	selectedIndex int
}

func flatten(db *report.Database) []orfRecord {
	var out []orfRecord
	for _, s := range db.Sequences {
		for i, e := range s.ORFs {
			out = append(out, orfRecord{SeqID: s.ID, Index: i, Entry: e})
		}
	}
	return out
}

func initialModel(db *report.Database) model {
	records := flatten(db)

	// Create list items
	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = listItem{record: record}
	}

	// Create list
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("ORFs in %s", db.Input)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:        l,
		records:     records,
		input:       db.Input,
		minLength:   db.MinLength,
		currentMode: modeCoding,
	}
}

func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// left panel takes 1/3 of width
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "h":
			m.showHelp = !m.showHelp
			return m, nil
		case "tab":
			return m.cycleMode(), nil
		case "1":
			m.currentMode = modeCoding
			return m, nil
		case "2":
			m.currentMode = modeStrand
			return m, nil
		case "3":
			m.currentMode = modeProtein
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}

	left := containerStyle.
		Width(m.width/3 - 2).
		Height(m.height - 4).
		Render(m.list.View())

	main := lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderRightPanel())
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m model) renderRightPanel() string {
	panel := containerStyle.Width(m.width*2/3 - 2).Height(m.height - 4)
	if len(m.records) == 0 {
		return panel.Render("No ORFs available")
	}
	selected, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return panel.Render("No item selected")
	}
	return panel.Render(strings.Join(m.buildRightLines(selected.record), "\n"))
}

// buildRightLines renders the detail view of rec for the current mode,
// wrapped to the right panel width.
func (m model) buildRightLines(rec orfRecord) []string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s ORF%d", rec.SeqID, rec.Index+1)),
		labelStyle.Render("Strand: ") + strandStyle(rec.Strand).Render(rec.Strand) +
			labelStyle.Render(fmt.Sprintf("    Frame: %+d    Pos: %d-%d    Len: %d", rec.Frame, rec.Pos, rec.End, rec.Length)),
		"",
		lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(m.currentMode.String() + ":"),
	}

	width := m.width*2/3 - 6
	if width < 12 {
		width = 12
	}
	switch m.currentMode {
	case modeCoding:
		lines = append(lines, codonLines(rec.Coding, width)...)
	case modeStrand:
		lines = append(lines, codonLines(rec.Sequence, width)...)
	case modeProtein:
		if rec.Protein == "" {
			lines = append(lines, labelStyle.Render("No protein available"))
		}
		for i := 0; i < len(rec.Protein); i += width {
			end := i + width
			if end > len(rec.Protein) {
				end = len(rec.Protein)
			}
			lines = append(lines, rec.Protein[i:end])
		}
	}
	return lines
}

// codonLines splits seq into space-separated codons, as many per line as fit in width.
func codonLines(seq string, width int) []string {
	perLine := width / 4
	if perLine < 1 {
		perLine = 1
	}
	var (
		lines []string
		cur   []string
	)
	for i := 0; i < len(seq); i += 3 {
		end := i + 3
		if end > len(seq) {
			end = len(seq)
		}
		cur = append(cur, seq[i:end])
		if len(cur) == perLine {
			lines = append(lines, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d ORFs (min %d bp)", m.selectedIndex+1, len(m.records), m.minLength)
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode)
	rightInfo := "Press 'h' for help • 'q' to quit"

	spacing := m.width - len(leftInfo) - len(centerInfo) - len(rightInfo) - 6
	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		statusContent = leftInfo + strings.Repeat(" ", leftSpacing) + centerInfo + strings.Repeat(" ", spacing-leftSpacing) + rightInfo
	} else {
		// Fallback for narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}
	return statusBarStyle.Width(m.width).Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `ORF Browser - Help

Navigation:
  ↑/↓, j/k     Navigate list
  /            Filter by sequence id

View Modes:
  1            Coding sequence (5'->3' on its strand)
  2            Original-strand sequence
  3            Protein translation
  Tab          Next mode

General:
  h            Toggle this help
  q, Ctrl+C    Quit application

Current Mode: ` + m.currentMode.String() + `
Total ORFs: ` + fmt.Sprintf("%d", len(m.records)) + `
`
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Render(helpContent)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func main() {
	dbPath := flag.String("db", "orfs.json", "JSON results written by orffinder -format json")
	flag.Parse()

	f, err := os.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	db, err := report.ReadJSON(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: decode %s: %v\n", *dbPath, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(db), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
