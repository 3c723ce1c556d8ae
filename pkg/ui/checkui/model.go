package checkui

import (
	"context"
	"fmt"
	"strings"

	"factlens/pkg/analysis"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeInteractive mode = iota
	modeOneShot
)

type entryRole string

const (
	roleClaim   entryRole = "claim"
	roleVerdict entryRole = "verdict"
	roleError   entryRole = "error"
)

type logEntry struct {
	role    entryRole
	content string
}

type analysisResultMsg struct {
	result analysis.Result
}

type model struct {
	ctx          context.Context
	analyzeFn    AnalyzeFunc
	mode         mode
	oneShotInput string
	langLabel    string
	modelName    string

	theme     theme
	spinner   spinner.Model
	input     textinput.Model
	viewport  viewport.Model
	entries   []logEntry
	width     int
	height    int
	isReady   bool
	isLoading bool
	lastErr   string
	followLog bool
}

func newModel(ctx context.Context, analyzeFn AnalyzeFunc, runMode mode, claim string, info RuntimeInfo) *model {
	spin := spinner.New()
	spin.Spinner = spinner.Points
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "Paste a claim, message, or link to verify..."
	in.Focus()
	in.CharLimit = 0

	vp := viewport.New(80, 12)

	return &model{
		ctx:          ctx,
		analyzeFn:    analyzeFn,
		mode:         runMode,
		oneShotInput: strings.TrimSpace(claim),
		langLabel:    info.LangLabel,
		modelName:    info.Model,
		theme:        defaultTheme(),
		spinner:      spin,
		input:        in,
		viewport:     vp,
		width:        100,
		height:       28,
		followLog:    true,
	}
}

func (m *model) Init() tea.Cmd {
	if m.mode == modeOneShot && m.oneShotInput != "" {
		m.entries = append(m.entries, logEntry{role: roleClaim, content: m.oneShotInput})
		m.isLoading = true
		m.refreshViewport(false)
		return tea.Batch(m.spinner.Tick, analyzeCmd(m.ctx, m.analyzeFn, m.oneShotInput))
	}

	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport(false)
		m.isReady = true
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}

		if m.mode == modeInteractive {
			if handled := m.handleViewportKey(typed); handled {
				return m, nil
			}
		}

		if m.mode == modeOneShot {
			return m, nil
		}

		if typed.String() == "enter" {
			if m.isLoading {
				return m, nil
			}

			claim := strings.TrimSpace(m.input.Value())
			if claim == "" {
				return m, nil
			}
			if isExitCommand(claim) {
				return m, tea.Quit
			}

			m.lastErr = ""
			m.entries = append(m.entries, logEntry{role: roleClaim, content: claim})
			m.input.SetValue("")
			m.isLoading = true
			m.followLog = true
			m.refreshViewport(true)
			return m, tea.Batch(m.spinner.Tick, analyzeCmd(m.ctx, m.analyzeFn, claim))
		}
	}

	if m.mode == modeInteractive {
		m.input, cmd = m.input.Update(msg)
	}

	switch typed := msg.(type) {
	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case analysisResultMsg:
		m.isLoading = false
		if typed.result.Failed() {
			m.lastErr = typed.result.ErrorMessage
			m.entries = append(m.entries, logEntry{role: roleError, content: typed.result.ErrorMessage})
		} else {
			m.lastErr = ""
			m.entries = append(m.entries, logEntry{role: roleVerdict, content: typed.result.Text})
		}
		m.refreshViewport(false)
		if m.mode == modeOneShot {
			return m, tea.Quit
		}
	}

	return m, cmd
}

func (m *model) View() string {
	if !m.isReady {
		m.resizeComponents()
		m.refreshViewport(false)
	}
	if m.mode == modeOneShot {
		return m.oneShotView()
	}

	header := m.theme.header.Width(m.width - 2).Render("🔎 FactLens")
	meta := m.theme.headerMeta.Render(fmt.Sprintf(
		"lang:%s · model:%s · claims checked:%d",
		displayOrNA(m.langLabel),
		displayOrNA(m.modelName),
		claimCount(m.entries),
	))
	line := m.theme.divider.Width(m.width - 2).Render(strings.Repeat("─", max(8, m.width-2)))

	status := m.theme.status.Render("Enter check  ·  PgUp/PgDn scroll  ·  End jump latest  ·  Ctrl+C/Esc quit")
	if m.isLoading {
		status = m.theme.statusBusy.Render(fmt.Sprintf("%s checking claim...", m.spinner.View()))
	}
	if m.lastErr != "" {
		status = m.theme.statusErr.Render("last check failed - try again")
	}

	parts := []string{header, meta, line, m.theme.viewport.Width(m.width - 2).Render(m.viewport.View()), status}
	parts = append(parts,
		m.theme.inputLabel.Render("Claim")+" "+m.theme.hint.Render("(type /exit, quit, or :q)"),
		m.theme.input.Width(m.width-2).Render(m.input.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) resizeComponents() {
	w := m.width - 6
	if w < 50 {
		w = 50
	}
	h := m.height - 10
	if m.mode == modeOneShot {
		h = m.height - 6
	}
	if h < 8 {
		h = 8
	}

	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 2
}

func (m *model) refreshViewport(forceBottom bool) {
	previousOffset := m.viewport.YOffset
	var sections []string
	for _, item := range m.entries {
		switch item.role {
		case roleClaim:
			sections = append(sections, m.renderCard(
				m.theme.claimTitle.Render("CLAIM"),
				m.theme.claimBox.Width(m.viewport.Width).Render(strings.TrimSpace(item.content)),
			))
		case roleVerdict:
			sections = append(sections, m.renderCard(
				m.theme.verdictTitle.Render("🔎 VERDICT"),
				m.theme.verdictBox.Width(m.viewport.Width).Render(strings.TrimSpace(item.content)),
			))
		case roleError:
			sections = append(sections, m.renderCard(
				m.theme.errorTitle.Render("ERROR"),
				m.theme.errorBox.Width(m.viewport.Width).Render(strings.TrimSpace(item.content)),
			))
		}
	}

	m.viewport.SetContent(strings.Join(sections, "\n\n"))
	if m.followLog || forceBottom {
		m.viewport.GotoBottom()
		m.followLog = true
		return
	}

	maxOffset := m.viewport.TotalLineCount() - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if previousOffset > maxOffset {
		previousOffset = maxOffset
	}
	m.viewport.SetYOffset(previousOffset)
}

func (m *model) renderCard(title string, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (m *model) oneShotView() string {
	contentWidth := max(40, m.width-6)
	parts := []string{m.renderCard(
		m.theme.claimTitle.Render("CLAIM"),
		m.theme.claimBox.Width(contentWidth).Render(strings.TrimSpace(m.oneShotInput)),
	)}

	if m.isLoading {
		parts = append(parts, m.theme.statusBusy.Render(fmt.Sprintf("%s checking claim...", m.spinner.View())))
		return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
	}

	if m.lastErr != "" {
		parts = append(parts,
			m.renderCard(
				m.theme.errorTitle.Render("ERROR"),
				m.theme.errorBox.Width(contentWidth).Render(strings.TrimSpace(m.lastErr)),
			),
		)
		return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n\n"
	}

	verdict := ""
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].role == roleVerdict {
			verdict = m.entries[i].content
			break
		}
	}

	parts = append(parts,
		m.renderCard(
			m.theme.verdictTitle.Render("🔎 VERDICT"),
			m.theme.verdictBox.Width(contentWidth).Render(strings.TrimSpace(verdict)),
		),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n\n"
}

func (m *model) handleViewportKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "pgup", "ctrl+b":
		m.viewport.PageUp()
		m.followLog = false
		return true
	case "pgdown", "ctrl+f":
		m.viewport.PageDown()
		if m.viewport.AtBottom() {
			m.followLog = true
		}
		return true
	case "home":
		m.viewport.GotoTop()
		m.followLog = false
		return true
	case "end":
		m.viewport.GotoBottom()
		m.followLog = true
		return true
	default:
		return false
	}
}

func analyzeCmd(ctx context.Context, analyzeFn AnalyzeFunc, claim string) tea.Cmd {
	return func() tea.Msg {
		return analysisResultMsg{result: analyzeFn(ctx, claim)}
	}
}

func displayOrNA(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "n/a"
	}

	return trimmed
}

func claimCount(entries []logEntry) int {
	count := 0
	for _, entry := range entries {
		if entry.role == roleClaim {
			count++
		}
	}

	return count
}

func isExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "/exit", "quit", ":q":
		return true
	default:
		return false
	}
}

func max(a int, b int) int {
	if a > b {
		return a
	}

	return b
}
