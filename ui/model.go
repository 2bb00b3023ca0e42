package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"modelbench/domain/core"
	"modelbench/domain/training"
	"modelbench/domain/view"
	"modelbench/internal"
)

const maxAlerts = 4

// Actions is what the screen asks the controller to do. Every call may block.
type Actions interface {
	Upload(ctx context.Context, path string) error
	SelectTarget(column string)
	SelectTask(task training.TaskType)
	Train(ctx context.Context) (*training.Outcome, error)
	Download(ctx context.Context, name string) (string, error)
	DownloadAll(ctx context.Context) ([]string, error)
}

type focus int

const (
	focusFile focus = iota
	focusTarget
	focusTask
	focusTrain
	focusDownloads
	focusCount
)

func (f focus) String() string {
	switch f {
	case focusFile:
		return "file"
	case focusTarget:
		return "target"
	case focusTask:
		return "task"
	case focusTrain:
		return "train"
	default:
		return "downloads"
	}
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Apply  key.Binding
	All    key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Apply, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down},
		{k.Toggle, k.Apply, k.All},
		{k.Help, k.Quit},
	}
}

func defaultKeys() keyMap {
	return keyMap{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "previous")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next")),
		Toggle: key.NewBinding(key.WithKeys(" ", "left", "right"), key.WithHelp("space", "toggle task")),
		Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "upload/train/download")),
		All:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "download all")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

type styles struct {
	title      lipgloss.Style
	panel      lipgloss.Style
	panelFocus lipgloss.Style
	panelTitle lipgloss.Style
	label      lipgloss.Style
	accent     lipgloss.Style
	dim        lipgloss.Style
	ok         lipgloss.Style
	warn       lipgloss.Style
	selected   lipgloss.Style
}

func defaultStyles() styles {
	brand := lipgloss.Color("63")
	border := lipgloss.Color("240")
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(brand),
		panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		panelFocus: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(brand).Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Bold(true).Foreground(brand),
		label:      lipgloss.NewStyle().Bold(true),
		accent:     lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		ok:         lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warn:       lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		selected:   lipgloss.NewStyle().Bold(true).Foreground(brand),
	}
}

// actionDoneMsg reports a finished controller call; failures were already alerted
type actionDoneMsg struct {
	action string
	err    error
}

type animTickMsg struct{}

func animTickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(time.Time) tea.Msg { return animTickMsg{} })
}

// Model is the bubbletea model of the whole screen
type Model struct {
	actions Actions
	logger  *internal.Logger
	keys    keyMap
	styles  styles
	help    help.Model
	spin    spinner.Model
	input   textinput.Model
	bar     progress.Model

	focus focus
	width int

	uploading     bool
	targetOptions []string
	targetIdx     int
	task          training.TaskType
	configEnabled bool

	summary      *view.AnalysisSummary
	distribution *view.Distribution

	progressShown  bool
	progressTarget float64
	progressValue  float64
	progressVel    float64
	progressStatus string
	progressFailed bool
	spring         harmonica.Spring
	animating      bool

	training   bool
	trainLabel string

	comparison     *view.BarChart
	history        *view.LineChart
	placeholder    string
	downloadsShown bool
	downloads      []view.DownloadItem
	downloadBusy   map[string]bool
	downloadLabel  map[string]string
	cursor         int

	status   string
	statusAt core.Timestamp
	alerts   []string
}

// NewModel builds the initial screen driving actions
func NewModel(actions Actions, logger *internal.Logger) Model {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))

	in := textinput.New()
	in.Placeholder = "path/to/data.csv"
	in.Prompt = "file> "
	in.CharLimit = 512
	in.Focus()

	return Model{
		actions:       actions,
		logger:        logger.With("tui"),
		keys:          defaultKeys(),
		styles:        defaultStyles(),
		help:          help.New(),
		spin:          sp,
		input:         in,
		bar:           progress.New(progress.WithDefaultGradient()),
		task:          training.Classification,
		trainLabel:    "Train Models",
		spring:        harmonica.NewSpring(harmonica.FPS(30), 6.0, 1.0),
		downloadBusy:  make(map[string]bool),
		downloadLabel: make(map[string]string),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case animTickMsg:
		m.progressValue, m.progressVel = m.spring.Update(m.progressValue, m.progressVel, m.progressTarget)
		if math.Abs(m.progressValue-m.progressTarget) < 0.05 && math.Abs(m.progressVel) < 0.05 {
			m.progressValue, m.progressVel = m.progressTarget, 0
			m.animating = false
			return m, nil
		}
		return m, animTickCmd()

	case actionDoneMsg:
		if msg.err != nil {
			m.logger.Err(msg.err, "%s failed", msg.action)
		}
		return m, nil
	}

	if m.applySurface(msg) {
		cmd := m.animate()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applySurface folds a page message into the model and reports whether it was one
func (m *Model) applySurface(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case alertMsg:
		m.alerts = append(m.alerts, msg.text)
		if len(m.alerts) > maxAlerts {
			m.alerts = m.alerts[len(m.alerts)-maxAlerts:]
		}
	case uploadingMsg:
		m.uploading = msg.busy
	case targetOptionsMsg:
		m.targetOptions = msg.options
		m.targetIdx = 0
	case configEnabledMsg:
		m.configEnabled = true
	case summaryMsg:
		s := msg.summary
		m.summary = &s
	case distributionMsg:
		d := msg.dist
		m.distribution = &d
	case progressResetMsg:
		m.progressShown = true
		m.progressFailed = false
		m.progressTarget, m.progressValue, m.progressVel = 0, 0, 0
		m.progressStatus = ""
	case progressMsg:
		m.progressShown = true
		m.progressTarget = msg.percent
		m.progressStatus = msg.status
	case progressFailedMsg:
		m.progressFailed = true
		m.progressStatus = msg.status
	case trainingMsg:
		m.training = msg.busy
		m.trainLabel = msg.label
	case comparisonMsg:
		c := msg.chart
		m.comparison = &c
	case historyMsg:
		h := msg.chart
		m.history = &h
		m.placeholder = ""
	case placeholderMsg:
		m.history = nil
		m.placeholder = msg.text
	case revealDownloadsMsg:
		m.downloadsShown = true
	case downloadsMsg:
		m.downloads = msg.items
		m.downloadBusy = make(map[string]bool)
		m.downloadLabel = make(map[string]string)
		m.cursor = 0
	case downloadStateMsg:
		m.downloadBusy[msg.name] = msg.busy
		m.downloadLabel[msg.name] = msg.label
	case statusMsg:
		m.status = msg.text
		m.statusAt = msg.at
	default:
		return false
	}
	return true
}

// animate starts the spring when the bar is behind its target
func (m *Model) animate() tea.Cmd {
	if m.animating || m.progressValue == m.progressTarget {
		return nil
	}
	m.animating = true
	return animTickCmd()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" || (m.focus != focusFile && key.Matches(msg, m.keys.Quit)) {
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	}

	switch m.focus {
	case focusFile:
		if key.Matches(msg, m.keys.Apply) {
			return m, m.uploadCmd()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case focusTarget:
		if len(m.targetOptions) == 0 {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			m.targetIdx = (m.targetIdx + len(m.targetOptions) - 1) % len(m.targetOptions)
		case key.Matches(msg, m.keys.Down):
			m.targetIdx = (m.targetIdx + 1) % len(m.targetOptions)
		default:
			return m, nil
		}
		return m, m.selectTargetCmd(m.targetOptions[m.targetIdx])

	case focusTask:
		if key.Matches(msg, m.keys.Toggle, m.keys.Up, m.keys.Down) {
			if m.task.IsClassification() {
				m.task = training.Regression
			} else {
				m.task = training.Classification
			}
			return m, m.selectTaskCmd(m.task)
		}

	case focusTrain:
		if key.Matches(msg, m.keys.Apply) && m.configEnabled && !m.training {
			return m, m.trainCmd()
		}

	case focusDownloads:
		switch {
		case key.Matches(msg, m.keys.Up) && m.cursor > 0:
			m.cursor--
		case key.Matches(msg, m.keys.Down) && m.cursor < len(m.downloads)-1:
			m.cursor++
		case key.Matches(msg, m.keys.Apply) && m.cursor < len(m.downloads):
			name := m.downloads[m.cursor].Name
			if !m.downloadBusy[name] {
				return m, m.downloadCmd(name)
			}
		case key.Matches(msg, m.keys.All) && len(m.downloads) > 0:
			return m, m.downloadAllCmd()
		}
	}

	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusFile {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

func (m Model) uploadCmd() tea.Cmd {
	path := strings.TrimSpace(m.input.Value())
	if m.uploading {
		return nil
	}
	return func() tea.Msg {
		return actionDoneMsg{action: "upload", err: m.actions.Upload(context.Background(), path)}
	}
}

func (m Model) selectTargetCmd(column string) tea.Cmd {
	return func() tea.Msg {
		m.actions.SelectTarget(column)
		return actionDoneMsg{action: "select target"}
	}
}

func (m Model) selectTaskCmd(task training.TaskType) tea.Cmd {
	return func() tea.Msg {
		m.actions.SelectTask(task)
		return actionDoneMsg{action: "select task"}
	}
}

func (m Model) trainCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.actions.Train(context.Background())
		return actionDoneMsg{action: "train", err: err}
	}
}

func (m Model) downloadCmd(name string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.actions.Download(context.Background(), name)
		return actionDoneMsg{action: "download " + name, err: err}
	}
}

func (m Model) downloadAllCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.actions.DownloadAll(context.Background())
		return actionDoneMsg{action: "download all", err: err}
	}
}

func (m Model) View() string {
	st := m.styles
	var sections []string
	sections = append(sections, st.title.Render("modelbench"))

	sections = append(sections, m.panel(focusFile, "Dataset", m.fileView()))
	sections = append(sections, m.panel(focusTarget, "Configuration", m.configView()))

	if m.summary != nil {
		body := renderSummary(*m.summary, st)
		if m.distribution != nil {
			body += "\n" + renderDistribution(*m.distribution, st)
		}
		sections = append(sections, st.panel.Render(body))
	}

	if m.progressShown {
		sections = append(sections, st.panel.Render(m.progressView()))
	}

	if m.comparison != nil || m.history != nil || m.placeholder != "" {
		var body []string
		if m.comparison != nil {
			body = append(body, renderComparison(*m.comparison, st))
		}
		if m.history != nil {
			body = append(body, renderHistory(*m.history, st))
		} else if m.placeholder != "" {
			body = append(body, st.dim.Render(m.placeholder))
		}
		sections = append(sections, st.panel.Render(strings.Join(body, "\n")))
	}

	if m.downloadsShown {
		sections = append(sections, m.panel(focusDownloads, "Download Models", m.downloadsView()))
	}

	if m.status != "" {
		sections = append(sections, fmt.Sprintf("%s %s", m.status, st.dim.Render("(last updated "+m.statusAt.Clock()+")")))
	}
	for _, a := range m.alerts {
		sections = append(sections, st.warn.Render("! ")+a)
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) panel(f focus, title, body string) string {
	style := m.styles.panel
	if m.focus == f || (f == focusTarget && (m.focus == focusTask || m.focus == focusTrain)) {
		style = m.styles.panelFocus
	}
	return style.Render(m.styles.panelTitle.Render(title) + "\n" + body)
}

func (m Model) fileView() string {
	line := m.input.View()
	if m.uploading {
		line += " " + m.spin.View() + " Uploading..."
	}
	return line
}

func (m Model) configView() string {
	st := m.styles
	if !m.configEnabled {
		return st.dim.Render("upload a dataset to configure training")
	}

	target := "Select target column"
	if m.targetIdx < len(m.targetOptions) && m.targetOptions[m.targetIdx] != "" {
		target = m.targetOptions[m.targetIdx]
	}
	marker := func(f focus) string {
		if m.focus == f {
			return st.selected.Render("> ")
		}
		return "  "
	}

	train := "[ " + m.trainLabel + " ]"
	if m.training {
		train = m.spin.View() + " " + train
	}
	return strings.Join([]string{
		marker(focusTarget) + st.label.Render("Target: ") + target,
		marker(focusTask) + st.label.Render("Task:   ") + string(m.task),
		marker(focusTrain) + train,
	}, "\n")
}

func (m Model) progressView() string {
	st := m.styles
	status := m.progressStatus
	if m.progressFailed {
		status = st.warn.Render(status)
	} else if m.progressTarget >= 100 {
		status = st.ok.Render(status)
	}
	return m.bar.ViewAs(math.Min(math.Max(m.progressValue, 0), 100)/100) + "\n" + status
}

func (m Model) downloadsView() string {
	st := m.styles
	lines := make([]string, len(m.downloads))
	for i, item := range m.downloads {
		label := item.Label
		if l, ok := m.downloadLabel[item.Name]; ok {
			label = l
		}
		if m.downloadBusy[item.Name] {
			label = m.spin.View() + " " + label
		}
		prefix := "  "
		if m.focus == focusDownloads && i == m.cursor {
			prefix = st.selected.Render("> ")
		}
		lines[i] = fmt.Sprintf("%s%s  %s  %s", prefix, st.label.Render(item.Name), label, st.dim.Render(item.Filename))
	}
	return strings.Join(lines, "\n")
}
