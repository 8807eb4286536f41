package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cratekeeper/src/features/config"
	"cratekeeper/src/features/organizing"
	"cratekeeper/src/features/session"
	"cratekeeper/src/music"
)

// State identifies which screen the console shows.
type State int

const (
	StateMenu State = iota
	StateSetup
	StatePreview
	StateRunning
	StatePaused
	StateLog
	StateDone
)

type (
	progressMsg struct {
		done  int
		total int
		name  string
	}
	pausedMsg struct {
		failures int
		errs     []session.ErrorRecord
	}
	runDoneMsg struct {
		stats organizing.Stats
		err   error
	}
	previewMsg struct {
		source      string
		destination string
		err         error
	}
	logSavedMsg struct {
		path string
		err  error
	}
	tickMsg time.Time
)

const (
	inputSource = iota
	inputLibrary
	inputTemplate
	inputCount
)

// Model is the single bubbletea model behind every console screen.
type Model struct {
	state  State
	width  int
	height int
	flash  string

	inputs   []textinput.Model
	focusIdx int

	previewInput textinput.Model
	previewFrom  string
	previewTo    string
	previewErr   error

	spinner  spinner.Model
	progress progress.Model
	done     int
	total    int
	current  string
	started  time.Time

	failures   int
	errRecords []session.ErrorRecord
	showErrors bool
	cancelling bool

	stats  organizing.Stats
	runErr error

	config     *config.Manager
	configPath string
	log        *session.Log
	service    *organizing.Service
	decider    *uiDecider

	runCancel context.CancelFunc
}

func newModel(cfg *config.Manager, configPath string, log *session.Log, service *organizing.Service, decider *uiDecider) Model {
	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 512
		in.Width = 60
		inputs[i] = in
	}
	inputs[inputSource].Placeholder = "/path/to/incoming"
	inputs[inputLibrary].Placeholder = "/path/to/library"
	inputs[inputTemplate].Placeholder = "{ALBUMARTIST}/{ALBUM}/{TRACKNUMBER}. {TITLE}"

	preview := textinput.New()
	preview.Placeholder = "/path/to/incoming/track.flac"
	preview.CharLimit = 512
	preview.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		state:        StateMenu,
		inputs:       inputs,
		previewInput: preview,
		spinner:      sp,
		progress:     progress.New(progress.WithDefaultGradient()),
		config:       cfg,
		configPath:   configPath,
		log:          log,
		service:      service,
		decider:      decider,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 8
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case progressMsg:
		m.done = msg.done
		m.total = msg.total
		m.current = msg.name
		if msg.total > 0 {
			return m, m.progress.SetPercent(float64(msg.done) / float64(msg.total))
		}
		return m, nil

	case pausedMsg:
		m.state = StatePaused
		m.failures = msg.failures
		m.errRecords = msg.errs
		return m, nil

	case runDoneMsg:
		m.state = StateDone
		m.stats = msg.stats
		m.runErr = msg.err
		m.cancelling = false
		if m.runCancel != nil {
			m.runCancel()
			m.runCancel = nil
		}
		return m, nil

	case previewMsg:
		m.previewFrom = msg.source
		m.previewTo = msg.destination
		m.previewErr = msg.err
		return m, nil

	case logSavedMsg:
		if msg.err != nil {
			m.flash = fmt.Sprintf("Saving failed: %v", msg.err)
		} else {
			m.flash = fmt.Sprintf("Session log saved to %s", msg.path)
		}
		return m, nil

	case tickMsg:
		if m.state == StateRunning || m.state == StatePaused {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.runCancel != nil {
			m.runCancel()
		}
		return m, tea.Quit
	}

	switch m.state {
	case StateMenu:
		return m.handleMenuKey(msg)
	case StateSetup:
		return m.handleSetupKey(msg)
	case StatePreview:
		return m.handlePreviewKey(msg)
	case StateRunning:
		if msg.String() == "esc" && m.runCancel != nil {
			m.cancelling = true
			m.runCancel()
		}
		return m, nil
	case StatePaused:
		return m.handlePausedKey(msg)
	case StateLog:
		switch msg.String() {
		case "w":
			return m, m.saveLog()
		case "b", "esc", "q":
			m.state = StateMenu
			return m, nil
		}
		return m, nil
	case StateDone:
		switch msg.String() {
		case "enter", "b", "esc":
			m.state = StateMenu
			return m, nil
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m.startRun()
	case "d":
		cfg := *m.config.Get()
		cfg.Organize.DryRun = !cfg.Organize.DryRun
		m.config.Update(&cfg)
		if cfg.Organize.DryRun {
			m.flash = "Dry run enabled"
		} else {
			m.flash = "Dry run disabled"
		}
		return m, nil
	case "c":
		cfg := m.config.Get()
		m.inputs[inputSource].SetValue(cfg.SourcePath)
		m.inputs[inputLibrary].SetValue(cfg.LibraryPath)
		m.inputs[inputTemplate].SetValue(cfg.Template)
		for i := range m.inputs {
			m.inputs[i].Blur()
		}
		m.focusIdx = 0
		m.inputs[0].Focus()
		m.state = StateSetup
		return m, textinput.Blink
	case "p":
		m.previewInput.SetValue("")
		m.previewFrom, m.previewTo, m.previewErr = "", "", nil
		m.previewInput.Focus()
		m.state = StatePreview
		return m, textinput.Blink
	case "l":
		m.state = StateLog
		return m, nil
	case "s":
		return m, m.saveLog()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) startRun() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.runCancel = cancel
	m.state = StateRunning
	m.cancelling = false
	m.showErrors = false
	m.done, m.total, m.current = 0, 0, ""
	m.started = time.Now()
	m.flash = ""

	source := m.config.Get().SourcePath
	svc := m.service
	run := func() tea.Msg {
		stats, err := svc.Reorder(ctx, source)
		return runDoneMsg{stats: stats, err: err}
	}
	return m, tea.Batch(run, m.progress.SetPercent(0), tick())
}

func (m Model) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateMenu
		return m, nil
	case "tab", "down":
		return m.focusInput(m.focusIdx + 1)
	case "shift+tab", "up":
		return m.focusInput(m.focusIdx - 1)
	case "enter":
		if m.focusIdx < inputCount-1 {
			return m.focusInput(m.focusIdx + 1)
		}
		return m.applySetup()
	}
	var cmd tea.Cmd
	m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
	return m, cmd
}

func (m Model) focusInput(idx int) (tea.Model, tea.Cmd) {
	if idx < 0 {
		idx = inputCount - 1
	}
	if idx >= inputCount {
		idx = 0
	}
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = idx
	m.inputs[idx].Focus()
	return m, textinput.Blink
}

func (m Model) applySetup() (tea.Model, tea.Cmd) {
	template := strings.TrimSpace(m.inputs[inputTemplate].Value())
	if _, err := music.ParseTemplate(template); err != nil {
		m.flash = fmt.Sprintf("Template rejected: %v", err)
		return m, nil
	}

	cfg := *m.config.Get()
	cfg.SourcePath = strings.TrimSpace(m.inputs[inputSource].Value())
	cfg.LibraryPath = strings.TrimSpace(m.inputs[inputLibrary].Value())
	cfg.Template = template
	m.config.Update(&cfg)

	m.flash = "Settings applied"
	if m.configPath != "" {
		if err := m.config.Save(m.configPath); err != nil {
			m.flash = fmt.Sprintf("Settings applied but not saved: %v", err)
		} else {
			m.flash = "Settings saved"
		}
	}
	m.state = StateMenu
	return m, nil
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateMenu
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.previewInput.Value())
		if path == "" {
			return m, nil
		}
		svc := m.service
		return m, func() tea.Msg {
			destination, err := svc.Preview(context.Background(), path)
			return previewMsg{source: path, destination: destination, err: err}
		}
	}
	var cmd tea.Cmd
	m.previewInput, cmd = m.previewInput.Update(msg)
	return m, cmd
}

func (m Model) handlePausedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.reply(organizing.DecisionResume)
		m.state = StateRunning
		m.showErrors = false
		return m, nil
	case "n":
		m.reply(organizing.DecisionAbort)
		m.state = StateRunning
		m.cancelling = true
		return m, nil
	case "s":
		m.showErrors = !m.showErrors
		m.reply(organizing.DecisionShowErrors)
		return m, nil
	}
	return m, nil
}

// reply hands the operator's decision to the waiting pipeline. The
// channel is buffered so the UI loop never blocks here.
func (m Model) reply(d organizing.Decision) {
	select {
	case m.decider.replies <- d:
	default:
	}
}

func (m Model) saveLog() tea.Cmd {
	dir := m.config.Get().Session.SavePath
	log := m.log
	return func() tea.Msg {
		path, err := log.Save(dir)
		return logSavedMsg{path: path, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
