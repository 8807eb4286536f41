package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"cratekeeper/src/features/session"
	"cratekeeper/src/music"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	pausedBox    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("cratekeeper"))
	b.WriteString(subtleStyle.Render("  music library organizer"))
	b.WriteString("\n\n")

	switch m.state {
	case StateMenu:
		b.WriteString(m.menuView())
	case StateSetup:
		b.WriteString(m.setupView())
	case StatePreview:
		b.WriteString(m.previewView())
	case StateRunning:
		b.WriteString(m.runningView())
	case StatePaused:
		b.WriteString(m.pausedView())
	case StateLog:
		b.WriteString(m.logView())
	case StateDone:
		b.WriteString(m.doneView())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpText()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) menuView() string {
	cfg := m.config.Get()
	var b strings.Builder

	b.WriteString(labelStyle.Render("source   ") + cfg.SourcePath + "\n")
	b.WriteString(labelStyle.Render("library  ") + cfg.LibraryPath + "\n")
	b.WriteString(labelStyle.Render("template ") + cfg.Template + "\n")
	mode := "off"
	if cfg.Organize.DryRun {
		mode = warnStyle.Render("on")
	}
	b.WriteString(labelStyle.Render("dry run  ") + mode + "\n\n")

	entries := []struct{ key, label string }{
		{"r", "start a run"},
		{"d", "toggle dry run"},
		{"c", "configure paths and template"},
		{"p", "preview a file"},
		{"l", "view session log"},
		{"s", "save session log"},
		{"q", "quit"},
	}
	for _, e := range entries {
		b.WriteString("  " + keyStyle.Render(e.key) + "  " + e.label + "\n")
	}

	if m.flash != "" {
		b.WriteString("\n" + okStyle.Render(m.flash) + "\n")
	}
	return b.String()
}

func (m Model) setupView() string {
	var b strings.Builder
	labels := []string{"Source folder", "Library folder", "Filename template"}
	for i, in := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]) + "\n")
		b.WriteString(in.View() + "\n\n")
	}
	if m.flash != "" {
		b.WriteString(errorStyle.Render(m.flash) + "\n")
	}
	return b.String()
}

func (m Model) previewView() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("File to preview") + "\n")
	b.WriteString(m.previewInput.View() + "\n\n")

	switch {
	case m.previewErr != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Preview failed: %v", m.previewErr)) + "\n")
	case m.previewTo != "":
		b.WriteString(subtleStyle.Render(m.previewFrom) + "\n")
		b.WriteString("  " + okStyle.Render("→ "+m.previewTo) + "\n")
	}
	return b.String()
}

func (m Model) runningView() string {
	var b strings.Builder
	verb := "Organizing"
	if m.cancelling {
		verb = "Stopping"
	}
	b.WriteString(m.spinner.View() + warnStyle.Render(verb) + "\n\n")
	b.WriteString(m.progress.View() + "\n\n")
	b.WriteString(fmt.Sprintf("%d of %d files", m.done, m.total))
	if !m.started.IsZero() {
		elapsed := int(time.Since(m.started).Seconds())
		b.WriteString(subtleStyle.Render("  elapsed " + music.HumanDuration(elapsed)))
	}
	b.WriteString("\n")
	if m.current != "" {
		b.WriteString(subtleStyle.Render(m.current) + "\n")
	}
	b.WriteString("\n" + m.recentEvents(8))
	return b.String()
}

func (m Model) pausedView() string {
	var b strings.Builder
	notice := fmt.Sprintf("Run paused: %d failures so far", m.failures)
	b.WriteString(pausedBox.Render(warnStyle.Render(notice)+"\n"+
		"Resume the run, abort it, or inspect the errors first.") + "\n\n")

	if m.showErrors {
		b.WriteString(renderErrors(m.errRecords, 10))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%d of %d files", m.done, m.total))
	b.WriteString("\n")
	return b.String()
}

func (m Model) logView() string {
	runs, errs := m.log.Snapshot()
	var b strings.Builder

	b.WriteString(labelStyle.Render(fmt.Sprintf("Run log (%d entries)", len(runs))) + "\n")
	start := 0
	if len(runs) > 15 {
		start = len(runs) - 15
		b.WriteString(subtleStyle.Render(fmt.Sprintf("… %d earlier entries", start)) + "\n")
	}
	for _, r := range runs[start:] {
		b.WriteString(r.String() + "\n")
	}

	b.WriteString("\n" + labelStyle.Render(fmt.Sprintf("Error log (%d entries)", len(errs))) + "\n")
	b.WriteString(renderErrors(errs, 10))

	if m.flash != "" {
		b.WriteString("\n" + okStyle.Render(m.flash) + "\n")
	}
	return b.String()
}

func (m Model) doneView() string {
	var b strings.Builder
	switch {
	case m.runErr != nil && m.stats.Processed == 0:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Run failed: %v", m.runErr)) + "\n\n")
	case m.runErr != nil:
		b.WriteString(warnStyle.Render(fmt.Sprintf("Run stopped: %v", m.runErr)) + "\n\n")
	case m.stats.DryRun:
		b.WriteString(okStyle.Render("Dry run complete, nothing was moved") + "\n\n")
	default:
		b.WriteString(okStyle.Render("Run complete") + "\n\n")
	}

	b.WriteString(labelStyle.Render("processed ") + fmt.Sprintf("%d", m.stats.Processed) + "\n")
	b.WriteString(labelStyle.Render("moved     ") + fmt.Sprintf("%d", m.stats.Moved) + "\n")
	b.WriteString(labelStyle.Render("skipped   ") + fmt.Sprintf("%d", m.stats.Skipped) + "\n")
	failures := fmt.Sprintf("%d", m.stats.Failures)
	if m.stats.Failures > 0 {
		failures = errorStyle.Render(failures)
	}
	b.WriteString(labelStyle.Render("failures  ") + failures + "\n")
	b.WriteString(labelStyle.Render("elapsed   ") + music.HumanDuration(int(m.stats.Elapsed.Seconds())) + "\n")
	return b.String()
}

func (m Model) recentEvents(limit int) string {
	runs, _ := m.log.Snapshot()
	start := 0
	if len(runs) > limit {
		start = len(runs) - limit
	}
	var b strings.Builder
	for _, r := range runs[start:] {
		b.WriteString(subtleStyle.Render(r.String()) + "\n")
	}
	return b.String()
}

func renderErrors(errs []session.ErrorRecord, limit int) string {
	if len(errs) == 0 {
		return subtleStyle.Render("no errors") + "\n"
	}
	start := 0
	if len(errs) > limit {
		start = len(errs) - limit
	}
	var b strings.Builder
	if start > 0 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("… %d earlier errors", start)) + "\n")
	}
	for _, e := range errs[start:] {
		b.WriteString(errorStyle.Render(e.String()) + "\n")
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateMenu:
		return "press a key to choose an action"
	case StateSetup:
		return "tab: next field • enter: apply • esc: back"
	case StatePreview:
		return "enter: preview • esc: back"
	case StateRunning:
		return "esc: cancel run"
	case StatePaused:
		return "y: resume • n: abort • s: show/hide errors"
	case StateLog:
		return "w: save log • b: back"
	case StateDone:
		return "enter: back to menu • q: quit"
	}
	return ""
}
