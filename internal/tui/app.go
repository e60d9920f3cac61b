package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grove/internal/ai"
	"grove/internal/config"
	"grove/internal/engine"
	"grove/internal/export"
	"grove/internal/notify"
	"grove/internal/session"
	"grove/internal/store"
	"grove/internal/task"
)

// App is the root Bubble Tea model. It owns the engine and drives it
// from the single per-second tick, so all state mutation happens
// cooperatively inside Update.
type App struct {
	store  *store.Store
	eng    *engine.Engine
	reg    *task.Registry
	log    *session.Log
	br     *uiBridge
	ai     *ai.Client
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	breakActive   bool
	breakView     breakModel

	timer    timerModel
	tasks    tasksModel
	stats    statsModel
	settings settingsModel

	help   help.Model
	status string
}

func NewApp(st *store.Store) App {
	cfg := config.Load(st)
	cfg.FillAIFromEnv()

	reg := task.NewRegistry()
	if raw, ok, _ := st.Get(store.KeyTasks); ok {
		reg.Restore(raw)
	}
	log := session.NewLog()
	if raw, ok, _ := st.Get(store.KeySessions); ok {
		log.Restore(raw)
	}

	br := newUIBridge()
	saver := &persister{st: st, tasks: reg, log: log}
	eng := engine.New(cfg, reg, log,
		engine.WithBridge(br),
		engine.WithNotifier(notify.New()),
		engine.WithSaver(saver),
		engine.WithTrees(st.Trees()),
	)

	client := ai.NewClient(cfg.AI)

	h := help.New()
	h.ShowAll = false

	return App{
		store:    st,
		eng:      eng,
		reg:      reg,
		log:      log,
		br:       br,
		ai:       client,
		timer:    newTimerModel(eng),
		tasks:    newTasksModel(eng, reg, client, saver.SaveTasks),
		stats:    newStatsModel(eng, reg, log, client),
		settings: newSettingsModel(st, eng),
		help:     h,
	}
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.stats.rebuildChart()
		return a, nil

	case tickMsg:
		if a.breakActive {
			if a.breakView.tick() {
				a.closeBreak()
			}
		} else {
			a.eng.Tick()
			if a.br.takeBreakRequest() {
				a.openBreak()
			}
		}
		return a, tickCmd()

	case tea.KeyMsg:
		if a.breakActive {
			if key.Matches(msg, keys.Toggle) || key.Matches(msg, keys.Back) {
				a.closeBreak()
			}
			return a, nil
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		// If a child view is capturing input (form, confirmation),
		// delegate first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewStats
			a.stats.rebuildChart()
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			if a.activeView == viewStats {
				a.stats.rebuildChart()
			}
			return a, nil
		}
		return a.updateActiveView(msg)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case settingsSavedMsg:
		a.status = "Settings saved"
		a.ai = ai.NewClient(msg.cfg.AI)
		a.tasks.ai = a.ai
		a.stats.ai = a.ai
		return a, nil

	case aiAnalysisMsg, aiPlanMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd

	case aiSummaryMsg:
		var cmd tea.Cmd
		a.stats, cmd = a.stats.update(msg)
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

// isCapturing reports whether the active view owns all key input.
func (a App) isCapturing() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive || a.tasks.confirmingDelete
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a *App) openBreak() {
	a.breakActive = true
	a.breakView = newBreakModel(a.store.BreakHandoff())
}

func (a *App) closeBreak() {
	a.breakActive = false
	a.br.CloseBreakWindow()
	a.status = "Break over, back to focus"
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.breakActive {
		return a.breakView.view(a.width, a.height)
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewTasks:
		content = a.tasks.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("grove")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Countdown indicator in footer
	timerInfo := ""
	if a.eng.Active() {
		clock := engine.FormatClock(a.eng.TimeLeft())
		if a.eng.Mode() == engine.ModeWork {
			timerInfo = successStyle.Render(" ● " + clock)
		} else {
			timerInfo = highlightStyle.Render(" ☕ " + clock)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	sessions := a.log.All()
	tasks := a.reg.All()
	return func() tea.Msg {
		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("grove-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("grove-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, tasks, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
