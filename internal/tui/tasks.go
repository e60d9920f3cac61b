package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"grove/internal/ai"
	"grove/internal/engine"
	"grove/internal/task"
)

const aiCallTimeout = 30 * time.Second

type tasksModel struct {
	eng    *engine.Engine
	reg    *task.Registry
	ai     *ai.Client
	save   func() // persists the registry after direct mutations
	width  int
	height int

	cursor           int
	confirmingDelete bool
	viewingDetails   bool
	detailID         string
	subCursor        int
	aiBusy           bool

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle *string
	formUseAI *bool
}

func newTasksModel(eng *engine.Engine, reg *task.Registry, client *ai.Client, save func()) tasksModel {
	title, useAI := "", false
	return tasksModel{
		eng:       eng,
		reg:       reg,
		ai:        client,
		save:      save,
		formTitle: &title,
		formUseAI: &useAI,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// visible is the display order: ongoing tasks first, archive below.
func (m tasksModel) visible() []*task.Task {
	out := m.reg.Active()
	return append(out, m.reg.Archive()...)
}

func (m tasksModel) selected() *task.Task {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return nil
	}
	return tasks[m.cursor]
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case aiAnalysisMsg:
		return m.applyAnalysis(msg)

	case aiPlanMsg:
		return m.applyPlan(msg)

	case tea.KeyMsg:
		if m.confirmingDelete {
			return m.updateDeleteConfirm(msg)
		}
		if m.viewingDetails {
			return m.updateDetails(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	tasks := m.visible()

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if t := m.selected(); t != nil {
			m.eng.ToggleActive(t.ID)
			if m.eng.ActiveTask() != nil && m.eng.ActiveTask().ID == t.ID {
				return m, func() tea.Msg { return statusMsg{text: "Focusing on " + t.Title} }
			}
			return m, func() tea.Msg { return statusMsg{text: "Paused " + t.Title} }
		}
	case key.Matches(msg, keys.New):
		return m.showForm()
	case key.Matches(msg, keys.Done):
		if t := m.selected(); t != nil && !t.Completed {
			m.eng.ManualComplete(t.ID)
			return m, func() tea.Msg { return statusMsg{text: "Completed " + t.Title} }
		}
	case key.Matches(msg, keys.Delete):
		if m.selected() != nil {
			m.confirmingDelete = true
		}
	case key.Matches(msg, keys.Details):
		if t := m.selected(); t != nil {
			m.viewingDetails = true
			m.detailID = t.ID
			m.subCursor = 0
		}
	}
	return m, nil
}

func (m tasksModel) updateDeleteConfirm(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	m.confirmingDelete = false
	if key.Matches(msg, keys.Enter) || msg.String() == "y" {
		if t := m.selected(); t != nil {
			title := t.Title
			m.eng.DeleteTask(t.ID)
			if m.cursor >= len(m.visible()) && m.cursor > 0 {
				m.cursor--
			}
			return m, func() tea.Msg { return statusMsg{text: "Deleted " + title} }
		}
	}
	return m, nil
}

func (m tasksModel) updateDetails(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	t := m.reg.Get(m.detailID)
	if t == nil {
		m.viewingDetails = false
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		m.viewingDetails = false
	case key.Matches(msg, keys.Up):
		if m.subCursor > 0 {
			m.subCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.subCursor < len(t.Subtasks)-1 {
			m.subCursor++
		}
	case key.Matches(msg, keys.Toggle):
		if m.subCursor < len(t.Subtasks) {
			m.reg.ToggleSubtask(t.ID, t.Subtasks[m.subCursor].ID)
			m.save()
		}
	case key.Matches(msg, keys.Plan):
		if !m.aiBusy {
			m.aiBusy = true
			return m, m.planCmd(t.ID, t.Title)
		}
	}
	return m, nil
}

func (m tasksModel) showForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formUseAI = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("What are you working on?").Value(m.formTitle),
			huh.NewConfirm().Title("Analyze with AI?").
				Description("Splits the description into a task and subtasks").
				Value(m.formUseAI),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		title := strings.TrimSpace(*m.formTitle)
		if title == "" {
			return m, nil
		}
		if *m.formUseAI {
			m.aiBusy = true
			return m, m.analyzeCmd(title)
		}
		t := m.eng.StartOrResume(title, "")
		return m, func() tea.Msg { return statusMsg{text: "Focusing on " + t.Title} }
	}

	return m, cmd
}

func (m tasksModel) analyzeCmd(input string) tea.Cmd {
	client := m.ai
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), aiCallTimeout)
		defer cancel()
		analysis, err := client.Analyze(ctx, input)
		return aiAnalysisMsg{input: input, analysis: analysis, err: err}
	}
}

func (m tasksModel) planCmd(taskID, title string) tea.Cmd {
	client := m.ai
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), aiCallTimeout)
		defer cancel()
		steps, err := client.GeneratePlan(ctx, title)
		return aiPlanMsg{taskID: taskID, steps: steps, err: err}
	}
}

// applyAnalysis turns an AI analysis into a started task. On failure the
// raw input still becomes a task; the AI is assistive, never blocking.
func (m tasksModel) applyAnalysis(msg aiAnalysisMsg) (tasksModel, tea.Cmd) {
	m.aiBusy = false

	if msg.err != nil {
		m.eng.StartOrResume(msg.input, "")
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("AI unavailable (%v), task created as-is", msg.err), isError: true}
		}
	}

	title := msg.analysis.Title
	if title == "" {
		title = msg.input
	}
	t := m.eng.StartOrResume(title, "")
	if len(msg.analysis.Subtasks) > 0 {
		m.reg.SetSubtasks(t.ID, msg.analysis.Subtasks)
		m.save()
	}
	n := len(msg.analysis.Subtasks)
	return m, func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Focusing on %s (%d subtasks)", t.Title, n)}
	}
}

func (m tasksModel) applyPlan(msg aiPlanMsg) (tasksModel, tea.Cmd) {
	m.aiBusy = false

	if msg.err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Plan failed: %v", msg.err), isError: true}
		}
	}
	if m.reg.Get(msg.taskID) == nil {
		return m, nil
	}

	var plan strings.Builder
	for i, step := range msg.steps {
		fmt.Fprintf(&plan, "%d. %s\n", i+1, step)
	}
	m.reg.SetPlan(msg.taskID, plan.String())
	m.reg.SetSubtasks(msg.taskID, msg.steps)
	m.save()

	return m, func() tea.Msg { return statusMsg{text: "Plan generated"} }
}

// --- Rendering ---

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}
	if m.viewingDetails {
		return m.renderDetails(w)
	}
	return m.renderList(w)
}

func (m tasksModel) renderList(w int) string {
	active := m.reg.Active()
	archive := m.reg.Archive()

	if len(active) == 0 && len(archive) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Tasks"),
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Tasks"))
	rows = append(rows, "")

	idx := 0
	for _, t := range active {
		rows = append(rows, m.renderTaskRow(t, idx))
		idx++
	}

	if len(archive) > 0 {
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("Completed"))
		for _, t := range archive {
			rows = append(rows, m.renderTaskRow(t, idx))
			idx++
		}
	}

	rows = append(rows, "")
	if m.confirmingDelete {
		if t := m.selected(); t != nil {
			rows = append(rows, errorStyle.Render(
				fmt.Sprintf("  Delete %q? enter/y: confirm  any other key: cancel", t.Title)))
		}
	} else {
		rows = append(rows, mutedStyle.Render("  enter: focus/pause  n: new  c: complete  d: delete  v: details"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderTaskRow(t *task.Task, idx int) string {
	cursor := "  "
	style := normalItemStyle
	if idx == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	icon := statusIcon(t)
	meta := mutedStyle.Render(fmt.Sprintf("  %d× · %s", t.Pomodoros, formatSeconds(t.TimeSpent)))
	if t.Completed && t.CompletedAt != nil {
		meta = mutedStyle.Render("  " + humanize.Time(*t.CompletedAt))
	}

	return style.Render(fmt.Sprintf("%s%s %s", cursor, icon, t.Title)) + meta
}

func statusIcon(t *task.Task) string {
	switch t.Status {
	case task.StatusInProgress:
		return successStyle.Render("●")
	case task.StatusPaused:
		return warningStyle.Render("◐")
	case task.StatusCompleted:
		return mutedStyle.Render("✓")
	default:
		return mutedStyle.Render("○")
	}
}

func (m tasksModel) renderDetails(w int) string {
	t := m.reg.Get(m.detailID)
	if t == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Task no longer exists."))
	}

	var rows []string
	rows = append(rows, titleStyle.Render(t.Title))
	rows = append(rows, mutedStyle.Render(fmt.Sprintf(
		"%s · %d pomodoros · %s focused", t.Status, t.Pomodoros, formatSeconds(t.TimeSpent))))
	rows = append(rows, "")

	if t.Plan != "" {
		rows = append(rows, highlightStyle.Render("Plan"))
		for _, line := range strings.Split(strings.TrimRight(t.Plan, "\n"), "\n") {
			rows = append(rows, "  "+line)
		}
		rows = append(rows, "")
	}

	if len(t.Subtasks) > 0 {
		rows = append(rows, highlightStyle.Render("Subtasks"))
		for i, sub := range t.Subtasks {
			cursor := "  "
			style := normalItemStyle
			if i == m.subCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			box := "[ ]"
			if sub.Completed {
				box = "[x]"
			}
			rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, box, sub.Title)))
		}
		rows = append(rows, "")
	}

	if m.aiBusy {
		rows = append(rows, warningStyle.Render("  Generating plan..."))
	} else {
		rows = append(rows, mutedStyle.Render("  space: toggle subtask  g: generate plan  esc: back"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
