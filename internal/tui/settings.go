package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"grove/internal/config"
	"grove/internal/engine"
	"grove/internal/store"
)

type settingsModel struct {
	st     *store.Store
	eng    *engine.Engine
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	work     *string
	brk      *string
	longBrk  *string
	interval *string
	language *string
	apiKey   *string
	baseURL  *string
	model    *string
	policy   *string
}

func newSettingsModel(st *store.Store, eng *engine.Engine) settingsModel {
	w, b, lb, iv := "", "", "", ""
	lang, keyv, base, model, pol := "", "", "", "", ""
	return settingsModel{
		st:       st,
		eng:      eng,
		work:     &w,
		brk:      &b,
		longBrk:  &lb,
		interval: &iv,
		language: &lang,
		apiKey:   &keyv,
		baseURL:  &base,
		model:    &model,
		policy:   &pol,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return m.showForm()
		}
	}
	return m, nil
}

func (m settingsModel) showForm() (settingsModel, tea.Cmd) {
	cfg := m.eng.Config()
	*m.work = strconv.Itoa(cfg.WorkDuration)
	*m.brk = strconv.Itoa(cfg.BreakDuration)
	*m.longBrk = strconv.Itoa(cfg.LongBreakDuration)
	*m.interval = strconv.Itoa(cfg.LongBreakInterval)
	*m.language = cfg.Language
	*m.apiKey = cfg.AI.APIKey
	*m.baseURL = cfg.AI.BaseURL
	*m.model = cfg.AI.Model
	*m.policy = string(cfg.AI.OnMissingKey)

	positiveInt := func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("enter a positive number")
		}
		return nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work duration (min)").Value(m.work).Validate(positiveInt),
			huh.NewInput().Title("Short break (min)").Value(m.brk).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(m.longBrk).Validate(positiveInt),
			huh.NewInput().Title("Pomodoros before long break").Value(m.interval).Validate(positiveInt),
			huh.NewSelect[string]().Title("Language").
				Options(
					huh.NewOption("English", "en"),
					huh.NewOption("Türkçe", "tr"),
				).Value(m.language),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("API key").EchoMode(huh.EchoModePassword).Value(m.apiKey),
			huh.NewInput().Title("Base URL").Placeholder(config.DefaultBaseURL).Value(m.baseURL),
			huh.NewInput().Title("Model").Placeholder(config.DefaultModel).Value(m.model),
			huh.NewSelect[string]().Title("Without an API key").
				Options(
					huh.NewOption("Use placeholder results", string(config.PolicyMock)),
					huh.NewOption("Refuse AI features", string(config.PolicyError)),
				).Value(m.policy),
		).Title("AI"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
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
		cfg := m.buildConfig()
		config.Save(m.st, cfg)
		m.eng.SetConfig(cfg)
		return m, func() tea.Msg { return settingsSavedMsg{cfg: cfg} }
	}

	return m, cmd
}

func (m settingsModel) buildConfig() config.Config {
	cfg := m.eng.Config()
	cfg.WorkDuration = atoiOr(*m.work, cfg.WorkDuration)
	cfg.BreakDuration = atoiOr(*m.brk, cfg.BreakDuration)
	cfg.LongBreakDuration = atoiOr(*m.longBrk, cfg.LongBreakDuration)
	cfg.LongBreakInterval = atoiOr(*m.interval, cfg.LongBreakInterval)
	cfg.Language = *m.language
	cfg.AI.APIKey = strings.TrimSpace(*m.apiKey)
	cfg.AI.BaseURL = strings.TrimSpace(*m.baseURL)
	cfg.AI.Model = strings.TrimSpace(*m.model)
	cfg.AI.OnMissingKey = config.Policy(*m.policy)
	return cfg
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (m settingsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	cfg := m.eng.Config()

	rows := []string{
		titleStyle.Render("Settings"),
		"",
		settingRow("Work duration", fmt.Sprintf("%d min", cfg.WorkDuration)),
		settingRow("Short break", fmt.Sprintf("%d min", cfg.BreakDuration)),
		settingRow("Long break", fmt.Sprintf("%d min", cfg.LongBreakDuration)),
		settingRow("Long break every", fmt.Sprintf("%d pomodoros", cfg.LongBreakInterval)),
		settingRow("Language", cfg.Language),
		"",
		settingRow("AI API key", maskKey(cfg.AI.APIKey)),
		settingRow("AI base URL", orDefault(cfg.AI.BaseURL, config.DefaultBaseURL)),
		settingRow("AI model", orDefault(cfg.AI.Model, config.DefaultModel)),
		settingRow("Without a key", string(cfg.AI.OnMissingKey)),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	l := lipgloss.NewStyle().Width(24).Render(label)
	return fmt.Sprintf("  %s %s", l, highlightStyle.Render(value))
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 8 {
		return "••••"
	}
	return key[:4] + "••••" + key[len(key)-4:]
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback + " (default)"
	}
	return v
}
