package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"grove/internal/ai"
	"grove/internal/engine"
	"grove/internal/session"
	"grove/internal/task"
)

type statsModel struct {
	eng    *engine.Engine
	reg    *task.Registry
	log    *session.Log
	ai     *ai.Client
	width  int
	height int

	chart   barchart.Model
	summary string
	aiBusy  bool
}

func newStatsModel(eng *engine.Engine, reg *task.Registry, log *session.Log, client *ai.Client) statsModel {
	return statsModel{
		eng:   eng,
		reg:   reg,
		log:   log,
		ai:    client,
		chart: barchart.New(60, 10),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case aiSummaryMsg:
		m.aiBusy = false
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Summary failed: %v", msg.err), isError: true}
			}
		}
		m.summary = msg.text
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Summary):
			if !m.aiBusy {
				m.aiBusy = true
				return m, m.summaryCmd()
			}
		}
	}
	return m, nil
}

func (m statsModel) summaryCmd() tea.Cmd {
	client := m.ai
	today := time.Now().Format(session.DateLayout)
	prompt := ai.SummaryPrompt(m.log.All(), m.reg.All(), today)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), aiCallTimeout)
		defer cancel()
		text, err := client.Summarize(ctx, prompt)
		return aiSummaryMsg{text: text, err: err}
	}
}

// rebuildChart fills the weekly bar chart with the last 7 days of
// focus minutes.
func (m *statsModel) rebuildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	m.chart = barchart.New(chartWidth, 10)

	mins := m.log.DayMinutes()
	today := time.Now()

	var bars []barchart.BarData
	for i := 6; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		date := d.Format(session.DateLayout)
		value := float64(mins[date])

		style := lipgloss.NewStyle().Foreground(colorSuccess)
		if value == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}

		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon"),
			Values: []barchart.BarValue{
				{Name: "focus", Value: value, Style: style},
			},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	cards := m.renderCards()
	heatmap := m.renderHeatmap(w)
	chartView := m.chart.View()

	parts := []string{
		titleStyle.Render("Stats"),
		"",
		cards,
		"",
		highlightStyle.Render("Last 12 months"),
		heatmap,
		"",
		highlightStyle.Render("This week (minutes)"),
		chartView,
	}

	if m.aiBusy {
		parts = append(parts, "", warningStyle.Render("  Summarizing..."))
	} else if m.summary != "" {
		parts = append(parts, "", highlightStyle.Render("AI Summary"))
		parts = append(parts, wrapText(m.summary, w-6))
	}

	parts = append(parts, "", mutedStyle.Render("  s: ai summary  e: export"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m statsModel) renderCards() string {
	today := time.Now().Format(session.DateLayout)
	focusToday := m.log.TodaySeconds(today)

	trees := fmt.Sprintf("%s trees grown", humanize.Comma(int64(m.eng.Trees())))
	focus := formatSeconds(focusToday) + " focused today"
	sessions := fmt.Sprintf("%d sessions total", m.log.Len())

	return mutedStyle.Render("  ") + successStyle.Render(trees) +
		mutedStyle.Render("   ") + highlightStyle.Render(focus) +
		mutedStyle.Render("   ") + normalItemStyle.Render(sessions)
}

// renderHeatmap draws the rolling-year activity grid, one column per
// week and one row per weekday, trimmed to the terminal width.
func (m statsModel) renderHeatmap(w int) string {
	days := m.log.Calendar(time.Now())

	weeks := (w - 6) / 2
	if weeks < 4 {
		weeks = 4
	}
	if weeks > 53 {
		weeks = 53
	}
	if keep := weeks * 7; len(days) > keep {
		days = days[len(days)-keep:]
	}

	first, err := time.Parse(session.DateLayout, days[0].Date)
	if err != nil {
		return ""
	}
	offset := int(first.Weekday())

	rows := make([]string, 7)
	for i := 0; i < offset; i++ {
		rows[i] += "  "
	}
	for i, d := range days {
		wd := (offset + i) % 7
		rows[wd] += lipgloss.NewStyle().Foreground(heatmapColors[d.Level]).Render("■ ")
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString("  " + row + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func wrapText(s string, width int) string {
	if width < 16 {
		width = 16
	}
	var b strings.Builder
	line := "  "
	for _, word := range strings.Fields(s) {
		if len(line)+len(word)+1 > width {
			b.WriteString(line + "\n")
			line = "  "
		}
		if line != "  " {
			line += " "
		}
		line += word
	}
	b.WriteString(line)
	return b.String()
}
