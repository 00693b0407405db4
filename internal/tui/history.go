package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/stepr/internal/history"
	"github.com/sadopc/stepr/internal/poller"
)

// historyModel shows today's completed hours, most recent first, with a bar
// chart of the same data in clock order.
type historyModel struct {
	width  int
	height int

	records []history.HourlyRecord
	chart   barchart.Model
	built   bool
}

func newHistoryModel() historyModel {
	return historyModel{
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, hh int) {
	h.width = w
	h.height = hh
	h.built = false
}

// setData refreshes the chart when the snapshot's history actually changed.
func (h *historyModel) setData(snap poller.Snapshot) {
	if h.built && sameRecords(h.records, snap.StepHistory) {
		return
	}
	h.records = snap.StepHistory
	h.buildChart()
	h.built = true
}

func sameRecords(a, b []history.HourlyRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if h.height > 30 {
		chartHeight = 16
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	// Bars go in clock order even though the list below is newest first.
	var bars []barchart.BarData
	for i := len(h.records) - 1; i >= 0; i-- {
		rec := h.records[i]
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("%02d", rec.Hour),
			Values: []barchart.BarValue{{
				Name:  rec.Label,
				Value: float64(rec.Steps),
				Style: lipgloss.NewStyle().Foreground(colorSecondary),
			}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "--",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view(snap poller.Snapshot) string {
	w := h.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Today by hour"), "  ",
		mutedStyle.Render(formatSteps(snap.DailySteps)+" steps total"),
	)

	chartView := h.chart.View()
	tableView := h.renderHourTable(w)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", chartView, "", tableView),
	)
}

func (h historyModel) renderHourTable(w int) string {
	if len(h.records) == 0 {
		return mutedStyle.Render("  No completed hours with steps yet today")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-8s %10s", "Hour", "Steps")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 20))))

	for _, rec := range h.records {
		steps := highlightStyle.Render(fmt.Sprintf("%10s", formatSteps(rec.Steps)))
		rows = append(rows, fmt.Sprintf("  %-8s %s", rec.Label, steps))
	}

	return strings.Join(rows, "\n")
}
