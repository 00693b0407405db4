package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/stepr/internal/poller"
)

// dashboardModel is a pure renderer over the poll controller's snapshot.
type dashboardModel struct {
	width  int
	height int
}

func newDashboardModel() dashboardModel {
	return dashboardModel{}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	return d, nil
}

func (d dashboardModel) view(snap poller.Snapshot) string {
	w := d.width - 4

	clock := clockStyle.Width(w).Render(snap.CurrentDateTime)

	hourly := stepCountStyle.Width(w).Render(bigNumber(formatSteps(snap.HourlySteps)))
	hourlyLabel := subtitleStyle.Width(w).Align(lipgloss.Center).Render("steps this hour")

	daily := titleStyle.Width(w).Align(lipgloss.Center).
		Render(formatSteps(snap.DailySteps) + " today")

	rows := []string{clock, "", hourly, hourlyLabel, "", daily}

	if warn := d.renderWarnings(snap); warn != "" {
		rows = append(rows, "", warn)
	}

	if diag := d.renderDiagnostics(snap); diag != "" {
		rows = append(rows, "", diag)
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (d dashboardModel) renderWarnings(snap poller.Snapshot) string {
	var lines []string

	switch {
	case snap.DataSourceNeedsUpdate:
		lines = append(lines, warningStyle.Render("  Data source needs an update"))
		if snap.InstallActionURI != "" {
			lines = append(lines, mutedStyle.Render("  "+snap.InstallActionURI))
		}
	case !snap.DataSourceAvailable:
		lines = append(lines, errorStyle.Render("  Data source unavailable"))
		if snap.InstallActionURI != "" {
			lines = append(lines, mutedStyle.Render("  Install: "+snap.InstallActionURI))
		}
	case !snap.PermissionsGranted:
		lines = append(lines, warningStyle.Render("  Read permission not granted"))
		lines = append(lines, mutedStyle.Render("  Press 3 to open Settings and grant it"))
	}

	if snap.LastError != "" {
		lines = append(lines, errorStyle.Render("  Last error: "+snap.LastError))
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func (d dashboardModel) renderDiagnostics(snap poller.Snapshot) string {
	if len(snap.BySource) == 0 && snap.Duplicates == 0 {
		return ""
	}

	ids := make([]string, 0, len(snap.BySource))
	for id := range snap.BySource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows []string
	rows = append(rows, subtitleStyle.Render("  Sources seen today"))
	for _, id := range ids {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-32s %s", id, formatSteps(snap.BySource[id]))))
	}
	if snap.Duplicates > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %d duplicate records skipped", snap.Duplicates)))
	}
	return strings.Join(rows, "\n")
}

// bigNumber spaces out digits so the hourly count reads as the centerpiece.
func bigNumber(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}
