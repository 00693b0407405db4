package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/stepr/internal/config"
	"github.com/sadopc/stepr/internal/poller"
	"github.com/sadopc/stepr/internal/store"
)

type settingsModel struct {
	store  *store.Store
	ctrl   *poller.Controller
	cfg    config.Config
	width  int
	height int

	granted    bool
	formActive bool
	form       *huh.Form

	// Form value as a pointer (survives value copies)
	grantValue *bool
}

func newSettingsModel(s *store.Store, ctrl *poller.Controller, cfg config.Config) settingsModel {
	g := false
	return settingsModel{
		store:      s,
		ctrl:       ctrl,
		cfg:        cfg,
		grantValue: &g,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	granted bool
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		granted, _ := s.store.HasPermissions(context.Background())
		return settingsDataMsg{granted: granted}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.granted = msg.granted
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.grantValue = s.granted

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Allow reading step records?").
				Description("The dashboard stays empty until access is granted.").
				Affirmative("Grant").
				Negative("Deny").
				Value(s.grantValue),
		).Title("Permissions"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		granted := *s.grantValue
		return s, s.savePermissions(granted)
	}

	return s, cmd
}

func (s settingsModel) savePermissions(granted bool) tea.Cmd {
	return func() tea.Msg {
		if err := s.store.SetPermissionsGranted(granted); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return permissionsSavedMsg{granted: granted}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to change permissions")

	permValue := errorStyle.Render("not granted")
	if s.granted {
		permValue = successStyle.Render("granted")
	}

	rows := []string{title, ""}
	rows = append(rows, s.row("Step read permission", permValue))
	rows = append(rows, "")
	rows = append(rows, s.row("Preferred source", highlightStyle.Render(s.cfg.PreferredSource)))
	rows = append(rows, s.row("Timezone", highlightStyle.Render(s.cfg.Location.String())))
	rows = append(rows, s.row("Refresh interval", highlightStyle.Render(s.cfg.RefreshInterval.String())))
	rows = append(rows, s.row("Database", highlightStyle.Render(s.cfg.DBPath)))
	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) row(label, value string) string {
	l := lipgloss.NewStyle().Width(24).Render(label)
	return fmt.Sprintf("  %s %s", l, value)
}
