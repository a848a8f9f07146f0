package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(16)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("DEALER"))
	s.WriteString("\n\n")

	d, ok := m.store.Dealer(m.selectedID)
	if !ok {
		s.WriteString(m.notFound())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Esc: Back"))
		return s.String()
	}

	s.WriteString(m.renderField("Name", d.Name))
	s.WriteString(m.renderField("Status", string(d.Status)))
	s.WriteString(m.renderField("Contact", d.ContactPerson))
	s.WriteString(m.renderField("Phone", d.Phone))
	s.WriteString(m.renderField("Email", d.Email))
	s.WriteString(m.renderField("Website", d.Website))
	s.WriteString(m.renderField("Address", d.Address))
	if d.LastContact != nil {
		s.WriteString(m.renderField("Last Contact", d.LastContact.Format(models.DateLayout)))
	} else {
		s.WriteString(m.renderField("Last Contact", "never"))
	}
	s.WriteString(m.renderField("Notes", d.Notes))

	// Activity history
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render("ACTIVITY"))
	s.WriteString("\n")

	activities := m.store.ActivitiesFor(d.ID)
	if len(activities) == 0 {
		s.WriteString("  none logged\n")
	}
	for _, a := range activities {
		line := fmt.Sprintf("  • [%s] %s: %s", a.When().Format(models.DateLayout), a.Type.Label(), a.Notes)
		if a.FollowUpDate != nil {
			line += fmt.Sprintf(" (follow up %s)", a.FollowUpDate.Format(models.DateLayout))
		}
		s.WriteString(line + "\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderStatus())

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"a: Log activity",
		"c: Contacted today",
		"s: Next status",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

// nextStatus cycles through the workflow order.
func nextStatus(current models.Status) models.Status {
	for i, st := range models.Statuses {
		if st == current {
			return models.Statuses[(i+1)%len(models.Statuses)]
		}
	}
	return models.Statuses[0]
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewList
		m.clampSelection()
		return m, nil
	}

	d, ok := m.store.Dealer(m.selectedID)
	if !ok {
		return m, nil
	}

	s, id := m.store, d.ID
	switch msg.String() {
	case "e":
		m.initDealerForm()
		m.viewMode = ViewEdit
	case "a":
		m.initActivityForm()
		m.viewMode = ViewEdit
	case "c":
		today := m.today()
		return m, save("Marked contacted "+today.String(), func(ctx context.Context) (store.SaveStatus, error) {
			_, saved, err := s.UpdateDealer(ctx, id, store.DealerPatch{LastContact: &today})
			return saved, err
		})
	case "s":
		next := nextStatus(d.Status)
		return m, save("Status set to "+string(next), func(ctx context.Context) (store.SaveStatus, error) {
			_, saved, err := s.UpdateDealer(ctx, id, store.DealerPatch{Status: &next})
			return saved, err
		})
	case "d":
		m.viewMode = ViewConfirmDelete
	}

	return m, nil
}
