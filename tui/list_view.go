package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/viz"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("DEALERDESK"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.tab == TabDealers && (m.searching || m.searchQuery != "") {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	}

	// Table
	switch m.tab {
	case TabDealers:
		s.WriteString(m.renderDealersTable())
	case TabActivity:
		s.WriteString(m.renderActivityTable())
	case TabDashboard:
		stats := viz.GenerateDashboardStats(m.store.Dealers(), m.store.Activities(), m.now())
		s.WriteString(viz.RenderDashboard(stats))
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderStatus())

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for t := Tab(0); t < tabCount; t++ {
		if t == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(t.String()))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(t.String()))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) visibleDealers() []models.DealerRecord {
	return m.store.FilterDealers(m.searchQuery)
}

func (m Model) tableHeight() int {
	if h := m.height - 10; h > 3 {
		return h
	}
	return 3
}

func (m Model) renderDealersTable() string {
	dealers := m.visibleDealers()
	if len(dealers) == 0 {
		if m.searchQuery != "" {
			return "No dealers match \"" + m.searchQuery + "\""
		}
		return "No dealers yet. Press n to add one."
	}

	columns := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Status", Width: 14},
		{Title: "Contact", Width: 20},
		{Title: "Last Contact", Width: 12},
	}

	var rows []table.Row
	for _, d := range dealers {
		lastContact := ""
		if d.LastContact != nil {
			lastContact = d.LastContact.Format(models.DateLayout)
		}
		rows = append(rows, table.Row{
			d.Name,
			string(d.Status),
			d.ContactPerson,
			lastContact,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderActivityTable() string {
	activities := m.store.Activities()
	if len(activities) == 0 {
		return "No activity logged yet."
	}

	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Dealer", Width: 24},
		{Title: "Type", Width: 12},
		{Title: "Notes", Width: 30},
	}

	var rows []table.Row
	for _, a := range activities {
		rows = append(rows, table.Row{
			a.When().Format(models.DateLayout),
			m.store.DealerName(a.DealerID),
			a.Type.Label(),
			a.Notes,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"/: Search",
		"n: New",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabDealers:
		return len(m.visibleDealers())
	case TabActivity:
		return len(m.store.Activities())
	}
	return 0
}

func (m *Model) clampSelection() {
	if n := m.rowCount(); m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % tabCount
		m.selectedRow = 0
	case "enter":
		if id := m.getSelectedDealerID(); id != "" {
			m.viewMode = ViewDetail
			m.selectedID = id
		}
	case "/":
		if m.tab == TabDealers {
			m.searching = true
			m.search.SetValue(m.searchQuery)
			return m, m.search.Focus()
		}
	case "n":
		m.tab = TabDealers
		m.selectedID = ""
		m.initDealerForm()
		m.viewMode = ViewEdit
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.searchQuery = ""
		m.search.SetValue("")
		m.search.Blur()
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.searchQuery = m.search.Value()
	m.selectedRow = 0
	return m, cmd
}

// getSelectedDealerID returns the dealer under the cursor; on the activity
// tab, the dealer the activity was logged against.
func (m Model) getSelectedDealerID() models.ID {
	switch m.tab {
	case TabDealers:
		dealers := m.visibleDealers()
		if m.selectedRow < len(dealers) {
			return dealers[m.selectedRow].ID
		}
	case TabActivity:
		activities := m.store.Activities()
		if m.selectedRow < len(activities) {
			id := activities[m.selectedRow].DealerID
			if _, ok := m.store.Dealer(id); ok {
				return id
			}
		}
	}
	return ""
}
