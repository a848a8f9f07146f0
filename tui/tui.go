// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Interactive full-screen browser for dealers and the activity log
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewConfirmDelete
)

// Tab is the collection shown in the list view.
type Tab int

const (
	TabDealers Tab = iota
	TabActivity
	TabDashboard
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabDealers:
		return "Dealers"
	case TabActivity:
		return "Activity"
	case TabDashboard:
		return "Dashboard"
	}
	return ""
}

// Model is the main bubbletea model
type Model struct {
	store    *store.Store
	viewMode ViewMode
	tab      Tab

	// List view state
	selectedRow int
	searching   bool
	search      textinput.Model
	searchQuery string

	// Detail view state
	selectedID models.ID

	// Edit view state
	formKind   FormKind
	formInputs []textinput.Model
	focusIndex int

	// Status line; set after each save and store event
	status string

	events chan store.Event
	now    func() time.Time

	// UI state
	width  int
	height int
	err    error
}

// eventMsg carries a store event into the update loop.
type eventMsg store.Event

// savedMsg reports the outcome of a mutation run in the background.
type savedMsg struct {
	what   string
	status store.SaveStatus
	err    error
}

// NewModel creates a new TUI model
func NewModel(s *store.Store) Model {
	search := textinput.New()
	search.Placeholder = "search dealers"
	search.Prompt = "/ "
	search.CharLimit = 80

	return Model{
		store:    s,
		viewMode: ViewList,
		tab:      TabDealers,
		search:   search,
		events:   make(chan store.Event, 16),
		now:      time.Now,
		width:    80,
		height:   24,
	}
}

// Run starts the interface and blocks until the user quits.
func Run(s *store.Store) error {
	m := NewModel(s)
	unsubscribe := s.Subscribe(func(ev store.Event) {
		select {
		case m.events <- ev:
		default:
		}
	})
	defer unsubscribe()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events)
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case eventMsg:
		if msg.Kind == store.EventReloaded {
			m.status = "Reloaded"
		}
		m.clampSelection()
		return m, m.waitForEvent()
	case savedMsg:
		m.applySaved(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) applySaved(msg savedMsg) {
	m.err = msg.err
	switch {
	case msg.err != nil:
		m.status = "Error: " + msg.err.Error()
	case msg.status == store.SavedRemote:
		m.status = "✓ " + msg.what
	case msg.status == store.SavedLocally:
		m.status = "✓ " + msg.what + " (saved locally only)"
	default:
		m.status = "⚠ " + msg.what + " but could not be saved"
	}
	m.clampSelection()
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}
	if m.viewMode == ViewEdit {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleEditKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// save runs a store mutation off the update loop.
func save(what string, fn func(ctx context.Context) (store.SaveStatus, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn(context.Background())
		return savedMsg{what: what, status: status, err: err}
	}
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	style := statusStyle
	if m.err != nil {
		style = errorStyle
	}
	return style.Render(m.status) + "\n"
}

func (m Model) today() models.Date {
	now := m.now()
	return models.NewDate(now.Year(), now.Month(), now.Day())
}

func (m Model) selectedName() string {
	return m.store.DealerName(m.selectedID)
}

func (m Model) notFound() string {
	return fmt.Sprintf("Dealer %s no longer exists", m.selectedID)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
