package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

// FormKind selects which record the edit view is building.
type FormKind int

const (
	FormDealer FormKind = iota
	FormActivity
)

// Dealer form field order.
const (
	fieldName = iota
	fieldAddress
	fieldPhone
	fieldEmail
	fieldWebsite
	fieldContact
	fieldStatus
	fieldLastContact
	fieldNotes
	dealerFieldCount
)

// Activity form field order.
const (
	fieldType = iota
	fieldDate
	fieldActivityNotes
	fieldFollowUp
	fieldStatusUpdate
	activityFieldCount
)

func (m Model) renderEditView() string {
	var s strings.Builder

	// Title
	switch {
	case m.formKind == FormActivity:
		s.WriteString(titleStyle.Render("LOG ACTIVITY: " + m.selectedName()))
	case m.selectedID == "":
		s.WriteString(titleStyle.Render("NEW DEALER"))
	default:
		s.WriteString(titleStyle.Render("EDIT DEALER"))
	}
	s.WriteString("\n\n")

	// Form fields
	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		m.viewMode = m.returnView()
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		cmd, err := m.saveForm()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.viewMode = m.returnView()
		return m, cmd
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) returnView() ViewMode {
	if m.selectedID == "" {
		return ViewList
	}
	return ViewDetail
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

func (m *Model) initDealerForm() {
	inputs := make([]textinput.Model, dealerFieldCount)
	inputs[fieldName] = newInput("Name", 100)
	inputs[fieldAddress] = newInput("Address", 200)
	inputs[fieldPhone] = newInput("Phone", 30)
	inputs[fieldEmail] = newInput("Email", 100)
	inputs[fieldWebsite] = newInput("Website", 200)
	inputs[fieldContact] = newInput("Contact Person", 100)
	inputs[fieldStatus] = newInput("Status (Not Contacted/Contacted/Follow Up/Scheduled/Declined/Sold)", 20)
	inputs[fieldLastContact] = newInput("Last Contact (YYYY-MM-DD)", 10)
	inputs[fieldNotes] = newInput("Notes", 1000)

	// If editing, populate fields
	if d, ok := m.store.Dealer(m.selectedID); ok {
		inputs[fieldName].SetValue(d.Name)
		inputs[fieldAddress].SetValue(d.Address)
		inputs[fieldPhone].SetValue(d.Phone)
		inputs[fieldEmail].SetValue(d.Email)
		inputs[fieldWebsite].SetValue(d.Website)
		inputs[fieldContact].SetValue(d.ContactPerson)
		inputs[fieldStatus].SetValue(string(d.Status))
		if d.LastContact != nil {
			inputs[fieldLastContact].SetValue(d.LastContact.Format(models.DateLayout))
		}
		inputs[fieldNotes].SetValue(d.Notes)
	}

	m.formKind = FormDealer
	m.formInputs = inputs
	m.focusIndex = 0
	m.err = nil
	m.updateFormFocus()
}

func (m *Model) initActivityForm() {
	inputs := make([]textinput.Model, activityFieldCount)
	inputs[fieldType] = newInput("Type (call/email/meeting/test_drive/follow_up/other)", 20)
	inputs[fieldType].SetValue(string(models.ActivityCall))
	inputs[fieldDate] = newInput("Date (YYYY-MM-DD)", 10)
	inputs[fieldDate].SetValue(m.today().String())
	inputs[fieldActivityNotes] = newInput("Notes", 1000)
	inputs[fieldFollowUp] = newInput("Follow Up (YYYY-MM-DD, optional)", 10)
	inputs[fieldStatusUpdate] = newInput("Status Update (optional)", 50)

	m.formKind = FormActivity
	m.formInputs = inputs
	m.focusIndex = fieldActivityNotes
	m.err = nil
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) value(i int) string {
	return strings.TrimSpace(m.formInputs[i].Value())
}

func optionalDate(label, value string) (*models.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return &d, nil
}

// saveForm validates the form and returns the command that stores it.
func (m Model) saveForm() (tea.Cmd, error) {
	if m.formKind == FormActivity {
		return m.saveActivity()
	}
	return m.saveDealer()
}

func (m Model) saveDealer() (tea.Cmd, error) {
	var status models.Status
	if v := m.value(fieldStatus); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			return nil, err
		}
		status = st
	}
	lastContact, err := optionalDate("last contact", m.value(fieldLastContact))
	if err != nil {
		return nil, err
	}

	if m.selectedID == "" {
		in := store.DealerInput{
			Name:          m.value(fieldName),
			Address:       m.value(fieldAddress),
			Phone:         m.value(fieldPhone),
			Email:         m.value(fieldEmail),
			Website:       m.value(fieldWebsite),
			ContactPerson: m.value(fieldContact),
			Status:        status,
			LastContact:   lastContact,
			Notes:         m.value(fieldNotes),
		}
		s := m.store
		return save("Dealer added", func(ctx context.Context) (store.SaveStatus, error) {
			_, saved := s.AddDealer(ctx, in)
			return saved, nil
		}), nil
	}

	name, address, phone := m.value(fieldName), m.value(fieldAddress), m.value(fieldPhone)
	email, website, contact := m.value(fieldEmail), m.value(fieldWebsite), m.value(fieldContact)
	notes := m.value(fieldNotes)
	patch := store.DealerPatch{
		Name:          &name,
		Address:       &address,
		Phone:         &phone,
		Email:         &email,
		Website:       &website,
		ContactPerson: &contact,
		Notes:         &notes,
		LastContact:   lastContact,
	}
	if status != "" {
		patch.Status = &status
	}

	existing, ok := m.store.Dealer(m.selectedID)
	if !ok {
		return nil, fmt.Errorf("%s", m.notFound())
	}
	if lastContact == nil && existing.LastContact != nil {
		patch.ClearLastContact = true
	}
	// Re-stating the current date is not a new contact.
	if lastContact != nil && existing.LastContact != nil && lastContact.Equal(existing.LastContact.Time) {
		patch.LastContact = nil
	}

	s, id := m.store, m.selectedID
	return save("Dealer updated", func(ctx context.Context) (store.SaveStatus, error) {
		_, saved, err := s.UpdateDealer(ctx, id, patch)
		return saved, err
	}), nil
}

func (m Model) saveActivity() (tea.Cmd, error) {
	in := store.ActivityInput{
		DealerID:     m.selectedID,
		Notes:        m.value(fieldActivityNotes),
		StatusUpdate: m.value(fieldStatusUpdate),
	}
	if v := m.value(fieldType); v != "" {
		t, err := models.ParseActivityType(v)
		if err != nil {
			return nil, err
		}
		in.Type = t
	}
	date, err := optionalDate("date", m.value(fieldDate))
	if err != nil {
		return nil, err
	}
	in.Date = date
	followUp, err := optionalDate("follow up", m.value(fieldFollowUp))
	if err != nil {
		return nil, err
	}
	in.FollowUpDate = followUp

	if err := in.Validate(); err != nil {
		return nil, err
	}

	s := m.store
	return save("Activity logged", func(ctx context.Context) (store.SaveStatus, error) {
		_, saved, err := s.AddActivity(ctx, in)
		return saved, err
	}), nil
}
