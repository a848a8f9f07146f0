// ABOUTME: Data models for the dealer outreach directory
// ABOUTME: Defines DealerRecord, ActivityEntry, statuses, activity types and ID generation
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Placeholder names used when a dealer arrives without one.
const (
	UnnamedDealer = "Unnamed Dealer"
	NewDealerName = "New Dealer"
	UnknownDealer = "Unknown Dealer"
)

// ID is an opaque record identifier. Legacy data used numeric millisecond
// timestamps, so JSON numbers are accepted and kept as their decimal text.
type ID string

// NewID returns a fresh ULID: a millisecond timestamp plus random entropy.
func NewID() ID {
	return ID(ulid.Make().String())
}

func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a string, a number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Status is the outreach workflow state of a dealer.
type Status string

const (
	StatusNotContacted Status = "Not Contacted"
	StatusContacted    Status = "Contacted"
	StatusFollowUp     Status = "Follow Up"
	StatusScheduled    Status = "Scheduled"
	StatusDeclined     Status = "Declined"
	StatusSold         Status = "Sold"
)

// Statuses lists every workflow state in pipeline order.
var Statuses = []Status{
	StatusNotContacted,
	StatusContacted,
	StatusFollowUp,
	StatusScheduled,
	StatusDeclined,
	StatusSold,
}

// ParseStatus matches s against the known statuses ignoring case and
// treating '-', '_' and ' ' alike.
func ParseStatus(s string) (Status, error) {
	key := statusKey(s)
	for _, st := range Statuses {
		if statusKey(string(st)) == key {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func statusKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// Known reports whether s is one of the enumerated statuses.
func (s Status) Known() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Slug is the lower-case hyphenated form, e.g. "follow-up".
func (s Status) Slug() string {
	if s == "" {
		s = StatusNotContacted
	}
	return strings.Join(strings.Fields(strings.ToLower(string(s))), "-")
}

// ActivityType classifies a logged interaction.
type ActivityType string

const (
	ActivityCall      ActivityType = "call"
	ActivityEmail     ActivityType = "email"
	ActivityMeeting   ActivityType = "meeting"
	ActivityTestDrive ActivityType = "test_drive"
	ActivityFollowUp  ActivityType = "follow_up"
	ActivityOther     ActivityType = "other"
)

// ActivityTypes lists the known activity types.
var ActivityTypes = []ActivityType{
	ActivityCall,
	ActivityEmail,
	ActivityMeeting,
	ActivityTestDrive,
	ActivityFollowUp,
	ActivityOther,
}

var activityLabels = map[ActivityType]string{
	ActivityCall:      "Phone Call",
	ActivityEmail:     "Email",
	ActivityMeeting:   "Meeting",
	ActivityTestDrive: "Test Drive",
	ActivityFollowUp:  "Follow Up",
	ActivityOther:     "Other",
}

// Label returns the display label; unknown types display as themselves.
func (t ActivityType) Label() string {
	if label, ok := activityLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseActivityType accepts the canonical value or its hyphenated spelling.
func ParseActivityType(s string) (ActivityType, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, t := range ActivityTypes {
		if string(t) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown activity type %q", s)
}

// DealerRecord is one outreach target in the directory.
type DealerRecord struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Website       string    `json:"website"`
	ContactPerson string    `json:"contactPerson"`
	Status        Status    `json:"status"`
	LastContact   *Date     `json:"lastContact"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Extra holds JSON keys this struct does not model so they survive a
	// load/save round trip.
	Extra map[string]json.RawMessage `json:"-"`
}

// Normalize fills defaults for anything a raw record left out. It is idempotent.
func (d *DealerRecord) Normalize(now time.Time) {
	if d.ID == "" {
		d.ID = NewID()
	}
	if d.Name == "" {
		d.Name = UnnamedDealer
	}
	if d.Status == "" {
		d.Status = StatusNotContacted
	}
	if d.LastContact != nil && d.LastContact.IsZero() {
		d.LastContact = nil
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now
	}
}

// SearchText is the lower-cased text FilterDealers matches against.
func (d *DealerRecord) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		d.Name,
		d.Address,
		d.ContactPerson,
		d.Phone,
		d.Email,
		string(d.Status),
		d.Notes,
	}, " "))
}

// Clone returns a deep copy.
func (d DealerRecord) Clone() DealerRecord {
	if d.LastContact != nil {
		lc := *d.LastContact
		d.LastContact = &lc
	}
	if d.Extra != nil {
		extra := make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		d.Extra = extra
	}
	return d
}

// ActivityEntry is a logged interaction with a dealer. Entries are append-only.
type ActivityEntry struct {
	ID           ID           `json:"id"`
	DealerID     ID           `json:"dealerId"`
	Date         *Date        `json:"date"`
	Type         ActivityType `json:"type"`
	Notes        string       `json:"notes"`
	FollowUpDate *Date        `json:"followUpDate"`
	StatusUpdate string       `json:"statusUpdate,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Normalize assigns an id and creation time when absent.
func (a *ActivityEntry) Normalize(now time.Time) {
	if a.ID == "" {
		a.ID = NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.Date != nil && a.Date.IsZero() {
		a.Date = nil
	}
	if a.FollowUpDate != nil && a.FollowUpDate.IsZero() {
		a.FollowUpDate = nil
	}
}

// When is the activity date, falling back to the creation time.
func (a *ActivityEntry) When() time.Time {
	if a.Date != nil {
		return a.Date.Time
	}
	return a.CreatedAt
}
