// ABOUTME: Dealer mutations, search and whole-collection persistence
// ABOUTME: Every mutation is applied in memory first and then persisted
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/dealerdesk/models"
)

// DealerInput holds the fields for a new dealer. Empty strings mean absent.
type DealerInput struct {
	Name          string
	Address       string
	Phone         string
	Email         string
	Website       string
	ContactPerson string
	Status        models.Status
	LastContact   *models.Date
	Notes         string
	Extra         map[string]json.RawMessage
}

// DealerPatch is a partial update. Nil fields are left untouched.
type DealerPatch struct {
	Name          *string
	Address       *string
	Phone         *string
	Email         *string
	Website       *string
	ContactPerson *string
	Status        *models.Status
	LastContact   *models.Date
	Notes         *string

	// ClearLastContact sets LastContact to null. It wins over LastContact.
	ClearLastContact bool

	Extra map[string]json.RawMessage
}

// IsEmpty reports whether the patch would change nothing.
func (p DealerPatch) IsEmpty() bool {
	return p.Name == nil && p.Address == nil && p.Phone == nil && p.Email == nil &&
		p.Website == nil && p.ContactPerson == nil && p.Status == nil &&
		p.LastContact == nil && p.Notes == nil && !p.ClearLastContact && len(p.Extra) == 0
}

func (p DealerPatch) setsLastContact() bool {
	return !p.ClearLastContact && p.LastContact != nil && !p.LastContact.IsZero()
}

func (p DealerPatch) setsStatus() bool {
	return p.Status != nil && *p.Status != ""
}

func (p DealerPatch) applyTo(d *models.DealerRecord) {
	if p.Name != nil && *p.Name != "" {
		d.Name = *p.Name
	}
	setString(&d.Address, p.Address)
	setString(&d.Phone, p.Phone)
	setString(&d.Email, p.Email)
	setString(&d.Website, p.Website)
	setString(&d.ContactPerson, p.ContactPerson)
	setString(&d.Notes, p.Notes)

	if p.setsStatus() {
		d.Status = *p.Status
	}

	switch {
	case p.ClearLastContact:
		d.LastContact = nil
	case p.setsLastContact():
		lc := *p.LastContact
		d.LastContact = &lc
	}

	if len(p.Extra) > 0 {
		if d.Extra == nil {
			d.Extra = make(map[string]json.RawMessage, len(p.Extra))
		}
		for k, v := range p.Extra {
			d.Extra[k] = v
		}
	}
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

// AddDealer appends a new dealer and persists the collection. The record is
// kept in memory whatever the save outcome.
func (s *Store) AddDealer(ctx context.Context, in DealerInput) (models.DealerRecord, SaveStatus) {
	now := s.now()
	rec := models.DealerRecord{
		ID:            models.NewID(),
		Name:          in.Name,
		Address:       in.Address,
		Phone:         in.Phone,
		Email:         in.Email,
		Website:       in.Website,
		ContactPerson: in.ContactPerson,
		Status:        in.Status,
		LastContact:   in.LastContact,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if rec.Name == "" {
		rec.Name = models.NewDealerName
	}
	if len(in.Extra) > 0 {
		rec.Extra = make(map[string]json.RawMessage, len(in.Extra))
		for k, v := range in.Extra {
			rec.Extra[k] = v
		}
	}
	rec.Normalize(now)
	rec = rec.Clone()

	s.mu.Lock()
	s.dealers = append(s.dealers, rec)
	s.mu.Unlock()

	s.logger.Debug("dealer added", zap.String("id", rec.ID.String()), zap.String("name", rec.Name))

	status := s.Persist(ctx)
	s.notify(Event{Kind: EventDealerAdded, ID: rec.ID, Status: status})
	return rec.Clone(), status
}

// UpdateDealer merges patch into the dealer with the given id and persists
// the collection. Setting a last-contact date on a dealer that is still
// Not Contacted promotes it to Contacted unless the patch also sets a status.
func (s *Store) UpdateDealer(ctx context.Context, id models.ID, patch DealerPatch) (models.DealerRecord, SaveStatus, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.DealerRecord{}, Unsaved, ErrDealerNotFound
	}

	rec := &s.dealers[i]
	promote := patch.setsLastContact() && !patch.setsStatus() && rec.Status == models.StatusNotContacted

	patch.applyTo(rec)
	if promote {
		rec.Status = models.StatusContacted
	}
	rec.UpdatedAt = s.touch(rec.UpdatedAt)
	updated := rec.Clone()
	s.mu.Unlock()

	if promote {
		s.logger.Debug("dealer promoted to contacted", zap.String("id", id.String()))
	}

	status := s.Persist(ctx)
	s.notify(Event{Kind: EventDealerUpdated, ID: id, Status: status})
	return updated, status, nil
}

// DeleteDealer removes a dealer and persists the collection. Activities that
// reference it are kept.
func (s *Store) DeleteDealer(ctx context.Context, id models.ID) (SaveStatus, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Unsaved, ErrDealerNotFound
	}
	s.dealers = append(s.dealers[:i:i], s.dealers[i+1:]...)
	s.mu.Unlock()

	status := s.Persist(ctx)
	s.notify(Event{Kind: EventDealerDeleted, ID: id, Status: status})
	return status, nil
}

// FilterDealers returns the dealers whose searchable text contains query,
// ignoring case. An empty query returns every dealer.
func (s *Store) FilterDealers(query string) []models.DealerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return cloneDealers(s.dealers)
	}

	needle := strings.ToLower(query)
	var out []models.DealerRecord
	for i := range s.dealers {
		if strings.Contains(s.dealers[i].SearchText(), needle) {
			out = append(out, s.dealers[i].Clone())
		}
	}
	return out
}

// Persist writes the whole dealer collection to the remote resource and then
// mirrors it into the local fallback. The in-memory collection is never
// rolled back.
func (s *Store) Persist(ctx context.Context) SaveStatus {
	snapshot := s.Dealers()

	var remoteErr error
	if s.remote == nil {
		remoteErr = &NetworkError{Op: "save dealers", Err: errOffline}
	} else {
		remoteErr = s.remote.SaveDealers(ctx, snapshot)
	}
	if remoteErr != nil {
		s.logger.Warn("failed to save dealers to remote", zap.Int("dealers", len(snapshot)), zap.Error(remoteErr))
	}

	localErr := s.mirror(ctx, DealersSlot, snapshot)
	if localErr != nil && !errors.Is(localErr, errNoFallback) {
		s.logger.Error("failed to save dealers locally", zap.Error(localErr))
	}

	switch {
	case remoteErr == nil:
		return SavedRemote
	case localErr == nil:
		return SavedLocally
	default:
		return Unsaved
	}
}
