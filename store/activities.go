// ABOUTME: Activity log operations for the dealer directory store
// ABOUTME: Validates new entries, appends remotely and falls back to local construction
package store

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harperreed/dealerdesk/models"
)

// ActivityInput is a new activity entry as submitted by an operator.
type ActivityInput struct {
	DealerID     models.ID           `json:"dealerId" validate:"required"`
	Date         *models.Date        `json:"date" validate:"required"`
	Type         models.ActivityType `json:"type" validate:"required"`
	Notes        string              `json:"notes" validate:"required"`
	FollowUpDate *models.Date        `json:"followUpDate"`
	StatusUpdate string              `json:"statusUpdate"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports the first missing required field, in dealerId, date,
// type, notes order.
func (in ActivityInput) Validate() error {
	if in.Date != nil && in.Date.IsZero() {
		in.Date = nil
	}
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field()}
	}
	return err
}

// AddActivity validates and records a new activity. When the remote append
// fails the entry is built locally and reported as SavedLocally.
func (s *Store) AddActivity(ctx context.Context, in ActivityInput) (models.ActivityEntry, SaveStatus, error) {
	if err := in.Validate(); err != nil {
		return models.ActivityEntry{}, Unsaved, err
	}

	entry := models.ActivityEntry{
		DealerID:     in.DealerID,
		Date:         in.Date,
		Type:         in.Type,
		Notes:        in.Notes,
		FollowUpDate: in.FollowUpDate,
		StatusUpdate: in.StatusUpdate,
	}

	status := SavedRemote
	saved, err := s.appendRemote(ctx, entry)
	switch {
	case err != nil:
		s.logger.Warn("failed to save activity to remote, keeping it locally",
			zap.String("dealer_id", in.DealerID.String()), zap.Error(err))
		status = SavedLocally
	case saved != nil:
		entry = *saved
	}
	entry.Normalize(s.now())

	s.mu.Lock()
	s.activities = append([]models.ActivityEntry{entry}, s.activities...)
	snapshot := make([]models.ActivityEntry, len(s.activities))
	copy(snapshot, s.activities)
	s.mu.Unlock()

	if mirrorErr := s.mirror(ctx, ActivitiesSlot, snapshot); mirrorErr != nil {
		if !errors.Is(mirrorErr, errNoFallback) {
			s.logger.Error("failed to save activities locally", zap.Error(mirrorErr))
		}
		if status == SavedLocally {
			status = Unsaved
		}
	}

	s.notify(Event{Kind: EventActivityAdded, ID: entry.ID, Status: status})
	return entry, status, nil
}

func (s *Store) appendRemote(ctx context.Context, entry models.ActivityEntry) (*models.ActivityEntry, error) {
	if s.remote == nil {
		return nil, &NetworkError{Op: "append activity", Err: errOffline}
	}
	return s.remote.AppendActivity(ctx, entry)
}
