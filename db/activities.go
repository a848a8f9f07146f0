// ABOUTME: Database operations for the activity log
// ABOUTME: Append-only inserts and most-recent-first listing
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/dealerdesk/models"
)

// CreateActivity inserts an entry. The caller assigns the id and createdAt.
func CreateActivity(db *sql.DB, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("activity id is required")
	}
	if entry.Date == nil {
		return fmt.Errorf("activity date is required")
	}

	query := `
		INSERT INTO activities (
			id, dealer_id, activity_date, activity_type, notes,
			follow_up_date, status_update, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var followUp sql.NullString
	if entry.FollowUpDate != nil {
		followUp = sql.NullString{String: entry.FollowUpDate.String(), Valid: true}
	}

	_, err := db.Exec(query,
		entry.ID.String(),
		entry.DealerID.String(),
		entry.Date.String(),
		string(entry.Type),
		entry.Notes,
		followUp,
		entry.StatusUpdate,
		entry.CreatedAt.UTC(),
	)
	return err
}

// ListActivities returns entries most recent first. A limit of zero or less
// returns every entry.
func ListActivities(db *sql.DB, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, dealer_id, activity_date, activity_type, notes,
		       follow_up_date, status_update, created_at
		FROM activities
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	activities := []models.ActivityEntry{}
	for rows.Next() {
		var (
			a                      models.ActivityEntry
			id, dealerID, date     string
			activityType           string
			followUp, statusUpdate sql.NullString
		)
		err := rows.Scan(&id, &dealerID, &date, &activityType, &a.Notes, &followUp, &statusUpdate, &a.CreatedAt)
		if err != nil {
			return nil, err
		}

		a.ID = models.ID(id)
		a.DealerID = models.ID(dealerID)
		a.Type = models.ActivityType(activityType)
		a.StatusUpdate = statusUpdate.String

		if d, err := models.ParseDate(date); err == nil {
			a.Date = &d
		}
		if followUp.Valid && followUp.String != "" {
			if d, err := models.ParseDate(followUp.String); err == nil {
				a.FollowUpDate = &d
			}
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// CountActivities returns the number of stored entries.
func CountActivities(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}
