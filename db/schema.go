// ABOUTME: Database schema for the remote activity resource
// ABOUTME: Creates the activities table and its indexes
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	dealer_id TEXT NOT NULL,
	activity_date TEXT NOT NULL,
	activity_type TEXT NOT NULL,
	notes TEXT NOT NULL,
	follow_up_date TEXT,
	status_update TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_activities_dealer_id ON activities(dealer_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
