package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealerdesk/db"
	"github.com/harperreed/dealerdesk/models"
)

var importTime = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return importTime }

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const legacyDealers = `{"lastUpdated":"2024-01-01","dealers":[
	{"id":1,"name":"Acme Motors","status":"Contacted","lastContact":"2024-01-02"},
	{"id":1,"name":"Bay Classics"},
	{"name":"No Id Autos","status":""}
]}`

const legacyActivities = `[
	{"id":"a1","dealerId":1,"date":"2024-01-02","type":"call","notes":"Intro call"},
	{"id":"a2","dealerId":1,"type":"email","notes":"Sent brochure","createdAt":"2024-01-03T10:00:00Z"}
]`

func TestImportDealers(t *testing.T) {
	src := t.TempDir()
	dataDir := t.TempDir()

	r, err := run(options{
		DealersPath: writeFile(t, src, "dealers.json", legacyDealers),
		DataDir:     dataDir,
		Backup:      true,
	}, fixedClock)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Dealers)
	assert.Equal(t, 2, r.ReassignedIDs)
	assert.Empty(t, r.BackupPath, "nothing to back up yet")

	dealers, err := db.NewDealerFile(filepath.Join(dataDir, db.DealersFile)).Load()
	require.NoError(t, err)
	require.Len(t, dealers, 3)

	assert.Equal(t, models.ID("1"), dealers[0].ID, "numeric ids are kept as strings")
	assert.NotEqual(t, dealers[0].ID, dealers[1].ID)
	assert.NotEmpty(t, dealers[2].ID)
	assert.Equal(t, models.StatusNotContacted, dealers[2].Status)
	assert.Equal(t, "2024-01-02", dealers[0].LastContact.String())
}

func TestImportBacksUpExistingFile(t *testing.T) {
	src := t.TempDir()
	dataDir := t.TempDir()
	existing := writeFile(t, dataDir, db.DealersFile, `[{"id":"old","name":"Old"}]`)

	r, err := run(options{
		DealersPath: writeFile(t, src, "dealers.json", legacyDealers),
		DataDir:     dataDir,
		Backup:      true,
	}, fixedClock)
	require.NoError(t, err)

	assert.Equal(t, existing+".backup.20240615-120000", r.BackupPath)
	backup, err := os.ReadFile(r.BackupPath)
	require.NoError(t, err)
	assert.Contains(t, string(backup), `"Old"`)
}

func TestImportDryRunWritesNothing(t *testing.T) {
	src := t.TempDir()
	dataDir := filepath.Join(t.TempDir(), "server")

	r, err := run(options{
		DealersPath:    writeFile(t, src, "dealers.json", legacyDealers),
		ActivitiesPath: writeFile(t, src, "activities.json", legacyActivities),
		DataDir:        dataDir,
		DryRun:         true,
		Backup:         true,
	}, fixedClock)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Dealers)
	assert.Equal(t, 2, r.Activities)
	_, err = os.Stat(dataDir)
	assert.True(t, os.IsNotExist(err))
}

func TestImportActivitiesSkipsExisting(t *testing.T) {
	src := t.TempDir()
	dataDir := t.TempDir()
	opts := options{
		ActivitiesPath: writeFile(t, src, "activities.json", legacyActivities),
		DataDir:        dataDir,
	}

	r, err := run(opts, fixedClock)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Activities)

	r, err = run(opts, fixedClock)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Activities)
	assert.Equal(t, 2, r.SkippedActivities)

	database, err := db.OpenDatabase(filepath.Join(dataDir, db.DatabaseFile))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	count, err := db.CountActivities(database)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportRejectsGarbage(t *testing.T) {
	src := t.TempDir()
	_, err := run(options{DealersPath: writeFile(t, src, "dealers.json", `"nope"`), DataDir: t.TempDir()}, fixedClock)
	assert.Error(t, err)

	_, err = run(options{DealersPath: filepath.Join(src, "missing.json")}, fixedClock)
	assert.Error(t, err)
}
