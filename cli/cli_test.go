package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/dealerdesk/config"
	"github.com/harperreed/dealerdesk/db"
	"github.com/harperreed/dealerdesk/localstore"
	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
	"github.com/harperreed/dealerdesk/web"
)

// captureOutput redirects command output for the duration of a test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func fixedNow(t *testing.T) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = prev })
}

// setupTestCLI returns an offline store backed by an in-memory fallback.
func setupTestCLI(t *testing.T) *store.Store {
	t.Helper()
	fb, err := localstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fb.Close() })

	s := store.New(nil, store.WithFallback(fb))
	s.Initialize(context.Background())
	return s
}

func TestAddDealerCommand(t *testing.T) {
	s := setupTestCLI(t)
	buf := captureOutput(t)

	err := AddDealerCommand(s, []string{"--name", "Acme Motors", "--contact", "Jo", "--status", "follow up"})
	require.NoError(t, err)

	dealers := s.Dealers()
	require.Len(t, dealers, 1)
	assert.Equal(t, "Acme Motors", dealers[0].Name)
	assert.Equal(t, models.StatusFollowUp, dealers[0].Status)

	assert.Contains(t, buf.String(), "✓ Dealer created: Acme Motors")
	assert.Contains(t, buf.String(), "saved locally only")
	assert.Contains(t, buf.String(), "Contact: Jo")
}

func TestAddDealerCommandRejectsBadInput(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)

	assert.Error(t, AddDealerCommand(s, []string{"--status", "maybe"}))
	assert.Error(t, AddDealerCommand(s, []string{"--last-contact", "yesterday"}))
	assert.Error(t, AddDealerCommand(s, []string{"--bogus"}))
	assert.Empty(t, s.Dealers())
}

func TestListDealersCommand(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Acme Motors"}))
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Bay Classics", "--status", "Sold"}))

	buf := captureOutput(t)
	require.NoError(t, ListDealersCommand(s, []string{"--query", "ACME"}))
	assert.Contains(t, buf.String(), "Acme Motors")
	assert.NotContains(t, buf.String(), "Bay Classics")
	assert.Contains(t, buf.String(), "Total: 1 dealer(s)")

	buf.Reset()
	require.NoError(t, ListDealersCommand(s, []string{"--status", "sold"}))
	assert.Contains(t, buf.String(), "Bay Classics")
	assert.NotContains(t, buf.String(), "Acme Motors")

	buf.Reset()
	require.NoError(t, ListDealersCommand(s, []string{"--query", "nobody"}))
	assert.Contains(t, buf.String(), "No dealers found")
}

func TestListDealersSortRecent(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Never Called"}))
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Older Call", "--last-contact", "2024-01-10"}))
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Latest Call", "--last-contact", "2024-06-01"}))

	buf := captureOutput(t)
	require.NoError(t, ListDealersCommand(s, []string{"--sort", "recent"}))
	text := buf.String()
	latest := strings.Index(text, "Latest Call")
	older := strings.Index(text, "Older Call")
	never := strings.Index(text, "Never Called")
	assert.True(t, latest < older && older < never, "most recent contact first:\n%s", text)

	assert.Error(t, ListDealersCommand(s, []string{"--sort", "oldest"}))
}

func TestSortDealersByName(t *testing.T) {
	dealers := []models.DealerRecord{{Name: "bay"}, {Name: "Acme"}, {Name: "Coast"}}
	require.NoError(t, sortDealers(dealers, "name"))
	assert.Equal(t, "Acme", dealers[0].Name)
	assert.Equal(t, "bay", dealers[1].Name)
	assert.Equal(t, "Coast", dealers[2].Name)
}

func TestUpdateDealerCommand(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Acme Motors", "--phone", "555-0100"}))
	id := s.Dealers()[0].ID.String()

	buf := captureOutput(t)
	require.NoError(t, UpdateDealerCommand(s, []string{"--last-contact", "2024-06-01", id}))

	d, ok := s.Dealer(models.ID(id))
	require.True(t, ok)
	assert.Equal(t, models.StatusContacted, d.Status, "last contact promotes")
	assert.Equal(t, "2024-06-01", d.LastContact.String())
	assert.Equal(t, "555-0100", d.Phone, "unset flags are left alone")
	assert.Contains(t, buf.String(), "✓ Dealer updated: Acme Motors")

	// An explicitly empty flag clears the field.
	require.NoError(t, UpdateDealerCommand(s, []string{"--phone", "", "--clear-last-contact", id}))
	d, _ = s.Dealer(models.ID(id))
	assert.Empty(t, d.Phone)
	assert.Nil(t, d.LastContact)
}

func TestUpdateDealerCommandErrors(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Acme Motors"}))
	id := s.Dealers()[0].ID.String()

	assert.EqualError(t, UpdateDealerCommand(s, []string{"--name", "X"}), "dealer ID required")
	assert.EqualError(t, UpdateDealerCommand(s, []string{id}), "nothing to update")
	assert.EqualError(t, UpdateDealerCommand(s, []string{"--name", "X", "missing"}), "dealer not found: missing")
	assert.Error(t, UpdateDealerCommand(s, []string{"--status", "nope", id}))
}

func TestDeleteDealerCommand(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Acme Motors"}))
	id := s.Dealers()[0].ID.String()

	buf := captureOutput(t)
	require.NoError(t, DeleteDealerCommand(s, []string{id}))
	assert.Contains(t, buf.String(), "Dealer deleted: Acme Motors")
	assert.Empty(t, s.Dealers())

	assert.EqualError(t, DeleteDealerCommand(s, []string{id}), "dealer not found: "+id)
}

func TestLogActivityCommand(t *testing.T) {
	fixedNow(t)
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Acme Motors"}))
	id := s.Dealers()[0].ID.String()

	buf := captureOutput(t)
	err := LogActivityCommand(s, []string{"--dealer", id, "--type", "test-drive", "--notes", "Took the roadster out", "--follow-up", "2024-06-20"})
	require.NoError(t, err)

	activities := s.Activities()
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityTestDrive, activities[0].Type)
	assert.Equal(t, "2024-06-15", activities[0].Date.String(), "date defaults to today")
	assert.Contains(t, buf.String(), "Logged Test Drive with Acme Motors on 2024-06-15")
	assert.Contains(t, buf.String(), "Follow up: 2024-06-20")
}

func TestLogActivityCommandRequiresFields(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)

	assert.EqualError(t, LogActivityCommand(s, []string{"--notes", "hi"}), "--dealer is required")
	assert.EqualError(t, LogActivityCommand(s, []string{"--dealer", "d1"}), "--notes is required")
	assert.Error(t, LogActivityCommand(s, []string{"--dealer", "d1", "--notes", "x", "--type", "fax"}))
	assert.Empty(t, s.Activities())
}

func TestListActivitiesCommand(t *testing.T) {
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Acme Motors"}))
	id := s.Dealers()[0].ID.String()
	require.NoError(t, LogActivityCommand(s, []string{"--dealer", id, "--date", "2024-06-01", "--notes", "First call"}))
	require.NoError(t, LogActivityCommand(s, []string{"--dealer", "gone", "--date", "2024-06-02", "--notes", "Orphan"}))

	buf := captureOutput(t)
	require.NoError(t, ListActivitiesCommand(s, []string{"--dealer", id}))
	assert.Contains(t, buf.String(), "First call")
	assert.NotContains(t, buf.String(), "Orphan")

	buf.Reset()
	require.NoError(t, ListActivitiesCommand(s, nil))
	assert.Contains(t, buf.String(), models.UnknownDealer)
	assert.Contains(t, buf.String(), "Total: 2 activit(ies)")
}

func TestVizCommands(t *testing.T) {
	fixedNow(t)
	s := setupTestCLI(t)
	captureOutput(t)
	require.NoError(t, AddDealerCommand(s, []string{"--name", "Acme Motors"}))
	id := s.Dealers()[0].ID.String()

	buf := captureOutput(t)
	require.NoError(t, VizDashboardCommand(s, nil))
	assert.Contains(t, buf.String(), "DEALER OUTREACH DASHBOARD")

	path := filepath.Join(t.TempDir(), "pipeline.dot")
	require.NoError(t, VizGraphPipelineCommand(s, []string{"--output", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Acme Motors")

	buf.Reset()
	require.NoError(t, VizGraphDealerCommand(s, []string{id}))
	assert.Contains(t, buf.String(), "Acme Motors")
	assert.Error(t, VizGraphDealerCommand(s, nil))
}

func TestOpenAppAgainstServer(t *testing.T) {
	dir := t.TempDir()
	database, err := db.OpenDatabase(filepath.Join(dir, "server", db.DatabaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	dealerFile := db.NewDealerFile(filepath.Join(dir, "server", db.DealersFile))
	srv := httptest.NewServer(web.NewServer(database, dealerFile, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.RemoteURL = srv.URL
	cfg.FallbackDir = filepath.Join(dir, "fallback")
	cfg.LogLevel = "error"

	app, err := OpenApp(context.Background(), cfg, filepath.Join(dir, "logs", "dealerdesk.log"))
	require.NoError(t, err)
	assert.Equal(t, store.SourceRemote, app.Report.Dealers.Source)

	buf := captureOutput(t)
	require.NoError(t, AddDealerCommand(app.Store, []string{"--name", "Acme Motors"}))
	assert.NotContains(t, buf.String(), "saved locally only")

	onDisk, err := dealerFile.Load()
	require.NoError(t, err)
	require.Len(t, onDisk, 1)
	assert.Equal(t, "Acme Motors", onDisk[0].Name)

	buf.Reset()
	require.NoError(t, StatusCommand(app))
	assert.Contains(t, buf.String(), "loaded from remote")
	assert.Contains(t, buf.String(), store.DealersSlot)
	require.NoError(t, app.Close())
}

func TestOpenAppOffline(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Offline = true
	cfg.FallbackDir = filepath.Join(dir, "fallback")
	cfg.LogLevel = "error"

	app, err := OpenApp(context.Background(), cfg, filepath.Join(dir, "dealerdesk.log"))
	require.NoError(t, err)
	assert.Equal(t, store.SourceEmpty, app.Report.Dealers.Source)

	buf := captureOutput(t)
	require.NoError(t, StatusCommand(app))
	assert.Contains(t, buf.String(), "Mode:      offline")
	require.NoError(t, app.Close())
}
