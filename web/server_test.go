// ABOUTME: Tests for the dealer and activity resource server
// ABOUTME: Exercises the handlers directly and through the remote client

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealerdesk/db"
	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/remote"
	"github.com/harperreed/dealerdesk/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	database, err := db.OpenDatabase(filepath.Join(dir, db.DatabaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return NewServer(database, db.NewDealerFile(filepath.Join(dir, db.DealersFile)), nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestDealersStartEmpty(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, remote.DefaultDealersPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dealers": []}`, rec.Body.String())
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}

func TestSaveDealersRoundTrip(t *testing.T) {
	s := newTestServer(t)

	body := `{"lastUpdated":"2024-01-01","dealers":[{"id":"1","name":"Acme","tier":"gold"},{"id":"2","name":"Bay"}]}`
	rec := do(t, s, http.MethodPost, remote.DefaultDealersPath, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved": 2}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, remote.DefaultDealersPath, "")
	var got struct {
		Dealers []map[string]any `json:"dealers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Dealers, 2)
	assert.Equal(t, "gold", got.Dealers[0]["tier"])
}

func TestSaveDealersRejectsBadBody(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, remote.DefaultDealersPath, `{"items": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateActivity(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, remote.DefaultActivitiesPath,
		`{"dealerId": 42, "date": "2024-03-01", "type": "call", "notes": "intro call", "followUpDate": ""}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Activity models.ActivityEntry `json:"activity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Activity.ID)
	assert.Equal(t, models.ID("42"), resp.Activity.DealerID)
	assert.False(t, resp.Activity.CreatedAt.IsZero())
	assert.Nil(t, resp.Activity.FollowUpDate)

	rec = do(t, s, http.MethodGet, remote.DefaultActivitiesPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Activities []models.ActivityEntry `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Activities, 1)
	assert.Equal(t, resp.Activity.ID, list.Activities[0].ID)
}

func TestCreateActivityValidation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, remote.DefaultActivitiesPath, `{"dealerId": "1", "date": "2024-03-01", "type": "call"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes is required")

	rec = do(t, s, http.MethodPost, remote.DefaultActivitiesPath, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreAgainstServer(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	client := remote.NewClient(remote.Config{BaseURL: srv.URL}, nil)
	st := store.New(client)

	report := st.Initialize(ctx)
	assert.Equal(t, store.SourceRemote, report.Dealers.Source)
	assert.Equal(t, store.SourceRemote, report.Activities.Source)

	rec, status := st.AddDealer(ctx, store.DealerInput{Name: "Acme Motors"})
	assert.Equal(t, store.SavedRemote, status)

	d := models.NewDate(2024, 1, 1)
	_, status, err := st.UpdateDealer(ctx, rec.ID, store.DealerPatch{LastContact: &d})
	require.NoError(t, err)
	assert.Equal(t, store.SavedRemote, status)

	entry, status, err := st.AddActivity(ctx, store.ActivityInput{
		DealerID: rec.ID, Date: &d, Type: models.ActivityCall, Notes: "first call",
	})
	require.NoError(t, err)
	assert.Equal(t, store.SavedRemote, status)
	assert.NotEmpty(t, entry.ID)

	fresh := store.New(client)
	fresh.Initialize(ctx)
	dealers := fresh.Dealers()
	require.Len(t, dealers, 1)
	assert.Equal(t, models.StatusContacted, dealers[0].Status)
	require.Len(t, fresh.Activities(), 1)
	assert.Equal(t, entry.ID, fresh.Activities()[0].ID)
	assert.Equal(t, "Acme Motors", fresh.DealerName(fresh.Activities()[0].DealerID))
}
