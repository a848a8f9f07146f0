package db

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealerdesk/models"
)

func TestDealerFileMissingIsEmpty(t *testing.T) {
	f := NewDealerFile(filepath.Join(t.TempDir(), DealersFile))

	dealers, err := f.Load()
	require.NoError(t, err)
	assert.NotNil(t, dealers)
	assert.Empty(t, dealers)
}

func TestDealerFileSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", DealersFile)
	f := NewDealerFile(path)
	f.now = func() time.Time { return time.Date(2024, 7, 4, 8, 0, 0, 0, time.UTC) }

	in := []models.DealerRecord{
		{ID: "1", Name: "Acme", Extra: map[string]json.RawMessage{"region": json.RawMessage(`"west"`)}},
		{ID: "2", Name: "Bay Classics"},
	}
	require.NoError(t, f.Save(in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc DealerDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "2024-07-04", doc.LastUpdated)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not linger")

	out, err := f.Load()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Acme", out[0].Name)
	assert.JSONEq(t, `"west"`, string(out[0].Extra["region"]))
}

func TestDecodeDealersShapes(t *testing.T) {
	bare, err := DecodeDealers([]byte(`[{"id": 1, "name": "A"}]`))
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.Equal(t, models.ID("1"), bare[0].ID)

	wrapped, err := DecodeDealers([]byte(`{"lastUpdated": "2024-01-01", "dealers": []}`))
	require.NoError(t, err)
	assert.Empty(t, wrapped)

	_, err = DecodeDealers([]byte(`{"items": []}`))
	assert.Error(t, err)

	_, err = DecodeDealers([]byte(`not json`))
	assert.Error(t, err)
}
