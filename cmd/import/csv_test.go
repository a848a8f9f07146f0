package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealerdesk/db"
	"github.com/harperreed/dealerdesk/models"
)

func TestDecodeDealersCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []models.DealerRecord
		skipped int
	}{
		{
			name:  "plain row",
			input: "Name,Phone,Status\nAcme Motors,555-0100,Contacted\n",
			want:  []models.DealerRecord{{Name: "Acme Motors", Phone: "555-0100", Status: models.StatusContacted}},
		},
		{
			name:  "quoted commas",
			input: "name,address,contact person\n\"Bay Classics\",\"12 Pier Rd, Suite 4, Oakland\",Jo Park\n",
			want:  []models.DealerRecord{{Name: "Bay Classics", Address: "12 Pier Rd, Suite 4, Oakland", ContactPerson: "Jo Park"}},
		},
		{
			name:  "escaped quotes",
			input: "Name,Notes\n\"Coastline \"\"Classic\"\" Cars\",\"Said \"\"call back\"\", later\"\n",
			want:  []models.DealerRecord{{Name: `Coastline "Classic" Cars`, Notes: `Said "call back", later`}},
		},
		{
			name:  "header variants and dates",
			input: "Dealer Name,last_contact,Contact-Person\nDelta Autos,2024-05-01,Sam\n",
			want: []models.DealerRecord{{
				Name:          "Delta Autos",
				LastContact:   datePtr(t, "2024-05-01"),
				ContactPerson: "Sam",
			}},
		},
		{
			name:    "short rows are skipped",
			input:   "Name,Phone\nEcho Cars,555-0101\nBroken Row\n\nFoxtrot Motors,555-0102\n",
			want:    []models.DealerRecord{{Name: "Echo Cars", Phone: "555-0101"}, {Name: "Foxtrot Motors", Phone: "555-0102"}},
			skipped: 1,
		},
		{
			name:  "header only",
			input: "Name,Phone\n",
		},
		{
			name: "empty file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := decodeDealersCSV([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.skipped, skipped)
		})
	}
}

func TestDecodeDealersCSVKeepsUnknownColumns(t *testing.T) {
	got, _, err := decodeDealersCSV([]byte("Name,Region,Fax\nAcme Motors,North,\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.Contains(t, got[0].Extra, "Region")
	var region string
	require.NoError(t, json.Unmarshal(got[0].Extra["Region"], &region))
	assert.Equal(t, "North", region)
	assert.NotContains(t, got[0].Extra, "Fax", "empty values are dropped")
}

func TestDecodeDealersCSVRejectsBadValues(t *testing.T) {
	_, _, err := decodeDealersCSV([]byte("Name,Status\nAcme,Maybe\n"))
	assert.ErrorContains(t, err, `column "Status"`)

	_, _, err = decodeDealersCSV([]byte("Name,Last Contact\nAcme,someday\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestDealerFormat(t *testing.T) {
	tests := []struct {
		format, path, want string
	}{
		{"", "dealers.json", formatJSON},
		{"", "data/dealers.dat", formatCSV},
		{"", "export.CSV", formatCSV},
		{"csv", "dealers.json", formatCSV},
		{"JSON", "dealers.dat", formatJSON},
	}
	for _, tt := range tests {
		got, err := dealerFormat(tt.format, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.format, tt.path)
	}

	_, err := dealerFormat("xml", "dealers.xml")
	assert.Error(t, err)
}

func TestImportDealersFromCSV(t *testing.T) {
	src := t.TempDir()
	dataDir := t.TempDir()

	csvBody := "id,name,address,status\n" +
		"7,Acme Motors,\"1 Main St, Springfield\",Follow Up\n" +
		"7,Bay Classics,,\n" +
		"Incomplete\n"

	r, err := run(options{
		DealersPath: writeFile(t, src, "dealers.dat", csvBody),
		DataDir:     dataDir,
	}, fixedClock)
	require.NoError(t, err)

	assert.Equal(t, 2, r.Dealers)
	assert.Equal(t, 1, r.SkippedDealers)
	assert.Equal(t, 1, r.ReassignedIDs)

	dealers, err := db.NewDealerFile(filepath.Join(dataDir, db.DealersFile)).Load()
	require.NoError(t, err)
	require.Len(t, dealers, 2)
	assert.Equal(t, models.ID("7"), dealers[0].ID)
	assert.Equal(t, "1 Main St, Springfield", dealers[0].Address)
	assert.Equal(t, models.StatusFollowUp, dealers[0].Status)
	assert.Equal(t, models.StatusNotContacted, dealers[1].Status)
	assert.True(t, importTime.Equal(dealers[1].CreatedAt))
}

func datePtr(t *testing.T, s string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return &d
}
