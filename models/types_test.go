// ABOUTME: Tests for dealer directory data models
// ABOUTME: Covers ID decoding, status parsing, normalization and the extension map
package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsULID(t *testing.T) {
	a := NewID()
	b := NewID()

	assert.NotEqual(t, a, b)
	_, err := ulid.Parse(a.String())
	require.NoError(t, err)
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var rec struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a": 1714060000123, "b": "dealer-7", "c": null}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, ID("1714060000123"), rec.A)
	assert.Equal(t, ID("dealer-7"), rec.B)
	assert.Equal(t, ID(""), rec.C)
}

func TestIDRejectsObjects(t *testing.T) {
	var id ID
	err := json.Unmarshal([]byte(`{"x":1}`), &id)
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Not Contacted": StatusNotContacted,
		"not_contacted": StatusNotContacted,
		"follow-up":     StatusFollowUp,
		"SOLD":          StatusSold,
		" scheduled ":   StatusScheduled,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatus("Interested")
	assert.Error(t, err)
}

func TestStatusSlug(t *testing.T) {
	assert.Equal(t, "follow-up", StatusFollowUp.Slug())
	assert.Equal(t, "not-contacted", Status("").Slug())
}

func TestActivityTypeLabel(t *testing.T) {
	assert.Equal(t, "Test Drive", ActivityTestDrive.Label())
	assert.Equal(t, "offer", ActivityType("offer").Label())

	got, err := ParseActivityType("test-drive")
	require.NoError(t, err)
	assert.Equal(t, ActivityTestDrive, got)
}

func TestDealerNormalizeFillsDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := DealerRecord{Name: "Acme Motors"}

	d.Normalize(now)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Acme Motors", d.Name)
	assert.Equal(t, StatusNotContacted, d.Status)
	assert.Equal(t, "", d.Notes)
	assert.Nil(t, d.LastContact)
	assert.Equal(t, now, d.CreatedAt)
	assert.Equal(t, now, d.UpdatedAt)

	id := d.ID
	d.Normalize(now.Add(time.Hour))
	assert.Equal(t, id, d.ID, "normalize must be idempotent")
	assert.Equal(t, now, d.UpdatedAt)
}

func TestDealerNormalizePlaceholderName(t *testing.T) {
	var d DealerRecord
	d.Normalize(time.Now())
	assert.Equal(t, UnnamedDealer, d.Name)
}

func TestDealerExtraRoundTrip(t *testing.T) {
	input := `{"id":"d1","name":"Bay Classics","status":"Contacted","lastContact":"2024-01-01","region":"west","tags":["porsche"]}`

	var d DealerRecord
	require.NoError(t, json.Unmarshal([]byte(input), &d))

	assert.Equal(t, ID("d1"), d.ID)
	require.NotNil(t, d.LastContact)
	assert.Equal(t, "2024-01-01", d.LastContact.String())
	require.Len(t, d.Extra, 2)
	assert.JSONEq(t, `"west"`, string(d.Extra["region"]))

	out, err := json.Marshal(d)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "west", back["region"])
	assert.Equal(t, "2024-01-01", back["lastContact"])
	assert.Equal(t, "Bay Classics", back["name"])
}

func TestDealerExtraCannotShadowKnownFields(t *testing.T) {
	d := DealerRecord{
		ID:    "d1",
		Name:  "Real Name",
		Extra: map[string]json.RawMessage{"name": json.RawMessage(`"Impostor"`)},
	}

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), `"Real Name"`))
	assert.False(t, strings.Contains(string(out), "Impostor"))
}

func TestDealerCloneIsDeep(t *testing.T) {
	lc := NewDate(2024, 1, 1)
	d := DealerRecord{
		ID:          "d1",
		LastContact: &lc,
		Extra:       map[string]json.RawMessage{"k": json.RawMessage(`1`)},
	}

	c := d.Clone()
	c.LastContact.Time = c.LastContact.AddDate(0, 0, 1)
	c.Extra["k"] = json.RawMessage(`2`)

	assert.Equal(t, "2024-01-01", d.LastContact.String())
	assert.Equal(t, json.RawMessage(`1`), d.Extra["k"])
}

func TestSearchTextCoversFields(t *testing.T) {
	d := DealerRecord{
		Name:          "Acme",
		Address:       "1 Main St",
		ContactPerson: "Jo",
		Phone:         "555",
		Email:         "JO@ACME.COM",
		Status:        StatusFollowUp,
		Notes:         "likes 993s",
	}
	text := d.SearchText()
	for _, want := range []string{"acme", "main st", "jo@acme.com", "follow up", "993s", "555"} {
		assert.Contains(t, text, want)
	}
}

func TestActivityNormalize(t *testing.T) {
	now := time.Now().UTC()
	empty := Date{}
	a := ActivityEntry{DealerID: "d1", FollowUpDate: &empty}

	a.Normalize(now)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, now, a.CreatedAt)
	assert.Nil(t, a.FollowUpDate)
	assert.Equal(t, now, a.When())
}
