package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLayouts(t *testing.T) {
	for _, in := range []string{
		"2024-01-01",
		"2024-01-01T09:30",
		"2024-01-01T09:30:00Z",
		"2024-01-01T09:30:00.123Z",
		"2024-01-01T09:30:00-07:00",
	} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2024, d.Year(), in)
	}

	_, err := ParseDate("01/02/2024")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 9)
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09"`, string(out))

	withClock := Date{Time: time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)}
	out, err = json.Marshal(withClock)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09T14:05:00Z"`, string(out))

	var back Date
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.Equal(withClock.Time))
}

func TestDateEmptyValues(t *testing.T) {
	var holder struct {
		A *Date `json:"a"`
		B *Date `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": null, "b": ""}`), &holder))
	assert.Nil(t, holder.A)
	require.NotNil(t, holder.B)
	assert.True(t, holder.B.IsZero())

	out, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
