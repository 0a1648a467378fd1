package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction_PlainJSON(t *testing.T) {
	ext, err := parseExtraction(`{
		"event_name": "Dune",
		"venue": "PVR Phoenix",
		"datetime": "2026-10-01T19:30:00",
		"original_price": 300,
		"seat_numbers": ["A1", "A2"],
		"count": 2,
		"city": "Mumbai"
	}`)
	require.NoError(t, err)

	require.NotNil(t, ext.EventName)
	assert.Equal(t, "Dune", *ext.EventName)
	assert.Equal(t, "PVR Phoenix", ext.Venue)
	assert.Equal(t, []string{"A1", "A2"}, ext.SeatNumbers)
	assert.Equal(t, 2, ext.Count)
	require.NotNil(t, ext.OriginalPrice)
	assert.Equal(t, 300.0, *ext.OriginalPrice)
}

func TestParseExtraction_CodeFencedReply(t *testing.T) {
	reply := "Here is the extracted data:\n```json\n" +
		`{"event_name": null, "venue": "INOX", "datetime": null, "original_price": null, "seat_numbers": ["F4"], "count": 1, "city": "Pune"}` +
		"\n```"

	ext, err := parseExtraction(reply)
	require.NoError(t, err)

	assert.Nil(t, ext.EventName)
	assert.Nil(t, ext.ShowTime)
	assert.Nil(t, ext.OriginalPrice)
	assert.Equal(t, "Pune", ext.City)
}

func TestParseExtraction_NoJSON(t *testing.T) {
	_, err := parseExtraction("the image was unreadable")
	assert.Error(t, err)
}

func TestBuildPrompt_ClosedVocabulary(t *testing.T) {
	prompt := buildPrompt("SOME OCR TEXT", []string{"Dune", "Zootopia"})

	assert.Contains(t, prompt, `"Dune", "Zootopia"`)
	assert.Contains(t, prompt, "SOME OCR TEXT")
	assert.Contains(t, prompt, "set event_name to null")
}
