package roommatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Room 1234":     "1234",
		"Rm. 1234":      "1234",
		"rm 1234":       "1234",
		"#1234A":        "1234A",
		"1234-A":        "1234A",
		" room no. 5":   "5",
		"Courtroom 300": "300",
		"Ctrm. 1234A":   "1234A",
		"1234 a":        "1234A",
		"":              "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Normalize(input), input)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "1234", Digits("1234A"))
	assert.Equal(t, "12", Digits("B12"))
	assert.Equal(t, "", Digits("LOBBY"))
}

func room(id, number string) models.RoomDetail {
	return models.RoomDetail{Room: models.Room{ID: id, RoomNumber: number}}
}

func TestIndexMatchExact(t *testing.T) {
	idx := NewIndex([]models.RoomDetail{room("r1", "1234A"), room("r2", "1234B"), room("r3", "300")})

	match := idx.Match("Rm. 1234-a")
	require.NotNil(t, match.Room)
	assert.Equal(t, "r1", match.Room.ID)
	assert.Equal(t, StrategyExact, match.Strategy)
	assert.Equal(t, "1234A", match.Normalized)
}

func TestIndexMatchDigitsUnambiguous(t *testing.T) {
	idx := NewIndex([]models.RoomDetail{room("r1", "1234A"), room("r3", "300")})

	match := idx.Match("Room 1234")
	require.NotNil(t, match.Room)
	assert.Equal(t, "r1", match.Room.ID)
	assert.Equal(t, StrategyDigits, match.Strategy)
}

func TestIndexMatchDigitsAmbiguous(t *testing.T) {
	idx := NewIndex([]models.RoomDetail{room("r1", "1234A"), room("r2", "1234B")})

	match := idx.Match("1234")
	assert.Nil(t, match.Room)
	assert.Empty(t, match.Strategy)
}

func TestIndexMatchNoInput(t *testing.T) {
	idx := NewIndex(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Match("  ").Room)
	assert.Nil(t, idx.Match("999").Room)
}

func TestIndexRoomByID(t *testing.T) {
	idx := NewIndex([]models.RoomDetail{room("r1", "1234A"), room("r2", "300")})

	got, ok := idx.Room("r2")
	require.True(t, ok)
	assert.Equal(t, "300", got.RoomNumber)

	_, ok = idx.Room("gone")
	assert.False(t, ok)
}
