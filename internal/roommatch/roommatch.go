// Package roommatch resolves free-text room references such as "Rm. 1234" or
// "#1234-A" against the room inventory.
package roommatch

import (
	"regexp"
	"strings"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

// Match strategies reported in models.RoomMatch.
const (
	StrategyExact  = "exact"
	StrategyDigits = "digits"
)

var (
	prefixRe      = regexp.MustCompile(`^(?:COURTROOM|CRTRM|CTRM|ROOM|RM)\.?\s*(?:NO\.?\s*)?#?\s*|^#\s*`)
	nonAlnumRe    = regexp.MustCompile(`[^A-Z0-9]`)
	nonDigitRe    = regexp.MustCompile(`[^0-9]`)
	leadingDigits = regexp.MustCompile(`^\d+`)
)

// Normalize reduces a room reference to its canonical key: upper case, without a
// "Room"/"Rm"/"#" prefix, spaces, dashes or dots. "Rm. 1234-a" becomes "1234A".
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = prefixRe.ReplaceAllString(s, "")
	return nonAlnumRe.ReplaceAllString(s, "")
}

// Digits returns the leading digit run of a normalized key, or every digit when
// the key does not start with one.
func Digits(normalized string) string {
	if d := leadingDigits.FindString(normalized); d != "" {
		return d
	}
	return nonDigitRe.ReplaceAllString(normalized, "")
}

// Index is an immutable lookup table over a snapshot of rooms.
type Index struct {
	rooms  []models.RoomDetail
	byID   map[string]int
	exact  map[string][]int
	digits map[string][]int
}

// NewIndex builds an index over rooms.
func NewIndex(rooms []models.RoomDetail) *Index {
	idx := &Index{
		rooms:  rooms,
		byID:   make(map[string]int, len(rooms)),
		exact:  make(map[string][]int, len(rooms)),
		digits: make(map[string][]int, len(rooms)),
	}
	for i, room := range rooms {
		idx.byID[room.ID] = i
		key := Normalize(room.RoomNumber)
		if key == "" {
			continue
		}
		idx.exact[key] = append(idx.exact[key], i)
		if d := Digits(key); d != "" {
			idx.digits[d] = append(idx.digits[d], i)
		}
	}
	return idx
}

// Len reports how many rooms the index holds.
func (i *Index) Len() int {
	return len(i.rooms)
}

// Room returns the indexed room with the given id.
func (i *Index) Room(id string) (*models.RoomDetail, bool) {
	pos, ok := i.byID[id]
	if !ok {
		return nil, false
	}
	return &i.rooms[pos], true
}

// Match resolves query to a single room. An exact normalized match wins; otherwise
// the digits are compared and only an unambiguous hit is returned.
func (i *Index) Match(query string) models.RoomMatch {
	result := models.RoomMatch{Query: query, Normalized: Normalize(query)}
	if result.Normalized == "" {
		return result
	}
	if hits := i.exact[result.Normalized]; len(hits) == 1 {
		room := i.rooms[hits[0]]
		result.Room = &room
		result.Strategy = StrategyExact
		return result
	} else if len(hits) > 1 {
		return result
	}
	d := Digits(result.Normalized)
	if d == "" {
		return result
	}
	if hits := i.digits[d]; len(hits) == 1 {
		room := i.rooms[hits[0]]
		result.Room = &room
		result.Strategy = StrategyDigits
	}
	return result
}
