package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPlayer is returned when a roster record fails boundary validation.
var ErrInvalidPlayer = errors.New("invalid player record")

// Position is one of the four AFL fantasy positions.
type Position string

const (
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Ruck       Position = "RUC"
	Forward    Position = "FWD"
)

// ParsePosition accepts the short codes and the long names, case-insensitive.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "def", "defender":
		return Defender, nil
	case "mid", "midfielder":
		return Midfielder, nil
	case "ruc", "ruck":
		return Ruck, nil
	case "fwd", "forward":
		return Forward, nil
	}
	return "", fmt.Errorf("%w: unknown position %q", ErrInvalidPlayer, s)
}

func (p Position) Valid() bool {
	switch p {
	case Defender, Midfielder, Ruck, Forward:
		return true
	}
	return false
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: position must be a string", ErrInvalidPlayer)
	}
	pos, err := ParsePosition(s)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// PlayerID identifies a player. Upstream feeds send it as either a JSON
// string or a number, so both are accepted.
type PlayerID string

func (id *PlayerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PlayerID(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: id must be a string or number", ErrInvalidPlayer)
	}
	*id = PlayerID(n.String())
	return nil
}

// Player is a rostered or candidate player as the recommender sees it.
type Player struct {
	ID             PlayerID `json:"id"`
	Name           string   `json:"name,omitempty"`
	Team           string   `json:"team,omitempty"`
	Position       Position `json:"position"`
	Price          int      `json:"price"`
	ProjectedScore float64  `json:"projectedScore"`
	Average        float64  `json:"average"`
}

// DisplayName falls back to the id when the feed carries no name.
func (p Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.ID)
}

// Validate checks the required fields of a single record.
func (p Player) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPlayer)
	}
	if !p.Position.Valid() {
		return fmt.Errorf("%w: player %s has unknown position %q", ErrInvalidPlayer, p.ID, p.Position)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: player %s has non-positive price %d", ErrInvalidPlayer, p.ID, p.Price)
	}
	if !validScore(p.ProjectedScore) {
		return fmt.Errorf("%w: player %s has invalid projected score %v", ErrInvalidPlayer, p.ID, p.ProjectedScore)
	}
	if !validScore(p.Average) {
		return fmt.Errorf("%w: player %s has invalid average %v", ErrInvalidPlayer, p.ID, p.Average)
	}
	return nil
}

// validScore rejects negatives and the NaN/Inf values strconv.ParseFloat accepts.
func validScore(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ValidateRoster validates every record and rejects duplicate ids.
func ValidateRoster(players []Player) error {
	seen := make(map[PlayerID]bool, len(players))
	for i, p := range players {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if seen[p.ID] {
			return fmt.Errorf("record %d: %w: duplicate id %s", i, ErrInvalidPlayer, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// ParsePlayerRow parses a CSV row using a header index built by HeaderIndex.
// Rows without an id are skipped by returning nil, nil.
func ParsePlayerRow(row []string, header map[string]int) (*Player, error) {
	get := func(col string) string {
		idx, ok := header[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	id := get("id")
	if id == "" {
		return nil, nil
	}

	p := &Player{
		ID:   PlayerID(id),
		Name: get("name"),
		Team: get("team"),
	}

	pos, err := ParsePosition(get("position"))
	if err != nil {
		return nil, err
	}
	p.Position = pos

	if p.Price, err = ParsePrice(get("price")); err != nil {
		return nil, fmt.Errorf("%w: player %s: %v", ErrInvalidPlayer, id, err)
	}
	if v := get("projected"); v != "" {
		if p.ProjectedScore, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: player %s: bad projected score %q", ErrInvalidPlayer, id, v)
		}
	}
	if v := get("average"); v != "" {
		if p.Average, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: player %s: bad average %q", ErrInvalidPlayer, id, v)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// HeaderIndex maps the known column names to their position in a header row.
// Common spellings from fantasy exports are folded onto the canonical keys.
func HeaderIndex(headerRow []string) map[string]int {
	aliases := map[string]string{
		"id":              "id",
		"player_id":       "id",
		"playerid":        "id",
		"name":            "name",
		"player":          "name",
		"team":            "team",
		"club":            "team",
		"position":        "position",
		"pos":             "position",
		"price":           "price",
		"cost":            "price",
		"projected":       "projected",
		"projectedscore":  "projected",
		"projected_score": "projected",
		"proj":            "projected",
		"average":         "average",
		"avg":             "average",
	}

	index := make(map[string]int)
	for i, h := range headerRow {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := aliases[key]; ok {
			if _, dup := index[canonical]; !dup {
				index[canonical] = i
			}
		}
	}
	return index
}

// ParsePrice parses "$1,234,000", "1234000", "1.2M" or "450K".
func ParsePrice(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(strings.ToUpper(s), "M"):
		multiplier = 1000000
		s = s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "K"):
		multiplier = 1000
		s = s[:len(s)-1]
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q", s)
	}
	return int(val*multiplier + 0.5), nil
}
