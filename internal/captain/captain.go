// Package captain picks captain and vice-captain candidates from a roster.
package captain

import (
	"errors"
	"sort"

	"github.com/pmurley/afl-trade-bot/internal/models"
)

var ErrEmptyRoster = errors.New("Current team is empty")

// Suggestion is the ranked captaincy shortlist.
type Suggestion struct {
	Captain     models.Player   `json:"captain"`
	ViceCaptain *models.Player  `json:"viceCaptain,omitempty"`
	Ranked      []models.Player `json:"ranked"`
}

// Suggest ranks by projected score, then average, then id, and returns the
// top n (n < 1 means 3).
func Suggest(roster []models.Player, n int) (Suggestion, error) {
	if len(roster) == 0 {
		return Suggestion{}, ErrEmptyRoster
	}
	if n < 1 {
		n = 3
	}

	ranked := make([]models.Player, len(roster))
	copy(ranked, roster)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ProjectedScore != ranked[j].ProjectedScore {
			return ranked[i].ProjectedScore > ranked[j].ProjectedScore
		}
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average > ranked[j].Average
		}
		return ranked[i].ID < ranked[j].ID
	})

	if n > len(ranked) {
		n = len(ranked)
	}

	s := Suggestion{
		Captain: ranked[0],
		Ranked:  ranked[:n],
	}
	if len(ranked) > 1 {
		vc := ranked[1]
		s.ViceCaptain = &vc
	}
	return s, nil
}
