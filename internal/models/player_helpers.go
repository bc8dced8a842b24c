package models

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// PlayerList represents a slice of players with helper methods
type PlayerList []Player

// FilterByPosition returns players at the given position
func (pl PlayerList) FilterByPosition(pos Position) PlayerList {
	var filtered PlayerList
	for _, p := range pl {
		if p.Position == pos {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterByPriceRange returns players priced within [min, max] inclusive
func (pl PlayerList) FilterByPriceRange(min, max int) PlayerList {
	var filtered PlayerList
	for _, p := range pl {
		if p.Price >= min && p.Price <= max {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Filter returns players for which keep returns true
func (pl PlayerList) Filter(keep func(Player) bool) PlayerList {
	var filtered PlayerList
	for _, p := range pl {
		if keep(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FindByID returns the player with the given id
func (pl PlayerList) FindByID(id PlayerID) (Player, bool) {
	for _, p := range pl {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// SearchByName returns players whose names contain the search string
func (pl PlayerList) SearchByName(search string) PlayerList {
	var matches PlayerList
	searchLower := strings.ToLower(search)

	for _, p := range pl {
		if strings.Contains(strings.ToLower(p.Name), searchLower) {
			matches = append(matches, p)
		}
	}
	return matches
}

// SortByProjected sorts players by projected score (descending)
func (pl PlayerList) SortByProjected() {
	sort.SliceStable(pl, func(i, j int) bool {
		return pl[i].ProjectedScore > pl[j].ProjectedScore
	})
}

// SortByPrice sorts players by price (descending)
func (pl PlayerList) SortByPrice() {
	sort.SliceStable(pl, func(i, j int) bool {
		return pl[i].Price > pl[j].Price
	})
}

// GroupByPosition returns a map of position to players
func (pl PlayerList) GroupByPosition() map[Position]PlayerList {
	grouped := make(map[Position]PlayerList)
	for _, p := range pl {
		grouped[p.Position] = append(grouped[p.Position], p)
	}
	return grouped
}

// Stats represents aggregate statistics for a group of players
type Stats struct {
	Count           int              `json:"count"`
	TotalPrice      int              `json:"totalPrice"`
	AveragePrice    int              `json:"averagePrice"`
	MeanProjected   float64          `json:"meanProjected"`
	StdDevProjected float64          `json:"stdDevProjected"`
	MeanAverage     float64          `json:"meanAverage"`
	CountByPosition map[Position]int `json:"countByPosition"`
}

// Stats returns aggregate statistics for the player list
func (pl PlayerList) Stats() Stats {
	stats := Stats{
		Count:           len(pl),
		CountByPosition: make(map[Position]int),
	}
	if len(pl) == 0 {
		return stats
	}

	projected := make([]float64, len(pl))
	averages := make([]float64, len(pl))
	for i, p := range pl {
		stats.TotalPrice += p.Price
		stats.CountByPosition[p.Position]++
		projected[i] = p.ProjectedScore
		averages[i] = p.Average
	}

	stats.AveragePrice = stats.TotalPrice / len(pl)
	stats.MeanProjected, stats.StdDevProjected = stat.MeanStdDev(projected, nil)
	stats.MeanAverage = stat.Mean(averages, nil)

	// MeanStdDev is NaN for a single sample.
	if len(pl) < 2 {
		stats.StdDevProjected = 0
	}
	return stats
}
