// Package recommender finds paired downgrade/upgrade trades for a roster.
package recommender

import (
	"errors"
	"sort"

	"github.com/pmurley/afl-trade-bot/internal/models"
)

// The error text is shown to users as-is.
var (
	ErrEmptyRoster        = errors.New("Current team is empty")
	ErrNoDowngradeTargets = errors.New("No viable rookie options found with the given price limit")
	ErrNoUpgradeTargets   = errors.New("No premium upgrade targets found in the player pool")
)

// Recommender is safe for concurrent use; it holds only its thresholds.
type Recommender struct {
	thresholds Thresholds
}

func New(thresholds Thresholds) *Recommender {
	return &Recommender{thresholds: thresholds}
}

// Recommend returns up to MaxResults combinations ranked by overall score.
// An empty, nil-error result means no affordable trade exists.
func (r *Recommender) Recommend(roster, candidatePool []models.Player, maxDowngradeTargetPrice int) ([]models.Combination, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	t := r.thresholds
	team := models.PlayerList(roster)
	pool := models.PlayerList(candidatePool)

	downgradeTargets := pool.Filter(func(p models.Player) bool {
		return p.Price <= maxDowngradeTargetPrice &&
			p.Price > t.DowngradeMinPriceExclusive &&
			p.ProjectedScore >= t.DowngradeMinProjected
	})
	if len(downgradeTargets) == 0 {
		return nil, ErrNoDowngradeTargets
	}

	upgradeTargets := pool.Filter(func(p models.Player) bool {
		return p.Price >= t.UpgradeMinPrice && p.Average >= t.UpgradeMinAverage
	})
	if len(upgradeTargets) == 0 {
		return nil, ErrNoUpgradeTargets
	}

	// Ruck depth makes ruck downgrades rarely worth it.
	downgradeFrom := team.
		FilterByPriceRange(t.DowngradeFromMinPrice, t.DowngradeFromMaxPrice).
		Filter(func(p models.Player) bool { return p.Position != models.Ruck })

	upgradeFrom := team.
		FilterByPriceRange(t.UpgradeFromMinPrice, t.UpgradeFromMaxPrice).
		Filter(func(p models.Player) bool { return p.Average <= t.UpgradeFromMaxAverage })

	downgrades := r.downgradeMoves(downgradeFrom, downgradeTargets)
	upgrades := r.upgradeMoves(upgradeFrom, upgradeTargets)

	combinations := make([]models.Combination, 0)
	for _, down := range downgrades {
		for _, up := range upgrades {
			c := models.NewCombination(down, up)
			if !c.HasDistinctPlayers() {
				continue
			}
			if c.NetCash < -t.MaxOverspend {
				continue
			}
			c.OverallScore = OverallScore(c.NetScore, c.NetCash)
			combinations = append(combinations, c)
		}
	}

	sortCombinations(combinations)

	if len(combinations) > t.MaxResults {
		combinations = combinations[:t.MaxResults]
	}
	return combinations, nil
}

func (r *Recommender) downgradeMoves(from, targets models.PlayerList) []models.DowngradeMove {
	var moves []models.DowngradeMove
	for _, f := range from {
		for _, to := range targets.FilterByPosition(f.Position) {
			m := models.NewDowngradeMove(f, to)
			if m.CashFreed >= r.thresholds.MinCashFreed {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

func (r *Recommender) upgradeMoves(from, targets models.PlayerList) []models.UpgradeMove {
	var moves []models.UpgradeMove
	for _, f := range from {
		for _, to := range targets.FilterByPosition(f.Position) {
			m := models.NewUpgradeMove(f, to)
			if m.ScoreImpact >= r.thresholds.MinUpgradeScoreGain {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// sortCombinations orders by overall score, then net score, then net cash,
// all descending. Remaining ties keep enumeration order.
func sortCombinations(cs []models.Combination) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].OverallScore != cs[j].OverallScore {
			return cs[i].OverallScore > cs[j].OverallScore
		}
		if cs[i].NetScore != cs[j].NetScore {
			return cs[i].NetScore > cs[j].NetScore
		}
		return cs[i].NetCash > cs[j].NetCash
	})
}
