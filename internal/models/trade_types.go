package models

// DowngradeMove swaps a rostered player for a cheaper one at the same position
type DowngradeMove struct {
	From        Player  `json:"from"`
	To          Player  `json:"to"`
	CashFreed   int     `json:"cashFreed"`
	ScoreImpact float64 `json:"scoreImpact"`
}

// NewDowngradeMove fills in the derived fields
func NewDowngradeMove(from, to Player) DowngradeMove {
	return DowngradeMove{
		From:        from,
		To:          to,
		CashFreed:   from.Price - to.Price,
		ScoreImpact: to.ProjectedScore - from.ProjectedScore,
	}
}

// UpgradeMove swaps a rostered player for a pricier one at the same position
type UpgradeMove struct {
	From        Player  `json:"from"`
	To          Player  `json:"to"`
	CashNeeded  int     `json:"cashNeeded"`
	ScoreImpact float64 `json:"scoreImpact"`
}

// NewUpgradeMove fills in the derived fields
func NewUpgradeMove(from, to Player) UpgradeMove {
	return UpgradeMove{
		From:        from,
		To:          to,
		CashNeeded:  to.Price - from.Price,
		ScoreImpact: to.ProjectedScore - from.ProjectedScore,
	}
}

// Combination pairs one downgrade with one upgrade
type Combination struct {
	Downgrade    DowngradeMove `json:"downgrade"`
	Upgrade      UpgradeMove   `json:"upgrade"`
	NetCash      int           `json:"netCash"`
	NetScore     float64       `json:"netScore"`
	OverallScore float64       `json:"overallScore"`
}

// NewCombination computes net cash and net score. OverallScore is left to the caller.
func NewCombination(down DowngradeMove, up UpgradeMove) Combination {
	return Combination{
		Downgrade: down,
		Upgrade:   up,
		NetCash:   down.CashFreed - up.CashNeeded,
		NetScore:  down.ScoreImpact + up.ScoreImpact,
	}
}

// PlayerIDs returns the four ids in role order: downgrade from/to, upgrade from/to
func (c Combination) PlayerIDs() [4]PlayerID {
	return [4]PlayerID{
		c.Downgrade.From.ID,
		c.Downgrade.To.ID,
		c.Upgrade.From.ID,
		c.Upgrade.To.ID,
	}
}

// HasDistinctPlayers reports whether no player appears in more than one role
func (c Combination) HasDistinctPlayers() bool {
	ids := c.PlayerIDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				return false
			}
		}
	}
	return true
}
