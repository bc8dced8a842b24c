package recommender

import "fmt"

// Thresholds holds the tuning constants of the recommender. The defaults are
// the product values; override them through a thresholds file rather than
// editing the code.
type Thresholds struct {
	// Downgrade targets: price in (DowngradeMinPriceExclusive, maxRookiePrice]
	// and projected score at least DowngradeMinProjected.
	DowngradeMinPriceExclusive int     `toml:"downgrade_min_price_exclusive" json:"downgradeMinPriceExclusive"`
	DowngradeMinProjected      float64 `toml:"downgrade_min_projected" json:"downgradeMinProjected"`
	MinCashFreed               int     `toml:"min_cash_freed" json:"minCashFreed"`

	// Upgrade targets.
	UpgradeMinPrice   int     `toml:"upgrade_min_price" json:"upgradeMinPrice"`
	UpgradeMinAverage float64 `toml:"upgrade_min_average" json:"upgradeMinAverage"`

	// Rostered players eligible to be moved.
	DowngradeFromMinPrice int     `toml:"downgrade_from_min_price" json:"downgradeFromMinPrice"`
	DowngradeFromMaxPrice int     `toml:"downgrade_from_max_price" json:"downgradeFromMaxPrice"`
	UpgradeFromMinPrice   int     `toml:"upgrade_from_min_price" json:"upgradeFromMinPrice"`
	UpgradeFromMaxPrice   int     `toml:"upgrade_from_max_price" json:"upgradeFromMaxPrice"`
	UpgradeFromMaxAverage float64 `toml:"upgrade_from_max_average" json:"upgradeFromMaxAverage"`

	MinUpgradeScoreGain float64 `toml:"min_upgrade_score_gain" json:"minUpgradeScoreGain"`
	MaxOverspend        int     `toml:"max_overspend" json:"maxOverspend"`
	MaxResults          int     `toml:"max_results" json:"maxResults"`
}

// DefaultThresholds returns the production values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DowngradeMinPriceExclusive: 150000,
		DowngradeMinProjected:      60,
		MinCashFreed:               150000,
		UpgradeMinPrice:            800000,
		UpgradeMinAverage:          90,
		DowngradeFromMinPrice:      500000,
		DowngradeFromMaxPrice:      900000,
		UpgradeFromMinPrice:        400000,
		UpgradeFromMaxPrice:        800000,
		UpgradeFromMaxAverage:      95,
		MinUpgradeScoreGain:        5,
		MaxOverspend:               50000,
		MaxResults:                 10,
	}
}

// Validate rejects combinations of values that would make every search empty
// or unbounded.
func (t Thresholds) Validate() error {
	if t.DowngradeMinPriceExclusive < 0 || t.MinCashFreed < 0 || t.UpgradeMinPrice < 0 || t.MaxOverspend < 0 {
		return fmt.Errorf("thresholds: prices and cash limits must not be negative")
	}
	if t.DowngradeMinProjected < 0 || t.UpgradeMinAverage < 0 || t.UpgradeFromMaxAverage < 0 {
		return fmt.Errorf("thresholds: score and average limits must not be negative")
	}
	if t.DowngradeFromMinPrice > t.DowngradeFromMaxPrice {
		return fmt.Errorf("thresholds: downgrade_from_min_price %d exceeds downgrade_from_max_price %d",
			t.DowngradeFromMinPrice, t.DowngradeFromMaxPrice)
	}
	if t.UpgradeFromMinPrice > t.UpgradeFromMaxPrice {
		return fmt.Errorf("thresholds: upgrade_from_min_price %d exceeds upgrade_from_max_price %d",
			t.UpgradeFromMinPrice, t.UpgradeFromMaxPrice)
	}
	if t.MaxResults < 1 {
		return fmt.Errorf("thresholds: max_results must be at least 1")
	}
	return nil
}
