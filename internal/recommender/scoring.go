package recommender

// ScoreComponent buckets net projected score gain into 0..6.
func ScoreComponent(netScore float64) int {
	switch {
	case netScore >= 20:
		return 6
	case netScore >= 15:
		return 5
	case netScore >= 10:
		return 4
	case netScore >= 5:
		return 3
	case netScore >= 0:
		return 2
	case netScore >= -5:
		return 1
	default:
		return 0
	}
}

// CashComponent buckets net cash into 0..4.
func CashComponent(netCash int) int {
	switch {
	case netCash >= 200000:
		return 4
	case netCash >= 100000:
		return 3
	case netCash >= 50000:
		return 2
	case netCash >= 0:
		return 1
	default:
		return 0
	}
}

// OverallScore combines both components into [0, 1].
func OverallScore(netScore float64, netCash int) float64 {
	return float64(ScoreComponent(netScore)+CashComponent(netCash)) / 10.0
}
