package models

// -----------------------------------------------------------------------------
// Rolling-window indicators derived from stored history.
// Computed fresh every poll tick; never persisted.
// -----------------------------------------------------------------------------

// Trend labels for the 3-minute speed bands.
const (
	TrendFastRising     = "fast-rising"     // speed > 1.0
	TrendSteadilyRising = "steadily-rising" // 0.5 < speed <= 1.0
	TrendChoppy         = "choppy"          // everything between the bands
	TrendGrindingDown   = "grinding-down"   // -1.0 <= speed < -0.5
	TrendFastFalling    = "fast-falling"    // speed < -1.0
	TrendInsufficient   = "insufficient"    // fewer than 5 snapshots
)

// MWindowStats holds the indicators for one symbol at one tick.
type MWindowStats struct {
	Speed3Min  float64 `json:"speed_3min"` // percent change over ~3 minutes
	VolRatio   float64 `json:"vol_ratio"`  // latest 1-min volume / trailing mean
	TrendLabel string  `json:"trend_label"`
}

// NeutralWindowStats is the insufficient-data default.
func NeutralWindowStats() MWindowStats {
	return MWindowStats{Speed3Min: 0.0, VolRatio: 1.0, TrendLabel: TrendInsufficient}
}
