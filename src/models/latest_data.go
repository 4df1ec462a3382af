package models

// -----------------------------------------------------------------------------
// Dashboard state pushed to WebSocket clients every tick.
// -----------------------------------------------------------------------------

// MDisplayRow is one watchlist line on the dashboard.
type MDisplayRow struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	ChangePct       float64 `json:"change_pct"`
	Speed3Min       float64 `json:"speed_3min"`
	VolRatio        float64 `json:"vol_ratio"`
	VWAP            float64 `json:"vwap"`
	CommitmentRatio float64 `json:"commitment_ratio"`
	High            float64 `json:"high"`
	Low             float64 `json:"low"`
	Status          string  `json:"status"` // trend label, or the triggered model
}

// MLatestData is the full dashboard state.
type MLatestData struct {
	Type          string        `json:"type"` // "INITIAL" or "UPDATE"
	Rows          []MDisplayRow `json:"rows"`
	PoolSentiment float64       `json:"pool_sentiment"`
	Logs          []string      `json:"logs"`
	Timestamp     int64         `json:"timestamp"`
	TickMetrics   MTickMetrics  `json:"tick_metrics"`
}

// MTickMetrics describes the last completed poll tick.
type MTickMetrics struct {
	FetchSeconds  float64 `json:"fetch_seconds"`
	ValidSymbols  int     `json:"valid_symbols"`
	AlertsRaised  int     `json:"alerts_raised"`
	PersistFailed int     `json:"persist_failed"`
}
