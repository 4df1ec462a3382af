package models

// MSnapshot is one stored per-symbol observation per poll tick.
// Volume is the session-cumulative share counter, not an interval delta;
// it only decreases when a new trading session starts.
type MSnapshot struct {
	Code      string  `json:"code"`
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"`
}
