package models

import "time"

// -----------------------------------------------------------------------------
// Classified alert events produced by the trigger models.
// -----------------------------------------------------------------------------

// Alert model kinds, in classifier priority order.
const (
	ModelRocket       = "rocket"       // momentum breakout
	ModelDive         = "dive"         // momentum collapse
	ModelUndercurrent = "undercurrent" // accumulation; inert until a net-inflow feed exists
)

// MIndicators is the indicator snapshot attached to an alert.
type MIndicators struct {
	Speed3Min    float64 `json:"speed_3min"`
	VolRatio     float64 `json:"vol_ratio"`
	NetInflowWan float64 `json:"net_inflow_wan"` // 0 while the feed is missing
	LogicDesc    string  `json:"logic_desc"`
}

// MAlert is one classified alert for one symbol at one tick.
// Consumed immediately by the advisor/notifier; not persisted.
type MAlert struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	ModelKind   string      `json:"model_kind"`
	TriggeredAt time.Time   `json:"triggered_at"`
	Indicators  MIndicators `json:"indicators"`
}

// Title is the human-readable label used by the dashboard and notifier.
func (a *MAlert) Title() string {
	switch a.ModelKind {
	case ModelRocket:
		return "🚀 Rocket Launch"
	case ModelDive:
		return "🌊 High Dive"
	case ModelUndercurrent:
		return "⚓ Undercurrent"
	}
	return a.ModelKind
}
