package trigger

import (
	"fmt"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------
// Classifier evaluates one symbol's indicators against the configured
// thresholds and decides whether an alert fires. It holds no state between
// calls; dedup and dispatch belong to the monitor.
// -----------------------------------------------------------------------------

type Classifier struct {
	Thresholds models.MModelsConfig
}

// -----------------------------------------------------------------------------

func NewClassifier(thresholds models.MModelsConfig) *Classifier {
	return &Classifier{Thresholds: thresholds}
}

// -----------------------------------------------------------------------------

// Classify returns at most one alert per evaluation. Models are checked in
// priority order and the first hit wins.
func (c *Classifier) Classify(quote *models.MQuote, stats models.MWindowStats, now time.Time) *models.MAlert {
	if alert := c.checkRocket(quote, stats, now); alert != nil {
		return alert
	}
	if alert := c.checkDive(quote, stats, now); alert != nil {
		return alert
	}
	return c.checkUndercurrent(quote, stats, now)
}

// -----------------------------------------------------------------------------

// checkRocket fires on simultaneous momentum and volume expansion. Both
// comparisons are strict: sitting exactly on a threshold does not trigger.
func (c *Classifier) checkRocket(quote *models.MQuote, stats models.MWindowStats, now time.Time) *models.MAlert {
	if stats.Speed3Min <= c.Thresholds.RiseSpeedThreshold {
		return nil
	}
	if stats.VolRatio <= c.Thresholds.VolRatioThreshold {
		return nil
	}

	return &models.MAlert{
		Code:        quote.Code,
		Name:        quote.Name,
		ModelKind:   models.ModelRocket,
		TriggeredAt: now,
		Indicators: models.MIndicators{
			Speed3Min: stats.Speed3Min,
			VolRatio:  stats.VolRatio,
			LogicDesc: fmt.Sprintf("3min speed %.2f%% > %.2f%% with volume ratio %.2f > %.2f",
				stats.Speed3Min, c.Thresholds.RiseSpeedThreshold,
				stats.VolRatio, c.Thresholds.VolRatioThreshold),
		},
	}
}

// -----------------------------------------------------------------------------

// checkDive fires on a sharp drop regardless of volume.
func (c *Classifier) checkDive(quote *models.MQuote, stats models.MWindowStats, now time.Time) *models.MAlert {
	if stats.Speed3Min >= c.Thresholds.DropSpeedThreshold {
		return nil
	}

	return &models.MAlert{
		Code:        quote.Code,
		Name:        quote.Name,
		ModelKind:   models.ModelDive,
		TriggeredAt: now,
		Indicators: models.MIndicators{
			Speed3Min: stats.Speed3Min,
			VolRatio:  stats.VolRatio,
			LogicDesc: fmt.Sprintf("3min speed %.2f%% < %.2f%%",
				stats.Speed3Min, c.Thresholds.DropSpeedThreshold),
		},
	}
}

// -----------------------------------------------------------------------------

// checkUndercurrent would fire on quiet accumulation: flat price with heavy
// net inflow. The quote feed carries no per-symbol money-flow field, so the
// inflow stays at its zero value and the condition cannot hold. Kept wired so
// the model activates as soon as a flow-capable source lands.
func (c *Classifier) checkUndercurrent(quote *models.MQuote, stats models.MWindowStats, now time.Time) *models.MAlert {
	var netInflowWan float64

	if quote.ChangePct >= 0.5 || quote.ChangePct <= -0.5 {
		return nil
	}
	if netInflowWan <= c.Thresholds.NetInflowThreshold {
		return nil
	}

	return &models.MAlert{
		Code:        quote.Code,
		Name:        quote.Name,
		ModelKind:   models.ModelUndercurrent,
		TriggeredAt: now,
		Indicators: models.MIndicators{
			Speed3Min:    stats.Speed3Min,
			VolRatio:     stats.VolRatio,
			NetInflowWan: netInflowWan,
			LogicDesc: fmt.Sprintf("flat price %.2f%% with net inflow %.0f wan > %.0f wan",
				quote.ChangePct, netInflowWan, c.Thresholds.NetInflowThreshold),
		},
	}
}
