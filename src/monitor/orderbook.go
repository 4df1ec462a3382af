package monitor

import (
	"fmt"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/analysis/core"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------

// BuildBookAggregate condenses the five-level order book and the session
// turnover into prompt-ready numbers.
//
// Commitment ratio is (bid depth - ask depth) / (bid depth + ask depth),
// in [-1, 1]; positive means buy-side pressure. VWAP is session turnover
// divided by session share volume. askBidLimit is the one-side-exceeds-the-
// other factor beyond which the feature text calls out a wall.
func BuildBookAggregate(q *models.MQuote, askBidLimit float64) models.MBookAggregate {
	agg := models.MBookAggregate{}

	for _, lvl := range q.Bids {
		agg.BidDepth += lvl.Volume
	}
	for _, lvl := range q.Asks {
		agg.AskDepth += lvl.Volume
	}

	if total := agg.BidDepth + agg.AskDepth; total > 0 {
		agg.CommitmentRatio = (agg.BidDepth - agg.AskDepth) / total
	}

	if q.ShareVolume > 0 {
		agg.VWAP = q.MoneyVolume / q.ShareVolume
	}

	agg.Feature = bookFeature(agg, askBidLimit)
	return agg
}

// -----------------------------------------------------------------------------

// bookFeature phrases the book for the advisor prompt. Wall callouts need a
// positive limit and both sides present.
func bookFeature(agg models.MBookAggregate, askBidLimit float64) string {
	if askBidLimit > 0 && agg.BidDepth > 0 && agg.AskDepth > 0 {
		if agg.AskDepth > agg.BidDepth*askBidLimit {
			return fmt.Sprintf("ask wall overhead, sell side %.1fx bid depth", agg.AskDepth/agg.BidDepth)
		}
		if agg.BidDepth > agg.AskDepth*askBidLimit {
			return fmt.Sprintf("bid support below, buy side %.1fx ask depth", agg.BidDepth/agg.AskDepth)
		}
	}

	switch c := agg.CommitmentRatio; {
	case c > 0.2:
		return fmt.Sprintf("buy side dominant (%.2f)", c)
	case c < -0.2:
		return fmt.Sprintf("sell side dominant (%.2f)", c)
	default:
		return fmt.Sprintf("balanced book (%.2f)", c)
	}
}

// -----------------------------------------------------------------------------

// PoolSentiment is the mean change percent across the watchlist, ignoring
// symbols with exactly zero change (suspended or not yet traded).
func PoolSentiment(quotes map[string]models.MQuote) float64 {
	var changes []float64
	for _, q := range quotes {
		if q.ChangePct != 0 {
			changes = append(changes, q.ChangePct)
		}
	}
	return core.Mean(changes)
}
