package monitor

import (
	"math"
	"strings"
	"testing"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------

func TestBuildBookAggregate(t *testing.T) {
	q := &models.MQuote{
		ShareVolume: 1000,
		MoneyVolume: 10500,
		Bids: []models.MBookLevel{
			{Price: 10.0, Volume: 300},
			{Price: 9.99, Volume: 300},
		},
		Asks: []models.MBookLevel{
			{Price: 10.01, Volume: 100},
			{Price: 10.02, Volume: 100},
		},
	}

	agg := BuildBookAggregate(q, 3.5)

	if agg.BidDepth != 600 || agg.AskDepth != 200 {
		t.Fatalf("depth wrong: %+v", agg)
	}
	// (600-200)/(600+200) = 0.5
	if math.Abs(agg.CommitmentRatio-0.5) > 1e-9 {
		t.Fatalf("want commitment 0.5, got %v", agg.CommitmentRatio)
	}
	if math.Abs(agg.VWAP-10.5) > 1e-9 {
		t.Fatalf("want vwap 10.5, got %v", agg.VWAP)
	}
	if !strings.HasPrefix(agg.Feature, "buy side dominant") {
		t.Fatalf("want buy-side feature, got %q", agg.Feature)
	}
}

// -----------------------------------------------------------------------------

func TestBuildBookAggregateEmptyBook(t *testing.T) {
	agg := BuildBookAggregate(&models.MQuote{}, 1.0)

	if agg.CommitmentRatio != 0 || agg.VWAP != 0 {
		t.Fatalf("empty book should be all zero, got %+v", agg)
	}
	if !strings.HasPrefix(agg.Feature, "balanced") {
		t.Fatalf("want balanced feature, got %q", agg.Feature)
	}
}

// -----------------------------------------------------------------------------

func TestBuildBookAggregateWallCallout(t *testing.T) {
	q := &models.MQuote{
		Bids: []models.MBookLevel{{Price: 10.0, Volume: 100}},
		Asks: []models.MBookLevel{{Price: 10.01, Volume: 400}},
	}

	agg := BuildBookAggregate(q, 3.0)
	if !strings.HasPrefix(agg.Feature, "ask wall overhead") {
		t.Fatalf("want ask wall callout, got %q", agg.Feature)
	}

	q.Bids, q.Asks = q.Asks, q.Bids
	agg = BuildBookAggregate(q, 3.0)
	if !strings.HasPrefix(agg.Feature, "bid support below") {
		t.Fatalf("want bid support callout, got %q", agg.Feature)
	}
}

// -----------------------------------------------------------------------------

func TestPoolSentimentIgnoresZeroChange(t *testing.T) {
	quotes := map[string]models.MQuote{
		"a": {ChangePct: 2.0},
		"b": {ChangePct: -1.0},
		"c": {ChangePct: 0.0}, // suspended, excluded
	}

	got := PoolSentiment(quotes)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("want 0.5, got %v", got)
	}

	if got := PoolSentiment(map[string]models.MQuote{}); got != 0 {
		t.Fatalf("empty pool should be 0, got %v", got)
	}
}

// -----------------------------------------------------------------------------

func TestHistorySmoothing(t *testing.T) {
	h := NewHistoryCache(10)

	h.Observe("600172", 1, 10.0)
	h.Observe("600172", 2, 20.0)

	points := h.Recent("600172", 10)
	if len(points) != 2 {
		t.Fatalf("want 2 points, got %d", len(points))
	}
	if points[0].Price != 10.0 {
		t.Fatalf("first observation should be unsmoothed, got %v", points[0].Price)
	}
	// 0.7*20 + 0.3*10 = 17
	if math.Abs(points[1].Price-17.0) > 1e-9 {
		t.Fatalf("want smoothed 17.0, got %v", points[1].Price)
	}
}

// -----------------------------------------------------------------------------

func TestHistoryFallbackSpeed(t *testing.T) {
	h := NewHistoryCache(10)

	if got := h.FallbackSpeed("600172", 180); got != 0 {
		t.Fatalf("empty history should give 0, got %v", got)
	}

	// Feed a flat-then-rising trail without smoothing effects by stepping
	// through the filter: exact values do not matter, direction does.
	h.Observe("600172", 0, 10.0)
	h.Observe("600172", 60, 10.0)
	h.Observe("600172", 120, 11.0)

	if got := h.FallbackSpeed("600172", 180); got <= 0 {
		t.Fatalf("rising trail should give positive speed, got %v", got)
	}
}
