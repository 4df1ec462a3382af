package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------

func snapAt(ts int64, price, volume float64) models.MSnapshot {
	return models.MSnapshot{Code: "600172", Timestamp: ts, Price: price, Volume: volume}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// -----------------------------------------------------------------------------

func TestFewerThanFiveSnapshotsIsNeutral(t *testing.T) {
	var snaps []models.MSnapshot
	for i := int64(0); i < 4; i++ {
		snaps = append(snaps, snapAt(i*10, 10.0+float64(i), 1000))
	}

	stats := ComputeWindowStats(snaps)
	if stats.Speed3Min != 0.0 {
		t.Fatalf("want speed 0.0, got %v", stats.Speed3Min)
	}
	if stats.VolRatio != 1.0 {
		t.Fatalf("want vol ratio 1.0, got %v", stats.VolRatio)
	}
	if stats.TrendLabel != models.TrendInsufficient {
		t.Fatalf("want %q, got %q", models.TrendInsufficient, stats.TrendLabel)
	}
}

// -----------------------------------------------------------------------------

func TestSpeedAndVolRatioEndToEnd(t *testing.T) {
	// Four minutes of 10s samples. Price climbs linearly so that the value
	// three minutes before the last sample is 10.00 and the last is 10.30.
	// Cumulative volume grows 1000/min for three minutes then jumps 4000 in
	// the final minute.
	var snaps []models.MSnapshot
	for i := int64(0); i <= 23; i++ {
		ts := i * 10
		price := 10.0 + 0.3*float64(ts-50)/180.0
		var vol float64
		switch {
		case ts < 180:
			vol = float64(ts/60+1) * 1000
		default:
			vol = 3000 + 4000
		}
		snaps = append(snaps, snapAt(ts, price, vol))
	}

	stats := ComputeWindowStats(snaps)

	// Anchor is the sample at t=50 (first ts >= 230-180), price 10.00.
	if math.Abs(stats.Speed3Min-3.0) > 1e-6 {
		t.Fatalf("want speed 3.0, got %v", stats.Speed3Min)
	}

	// Minute increments: 1000, 1000, 4000. Latest 4000 over baseline 1000.
	if math.Abs(stats.VolRatio-4.0) > 1e-6 {
		t.Fatalf("want vol ratio 4.0, got %v", stats.VolRatio)
	}

	if stats.TrendLabel != models.TrendFastRising {
		t.Fatalf("want %q, got %q", models.TrendFastRising, stats.TrendLabel)
	}
}

// -----------------------------------------------------------------------------

func TestSpeedZeroWhenAnchorPriceNonPositive(t *testing.T) {
	snaps := []models.MSnapshot{
		snapAt(0, 0.0, 100),
		snapAt(10, 10.0, 200),
		snapAt(20, 10.1, 300),
		snapAt(30, 10.2, 400),
		snapAt(40, 10.3, 500),
	}

	stats := ComputeWindowStats(snaps)
	if stats.Speed3Min != 0.0 {
		t.Fatalf("want speed 0.0 for non-positive anchor, got %v", stats.Speed3Min)
	}
}

// -----------------------------------------------------------------------------

func TestVolRatioDiscardsSessionReset(t *testing.T) {
	// Cumulative volume collapses from 500000 to 1000 across a session
	// boundary. The negative diff must not enter the baseline, so the ratio
	// stays finite and sane.
	snaps := []models.MSnapshot{
		snapAt(0, 10.0, 498000),
		snapAt(60, 10.0, 499000),
		snapAt(120, 10.0, 500000),
		snapAt(180, 10.0, 1000), // new session
		snapAt(240, 10.0, 2000),
	}

	stats := ComputeWindowStats(snaps)

	// Surviving increments: 1000, 1000, 1000. Ratio 1000/1000.
	if !approxEqual(stats.VolRatio, 1.0) {
		t.Fatalf("want vol ratio 1.0 after reset discard, got %v", stats.VolRatio)
	}
}

// -----------------------------------------------------------------------------

func TestVolRatioNeutralWithoutBaseline(t *testing.T) {
	// All snapshots in the same minute: no increments at all.
	snaps := []models.MSnapshot{
		snapAt(0, 10.0, 100),
		snapAt(10, 10.0, 200),
		snapAt(20, 10.0, 300),
		snapAt(30, 10.0, 400),
		snapAt(40, 10.0, 500),
	}

	stats := ComputeWindowStats(snaps)
	if stats.VolRatio != 1.0 {
		t.Fatalf("want neutral vol ratio, got %v", stats.VolRatio)
	}
}

// -----------------------------------------------------------------------------

func TestTrendBandBoundaries(t *testing.T) {
	cases := []struct {
		speed float64
		want  string
	}{
		{1.5, models.TrendFastRising},
		{1.0, models.TrendSteadilyRising}, // exactly 1.0 is not fast
		{0.7, models.TrendSteadilyRising},
		{0.5, models.TrendChoppy}, // exactly 0.5 is not rising
		{0.0, models.TrendChoppy},
		{-0.5, models.TrendChoppy},
		{-0.7, models.TrendGrindingDown},
		{-1.0, models.TrendGrindingDown},
		{-1.5, models.TrendFastFalling},
	}

	for _, c := range cases {
		if got := classifyTrend(c.speed); got != c.want {
			t.Fatalf("speed %v: want %q, got %q", c.speed, c.want, got)
		}
	}
}

// -----------------------------------------------------------------------------

func TestBuildIntradayTrend(t *testing.T) {
	// 08:00 UTC is 16:00 CST.
	base := int64(1724918400)
	snaps := []models.MSnapshot{
		snapAt(base, 10.00, 100),
		snapAt(base+30, 10.05, 200), // same minute, replaces the first point
		snapAt(base+60, 10.10, 300),
		snapAt(base+120, 10.20, 400),
	}

	got := BuildIntradayTrend(snaps, 15)
	if !strings.Contains(got, "(10.05)") {
		t.Fatalf("expected last-in-minute resample, got %q", got)
	}
	if strings.Contains(got, "(10.00)") {
		t.Fatalf("earlier sample in same minute should be replaced, got %q", got)
	}
	if strings.Count(got, " -> ") != 2 {
		t.Fatalf("want 3 points joined by arrows, got %q", got)
	}
}

// -----------------------------------------------------------------------------

func TestBuildIntradayTrendEmpty(t *testing.T) {
	if got := BuildIntradayTrend(nil, 15); got != "" {
		t.Fatalf("want empty string, got %q", got)
	}
}
