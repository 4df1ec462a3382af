package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/analysis/core"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------

const (
	// Below this many snapshots every indicator is neutral.
	minSnapshotsForStats = 5

	// Lookback for the momentum indicator.
	speedWindowSecs = 180

	// At most this many historical one-minute increments feed the volume
	// baseline.
	maxBaselineBuckets = 30
)

var cstZone = time.FixedZone("CST", 8*3600)

// -----------------------------------------------------------------------------

// ComputeWindowStats derives the rolling indicators from a symbol's recent
// snapshots. Input must be ordered ascending by timestamp (the store
// guarantees this). Never returns an error: degraded inputs produce neutral
// values so one bad symbol cannot stall a polling cycle.
func ComputeWindowStats(snaps []models.MSnapshot) models.MWindowStats {
	if len(snaps) < minSnapshotsForStats {
		return models.NeutralWindowStats()
	}

	speed := speed3Min(snaps)

	return models.MWindowStats{
		Speed3Min:  speed,
		VolRatio:   volRatio(snaps),
		TrendLabel: classifyTrend(speed),
	}
}

// -----------------------------------------------------------------------------

// speed3Min is the percent price change against the snapshot nearest to three
// minutes ago. The anchor is the earliest snapshot inside the lookback, so a
// short history simply measures over whatever span exists.
func speed3Min(snaps []models.MSnapshot) float64 {
	latest := snaps[len(snaps)-1]
	target := latest.Timestamp - speedWindowSecs

	idx := sort.Search(len(snaps), func(i int) bool {
		return snaps[i].Timestamp >= target
	})
	if idx >= len(snaps) {
		idx = len(snaps) - 1
	}

	anchor := snaps[idx]
	if anchor.Price <= 0 {
		return 0
	}
	return core.PctChange(latest.Price, anchor.Price)
}

// -----------------------------------------------------------------------------

// volRatio compares the latest one-minute volume increment against the mean
// of the preceding increments.
//
// The raw volume field is session-cumulative, so increments come from diffing
// the last observation of consecutive present minute buckets. A negative diff
// means the counter reset between sessions; that pair is discarded rather
// than polluting the baseline.
func volRatio(snaps []models.MSnapshot) float64 {
	lastInBucket := make(map[int64]float64)
	var buckets []int64

	for _, s := range snaps {
		b := s.Timestamp / 60
		if _, seen := lastInBucket[b]; !seen {
			buckets = append(buckets, b)
		}
		lastInBucket[b] = s.Volume
	}

	if len(buckets) < 2 {
		return 1.0
	}

	var increments []float64
	for i := 1; i < len(buckets); i++ {
		diff := lastInBucket[buckets[i]] - lastInBucket[buckets[i-1]]
		if diff < 0 {
			continue
		}
		increments = append(increments, diff)
	}

	if len(increments) < 2 {
		return 1.0
	}

	latest := increments[len(increments)-1]
	prior := increments[:len(increments)-1]
	if len(prior) > maxBaselineBuckets {
		prior = prior[len(prior)-maxBaselineBuckets:]
	}

	baseline := core.Mean(prior)
	if baseline <= 0 {
		return 1.0
	}
	return latest / baseline
}

// -----------------------------------------------------------------------------

// classifyTrend maps the momentum value onto a coarse label. Bands are
// checked strongest-first.
func classifyTrend(speed float64) string {
	switch {
	case speed > 1.0:
		return models.TrendFastRising
	case speed < -1.0:
		return models.TrendFastFalling
	case speed > 0.5:
		return models.TrendSteadilyRising
	case speed < -0.5:
		return models.TrendGrindingDown
	default:
		return models.TrendChoppy
	}
}

// -----------------------------------------------------------------------------

// BuildIntradayTrend renders the recent price path as a compact arrow chain,
// resampled to one point per minute (last price in each minute), for feeding
// into an LLM prompt. Returns "" when there is nothing to show.
func BuildIntradayTrend(snaps []models.MSnapshot, windowMins int) string {
	if len(snaps) == 0 {
		return ""
	}

	cutoff := snaps[len(snaps)-1].Timestamp - int64(windowMins)*60

	lastInBucket := make(map[int64]models.MSnapshot)
	var buckets []int64
	for _, s := range snaps {
		if s.Timestamp < cutoff {
			continue
		}
		b := s.Timestamp / 60
		if _, seen := lastInBucket[b]; !seen {
			buckets = append(buckets, b)
		}
		lastInBucket[b] = s
	}

	points := make([]string, 0, len(buckets))
	for _, b := range buckets {
		s := lastInBucket[b]
		ts := time.Unix(s.Timestamp, 0).In(cstZone)
		points = append(points, fmt.Sprintf("%s(%.2f)", ts.Format("15:04"), s.Price))
	}

	return strings.Join(points, " -> ")
}
