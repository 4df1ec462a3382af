package monitor

import (
	"sync"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/analysis/core"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/utils"
)

// -----------------------------------------------------------------------------
// HistoryCache keeps a short in-memory price trail per symbol, independent of
// the database. Prices are exponentially smoothed on the way in, which damps
// single-tick spikes from the quote feed.
// -----------------------------------------------------------------------------

const (
	smoothNew = 0.7
	smoothOld = 0.3
)

type HistoryCache struct {
	capacity int
	buffers  map[string]*utils.RingBuffer
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHistoryCache(capacity int) *HistoryCache {
	return &HistoryCache{
		capacity: capacity,
		buffers:  make(map[string]*utils.RingBuffer),
	}
}

// -----------------------------------------------------------------------------

// Observe records a price observation, smoothed against the previous point.
// The first observation for a symbol enters unsmoothed.
func (h *HistoryCache) Observe(code string, ts int64, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rb, ok := h.buffers[code]
	if !ok {
		rb = utils.NewRingBuffer(h.capacity)
		h.buffers[code] = rb
	}

	if last, hasLast := rb.Last(); hasLast {
		price = smoothNew*price + smoothOld*last.Price
	}

	rb.Append(models.MPricePoint{Timestamp: ts, Price: price})
}

// -----------------------------------------------------------------------------

// Recent returns up to n smoothed points for a symbol, oldest first.
func (h *HistoryCache) Recent(code string, n int) []models.MPricePoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rb, ok := h.buffers[code]
	if !ok {
		return nil
	}
	return rb.GetLatest(n)
}

// -----------------------------------------------------------------------------

// FallbackSpeed measures percent change over roughly the given window using
// only the in-memory trail. Used when the database read fails so a cycle can
// still produce a momentum estimate.
func (h *HistoryCache) FallbackSpeed(code string, windowSecs int64) float64 {
	points := h.Recent(code, h.capacity)
	if len(points) < 2 {
		return 0
	}

	latest := points[len(points)-1]
	target := latest.Timestamp - windowSecs

	anchor := points[0]
	for _, p := range points {
		if p.Timestamp >= target {
			anchor = p
			break
		}
	}

	return core.PctChange(latest.Price, anchor.Price)
}
