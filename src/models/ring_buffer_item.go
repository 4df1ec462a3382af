package models

// RingBuffer indices and constants (smoothed-price history)
const (
	RB_IDX_TIMESTAMP = 0
	RB_IDX_PRICE     = 1
	RB_NUM_FEATURES  = 2
)

// -----------------------------------------------------------------------------

// MPricePoint is one smoothed-price observation held in the in-memory history.
type MPricePoint struct {
	Timestamp int64
	Price     float64
}
