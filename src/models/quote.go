package models

// -----------------------------------------------------------------------------
// Normalized real-time quote produced by the quote source.
// Field disambiguation (share volume vs money volume) happens at the source
// boundary; everything downstream receives already-normalized fields.
// -----------------------------------------------------------------------------

// MBookLevel is a single bid or ask level (price + share volume).
type MBookLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// MQuote is one normalized snapshot per symbol per poll tick.
type MQuote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Open      float64 `json:"open"`
	PrevClose float64 `json:"prev_close"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`

	// Session-cumulative counters.
	ShareVolume float64 `json:"share_volume"`
	MoneyVolume float64 `json:"money_volume"`

	ChangePct float64 `json:"change_pct"`
	Timestamp int64   `json:"timestamp"`

	// Up to 5 levels each, best first.
	Bids []MBookLevel `json:"bids"`
	Asks []MBookLevel `json:"asks"`
}

// Snapshot converts the quote to its stored form.
func (q *MQuote) Snapshot() MSnapshot {
	return MSnapshot{
		Code:      q.Code,
		Timestamp: q.Timestamp,
		Price:     q.Price,
		ChangePct: q.ChangePct,
		Volume:    q.ShareVolume,
	}
}

// -----------------------------------------------------------------------------

// MBookAggregate summarizes order-book depth for one symbol.
type MBookAggregate struct {
	BidDepth        float64 `json:"bid_depth"`
	AskDepth        float64 `json:"ask_depth"`
	CommitmentRatio float64 `json:"commitment_ratio"` // (bid-ask)/(bid+ask), in [-1, 1]
	VWAP            float64 `json:"vwap"`             // money volume / share volume
	Feature         string  `json:"feature"`          // free-text summary for the advisor
}
