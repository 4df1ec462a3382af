package models

// MAdvisorContext carries the enrichment the advisor prompt needs beyond the
// quote and the alert itself.
type MAdvisorContext struct {
	PoolSentiment float64        `json:"pool_sentiment"` // mean nonzero change_pct across the pool
	IntradayTrend string         `json:"intraday_trend"` // ~15min 1-minute close trail
	DailyTrend    string         `json:"daily_trend"`    // ~5 day close/change trail
	Book          MBookAggregate `json:"book"`
}
