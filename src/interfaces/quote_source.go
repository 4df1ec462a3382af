package interfaces

import "github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"

// -----------------------------------------------------------------------------
// IQuoteSource interface for fetching normalized real-time quotes.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchQuotes fetches one normalized quote per watched symbol.
	// Symbols that fail individually are simply absent from the result.
	FetchQuotes() (map[string]models.MQuote, error)

	// -----------------------------------------------------------------------------

	// FetchDailyTrends fetches the recent multi-day close/change context per
	// symbol, formatted for the advisor prompt. Runs once at startup.
	FetchDailyTrends() (map[string]string, error)

	// -----------------------------------------------------------------------------

	// UpdateSymbols replaces the watched symbol list
	UpdateSymbols(symbols []string) error
}
