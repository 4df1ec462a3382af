package sina

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/config"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/helpers"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/interfaces"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

const (
	quoteEndpoint = "https://hq.sinajs.cn/list="
	klineEndpoint = "https://quotes.sina.cn/cn/api/json_v2.php/CN_MarketDataService.getKLineData"

	// The quote host rejects requests without a finance referer.
	quoteReferer = "https://finance.sina.com.cn"

	dailyTrendDays = 5
)

// -----------------------------------------------------------------------------

type SinaQuoteSource struct {
	Config  *models.MConfig
	symbols atomic.Value // []string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

var _ interfaces.IQuoteSource = (*SinaQuoteSource)(nil)

// -----------------------------------------------------------------------------

func NewSinaQuoteSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *SinaQuoteSource {
	s := &SinaQuoteSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "SinaQuoteSource"),
	}
	s.symbols.Store(append([]string(nil), cfg.Monitor.Symbols...))
	return s
}

// -----------------------------------------------------------------------------

func (s *SinaQuoteSource) Name() string {
	return "sina"
}

// -----------------------------------------------------------------------------

func (s *SinaQuoteSource) getSymbols() []string {
	return s.symbols.Load().([]string)
}

// -----------------------------------------------------------------------------

// UpdateSymbols swaps the watchlist for subsequent fetches.
func (s *SinaQuoteSource) UpdateSymbols(symbols []string) error {
	for _, sym := range symbols {
		if err := config.ValidateSymbol(sym); err != nil {
			return err
		}
	}
	s.symbols.Store(append([]string(nil), symbols...))
	s.Logger.Info("Watchlist updated: %d symbols", len(symbols))
	return nil
}

// -----------------------------------------------------------------------------

// FetchQuotes pulls the whole watchlist in ONE request; the quote host
// accepts a comma-separated symbol list.
func (s *SinaQuoteSource) FetchQuotes() (map[string]models.MQuote, error) {
	symbols := s.getSymbols()
	if len(symbols) == 0 {
		return map[string]models.MQuote{}, nil
	}

	prefixed := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		prefixed = append(prefixed, ExchangePrefix(sym)+sym)
	}

	url := quoteEndpoint + strings.Join(prefixed, ",")
	body, err := s.Network.Get(url, nil, map[string]string{"Referer": quoteReferer})
	if err != nil {
		return nil, &helpers.QuoteSourceError{MonitorError: helpers.MonitorError{
			Message: "quote batch fetch failed",
			Cause:   err,
		}}
	}

	quotes := ParseQuoteResponse(body)
	if len(quotes) == 0 {
		return nil, &helpers.QuoteSourceError{MonitorError: helpers.MonitorError{
			Message: fmt.Sprintf("no parseable quotes in %d-byte response", len(body)),
		}}
	}

	return quotes, nil
}

// -----------------------------------------------------------------------------

// FetchDailyTrends collects a short daily-close history per symbol, rendered
// as "MM-DD(close) -> ..." strings for prompt context. Fetched once at
// startup; symbols are pulled concurrently under the configured limit.
func (s *SinaQuoteSource) FetchDailyTrends() (map[string]string, error) {
	symbols := s.getSymbols()

	trends := make(map[string]string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, s.Config.Network.ConcurrentRequests)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			time.Sleep(10 * time.Millisecond)

			trend, err := s.fetchDailyTrend(sym)
			if err != nil {
				s.Logger.Warning("Daily trend for %s unavailable: %v", sym, err)
				return
			}

			mu.Lock()
			trends[sym] = trend
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	s.Logger.Info("Fetched daily trends for %d/%d symbols", len(trends), len(symbols))
	return trends, nil
}

// -----------------------------------------------------------------------------

type klineBar struct {
	Day   string `json:"day"`
	Close string `json:"close"`
}

func (s *SinaQuoteSource) fetchDailyTrend(symbol string) (string, error) {
	params := map[string]string{
		"symbol":  ExchangePrefix(symbol) + symbol,
		"scale":   "240",
		"ma":      "no",
		"datalen": fmt.Sprintf("%d", dailyTrendDays),
	}

	body, err := s.Network.Get(klineEndpoint, params, nil)
	if err != nil {
		return "", err
	}

	var bars []klineBar
	if err := json.Unmarshal(body, &bars); err != nil {
		return "", fmt.Errorf("kline decode: %w", err)
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("empty kline history")
	}

	points := make([]string, 0, len(bars))
	for _, b := range bars {
		day := b.Day
		if len(day) == len("2006-01-02") {
			day = day[5:]
		}
		points = append(points, fmt.Sprintf("%s(%s)", day, b.Close))
	}

	return strings.Join(points, " -> "), nil
}

// -----------------------------------------------------------------------------

// ExchangePrefix maps a bare code to the feed's exchange prefix. Shanghai
// lists 6xxxxx shares and 5xxxxx funds; everything else trades in Shenzhen.
func ExchangePrefix(code string) string {
	if len(code) > 0 {
		switch code[0] {
		case '6', '5', '9':
			return "sh"
		}
	}
	return "sz"
}
