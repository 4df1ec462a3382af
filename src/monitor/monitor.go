package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/analysis"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/helpers"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/interfaces"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/trigger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/utils"
)

// -----------------------------------------------------------------------------

const (
	// One alert per symbol and model within this window.
	alertCooldown = 5 * time.Minute

	// Rows older than this leave the database.
	snapshotRetention = 72 * time.Hour

	// Minutes of price path included in advisor prompts.
	intradayTrendMins = 15
)

// -----------------------------------------------------------------------------
// Monitor drives the polling cycle: fetch the watchlist, persist snapshots,
// derive indicators, classify, dispatch alerts and push the rendered state to
// the dashboard. Collaborator failures degrade single steps, never the loop.
// -----------------------------------------------------------------------------

type Monitor struct {
	Config     *models.MConfig
	Store      interfaces.ISnapshotStore
	Source     interfaces.IQuoteSource
	Advisor    interfaces.IAdvisor
	Notifier   interfaces.INotifier
	Exchanger  interfaces.IDataExchanger
	Classifier *trigger.Classifier
	History    *HistoryCache
	Scheduler  *utils.MarketScheduler
	Logger     *logger.Logger

	dailyTrends map[string]string
	lastAlertAt map[string]time.Time
	lastCleanup time.Time
}

// -----------------------------------------------------------------------------

func NewMonitor(
	cfg *models.MConfig,
	store interfaces.ISnapshotStore,
	source interfaces.IQuoteSource,
	advisor interfaces.IAdvisor,
	notifier interfaces.INotifier,
	exchanger interfaces.IDataExchanger,
) *Monitor {
	return &Monitor{
		Config:      cfg,
		Store:       store,
		Source:      source,
		Advisor:     advisor,
		Notifier:    notifier,
		Exchanger:   exchanger,
		Classifier:  trigger.NewClassifier(cfg.Models),
		History:     NewHistoryCache(cfg.Monitor.HistoryLen),
		Scheduler:   utils.NewMarketScheduler(cfg.Monitor.Symbols, logger.NewLogger(cfg.LogLevel, "MarketScheduler")),
		Logger:      logger.NewLogger(cfg.LogLevel, "Monitor"),
		dailyTrends: make(map[string]string),
		lastAlertAt: make(map[string]time.Time),
		lastCleanup: time.Now(),
	}
}

// -----------------------------------------------------------------------------

// Run blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.fetchDailyTrends()

	interval := time.Duration(m.Config.Monitor.IntervalSeconds) * time.Second
	m.Logger.Info("Monitoring %d symbols every %s", len(m.Config.Monitor.Symbols), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if m.Config.Monitor.RespectCalendar && !m.Scheduler.AnyMarketOpen() {
			pause := time.Duration(m.Config.Monitor.ClosedPauseMins) * time.Minute
			m.Logger.Info("Market closed. Pausing for %s.", pause)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
			continue
		}

		m.runCycle(time.Now())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// -----------------------------------------------------------------------------

// fetchDailyTrends loads the multi-day close history once. A feed hiccup at
// startup only costs prompt context, so failures are retried briefly and
// then tolerated.
func (m *Monitor) fetchDailyTrends() {
	err := helpers.RetryWithBackoff(m.Logger, "fetch daily trends", 2, 2*time.Second, func() error {
		trends, err := m.Source.FetchDailyTrends()
		if err != nil {
			return err
		}
		m.dailyTrends = trends
		return nil
	})
	if err != nil {
		m.Logger.Warning("Daily trends unavailable, advisor prompts will omit them: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (m *Monitor) runCycle(now time.Time) {
	fetchStart := time.Now()
	quotes, err := m.Source.FetchQuotes()
	if err != nil {
		m.Logger.Error("Fetch cycle failed: %v", err)
		backoff := time.Duration(m.Config.Monitor.FetchBackoffSecs) * time.Second
		if backoff > 0 {
			time.Sleep(backoff)
		}
		return
	}
	fetchSecs := time.Since(fetchStart).Seconds()

	metrics := models.MTickMetrics{FetchSeconds: fetchSecs}

	// PERSIST. A storage failure costs this tick's history, not the tick.
	batch := make([]models.MSnapshot, 0, len(quotes))
	for _, q := range quotes {
		if q.Price <= 0 {
			continue
		}
		batch = append(batch, q.Snapshot())
		metrics.ValidSymbols++
	}
	if err := m.Store.SaveSnapshots(batch); err != nil {
		m.Logger.Error("Persist failed for %d snapshots: %v", len(batch), err)
		metrics.PersistFailed = len(batch)
	}

	m.maybeCleanup(now)

	sentiment := PoolSentiment(quotes)

	rows := make([]models.MDisplayRow, 0, len(quotes))
	for code, q := range quotes {
		quote := q
		row := m.processSymbol(code, &quote, sentiment, now, &metrics)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })

	m.Exchanger.Broadcast(&models.MLatestData{
		Rows:          rows,
		PoolSentiment: sentiment,
		Timestamp:     now.Unix(),
		TickMetrics:   metrics,
	})
}

// -----------------------------------------------------------------------------

// processSymbol runs ENRICH and CLASSIFY for one symbol and returns its
// dashboard row.
func (m *Monitor) processSymbol(code string, quote *models.MQuote, sentiment float64, now time.Time, metrics *models.MTickMetrics) models.MDisplayRow {
	m.History.Observe(code, quote.Timestamp, quote.Price)

	recent, err := m.Store.RecentSnapshots(code, m.historyLimit())
	var stats models.MWindowStats
	if err != nil {
		// Degrade to the in-memory trail rather than skipping the symbol.
		m.Logger.Warning("History read for %s failed, using memory fallback: %v", code, err)
		stats = models.NeutralWindowStats()
		stats.Speed3Min = m.History.FallbackSpeed(code, 180)
	} else {
		stats = analysis.ComputeWindowStats(recent)
	}

	book := BuildBookAggregate(quote, m.Config.Models.AskBidRatioLimit)

	status := stats.TrendLabel
	if alert := m.Classifier.Classify(quote, stats, now); alert != nil && m.passesCooldown(alert, now) {
		metrics.AlertsRaised++
		status = alert.ModelKind
		m.dispatchAlert(quote, alert, stats, book, sentiment, recent)
	}

	return models.MDisplayRow{
		Code:            code,
		Name:            quote.Name,
		Price:           quote.Price,
		ChangePct:       quote.ChangePct,
		Speed3Min:       stats.Speed3Min,
		VolRatio:        stats.VolRatio,
		VWAP:            book.VWAP,
		CommitmentRatio: book.CommitmentRatio,
		High:            quote.High,
		Low:             quote.Low,
		Status:          status,
	}
}

// -----------------------------------------------------------------------------

// passesCooldown suppresses repeats of the same symbol-and-model alert
// inside the cooldown window.
func (m *Monitor) passesCooldown(alert *models.MAlert, now time.Time) bool {
	key := alert.Code + "/" + alert.ModelKind
	if last, ok := m.lastAlertAt[key]; ok && now.Sub(last) < alertCooldown {
		return false
	}
	m.lastAlertAt[key] = now
	return true
}

// -----------------------------------------------------------------------------

// dispatchAlert enriches the alert with an LLM read, notifies, and records
// it for the dashboard. Each leg fails independently.
func (m *Monitor) dispatchAlert(
	quote *models.MQuote,
	alert *models.MAlert,
	stats models.MWindowStats,
	book models.MBookAggregate,
	sentiment float64,
	recent []models.MSnapshot,
) {
	m.Logger.Info("ALERT %s %s(%s): %s", alert.Title(), alert.Name, alert.Code, alert.Indicators.LogicDesc)

	advice := ""
	if m.Advisor.Enabled() {
		ctx := models.MAdvisorContext{
			PoolSentiment: sentiment,
			IntradayTrend: analysis.BuildIntradayTrend(recent, intradayTrendMins),
			DailyTrend:    m.dailyTrends[alert.Code],
			Book:          book,
		}
		var err error
		advice, err = m.Advisor.AnalyzeAlert(quote, alert, ctx)
		if err != nil {
			m.Logger.Error("Advisor analysis for %s failed: %v", alert.Code, err)
			advice = ""
		}
	}

	if err := m.Notifier.Send(alert.Title(), m.renderAlertBody(quote, alert, stats, book, advice)); err != nil {
		m.Logger.Error("Notification for %s failed: %v", alert.Code, err)
	}

	m.Exchanger.RecordAlert(*alert, advice)
}

// -----------------------------------------------------------------------------

func (m *Monitor) renderAlertBody(
	quote *models.MQuote,
	alert *models.MAlert,
	stats models.MWindowStats,
	book models.MBookAggregate,
	advice string,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s (%s)**\n", alert.Name, alert.Code)
	fmt.Fprintf(&b, "Price: %.2f (%+.2f%%)\n", quote.Price, quote.ChangePct)
	fmt.Fprintf(&b, "3min speed: %+.2f%%  |  Vol ratio: %.2f\n", stats.Speed3Min, stats.VolRatio)
	fmt.Fprintf(&b, "Book: %s  |  VWAP: %.2f\n", book.Feature, book.VWAP)
	fmt.Fprintf(&b, "Trigger: %s\n", alert.Indicators.LogicDesc)

	if advice != "" {
		fmt.Fprintf(&b, "\n**Advisor**\n%s\n", advice)
	}

	return b.String()
}

// -----------------------------------------------------------------------------

// maybeCleanup trims old snapshots once an hour.
func (m *Monitor) maybeCleanup(now time.Time) {
	if now.Sub(m.lastCleanup) < time.Hour {
		return
	}
	m.lastCleanup = now

	if err := m.Store.CleanupOldData(snapshotRetention); err != nil {
		m.Logger.Warning("Snapshot cleanup failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

// historyLimit is how many rows the indicator window needs: one per poll
// over the stats window, plus slack for jitter.
func (m *Monitor) historyLimit() int {
	interval := m.Config.Monitor.IntervalSeconds
	if interval <= 0 {
		interval = 10
	}
	return m.Config.Monitor.StatsWindowMins*60/interval + 10
}
