package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeStore struct {
	saved      [][]models.MSnapshot
	recent     map[string][]models.MSnapshot
	recentErr  error
	saveErr    error
	cleanupErr error
}

func (f *fakeStore) Initialize() error { return nil }

func (f *fakeStore) InitMeta(map[string]string) error { return nil }

func (f *fakeStore) CleanupOldData(time.Duration) error { return f.cleanupErr }

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) SaveSnapshots(b []models.MSnapshot) error {
	f.saved = append(f.saved, b)
	return f.saveErr
}
func (f *fakeStore) RecentSnapshots(code string, limit int) ([]models.MSnapshot, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.recent[code], nil
}

type fakeSource struct {
	quotes map[string]models.MQuote
	err    error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchQuotes() (map[string]models.MQuote, error) {
	return f.quotes, f.err
}

func (f *fakeSource) FetchDailyTrends() (map[string]string, error) {
	return map[string]string{}, nil
}

func (f *fakeSource) UpdateSymbols([]string) error { return nil }

type fakeAdvisor struct {
	enabled bool
	advice  string
	calls   int
}

func (f *fakeAdvisor) Enabled() bool { return f.enabled }
func (f *fakeAdvisor) AnalyzeAlert(*models.MQuote, *models.MAlert, models.MAdvisorContext) (string, error) {
	f.calls++
	return f.advice, nil
}

type fakeNotifier struct {
	titles []string
}

func (f *fakeNotifier) Send(title, body string) error {
	f.titles = append(f.titles, title)
	return nil
}

type fakeExchanger struct {
	broadcasts []*models.MLatestData
	alerts     []models.MAlert
}

func (f *fakeExchanger) Broadcast(d *models.MLatestData) {
	f.broadcasts = append(f.broadcasts, d)
}

func (f *fakeExchanger) RecordAlert(a models.MAlert, advice string) {
	f.alerts = append(f.alerts, a)
}

func (f *fakeExchanger) Start() error { return nil }

func (f *fakeExchanger) Stop() error { return nil }

// -----------------------------------------------------------------------------

func testConfig() *models.MConfig {
	return &models.MConfig{
		LogLevel: "ERROR",
		Monitor: models.MMonitorConfig{
			Symbols:         []string{"600172", "300316"},
			IntervalSeconds: 10,
			HistoryLen:      19,
			StatsWindowMins: 30,
		},
		Models: models.MModelsConfig{
			RiseSpeedThreshold: 0.4,
			VolRatioThreshold:  1.0,
			DropSpeedThreshold: -0.4,
			NetInflowThreshold: 50,
		},
	}
}

func newTestMonitor(store *fakeStore, source *fakeSource) (*Monitor, *fakeAdvisor, *fakeNotifier, *fakeExchanger) {
	advisor := &fakeAdvisor{enabled: true, advice: "hold"}
	notifier := &fakeNotifier{}
	exchanger := &fakeExchanger{}
	m := NewMonitor(testConfig(), store, source, advisor, notifier, exchanger)
	return m, advisor, notifier, exchanger
}

// risingHistory produces snapshots that trip the upward momentum and volume
// models at once.
func risingHistory(code string) []models.MSnapshot {
	var snaps []models.MSnapshot
	for i := int64(0); i <= 23; i++ {
		ts := i * 10
		price := 10.0 + 0.3*float64(ts-50)/180.0
		var vol float64
		if ts < 180 {
			vol = float64(ts/60+1) * 1000
		} else {
			vol = 7000
		}
		snaps = append(snaps, models.MSnapshot{Code: code, Timestamp: ts, Price: price, Volume: vol})
	}
	return snaps
}

// -----------------------------------------------------------------------------

func TestCyclePersistsAndBroadcasts(t *testing.T) {
	store := &fakeStore{recent: map[string][]models.MSnapshot{}}
	source := &fakeSource{quotes: map[string]models.MQuote{
		"600172": {Code: "600172", Name: "A", Price: 10.0, ChangePct: 1.0, ShareVolume: 1000, Timestamp: 100},
		"300316": {Code: "300316", Name: "B", Price: 50.0, ChangePct: -1.0, ShareVolume: 2000, Timestamp: 100},
	}}

	m, _, _, exchanger := newTestMonitor(store, source)
	m.runCycle(time.Now())

	if len(store.saved) != 1 || len(store.saved[0]) != 2 {
		t.Fatalf("want one batch of 2 snapshots, got %+v", store.saved)
	}
	if len(exchanger.broadcasts) != 1 {
		t.Fatalf("want one broadcast, got %d", len(exchanger.broadcasts))
	}

	data := exchanger.broadcasts[0]
	if len(data.Rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(data.Rows))
	}
	// Rows sorted by code.
	if data.Rows[0].Code != "300316" || data.Rows[1].Code != "600172" {
		t.Fatalf("rows not sorted: %+v", data.Rows)
	}
	if data.TickMetrics.ValidSymbols != 2 {
		t.Fatalf("want 2 valid symbols, got %d", data.TickMetrics.ValidSymbols)
	}
}

// -----------------------------------------------------------------------------

func TestCycleSkipsZeroPriceQuotes(t *testing.T) {
	store := &fakeStore{recent: map[string][]models.MSnapshot{}}
	source := &fakeSource{quotes: map[string]models.MQuote{
		"600172": {Code: "600172", Price: 10.0, Timestamp: 100},
		"300316": {Code: "300316", Price: 0, Timestamp: 100}, // suspended
	}}

	m, _, _, _ := newTestMonitor(store, source)
	m.runCycle(time.Now())

	if len(store.saved[0]) != 1 {
		t.Fatalf("suspended quote should not persist, got %+v", store.saved[0])
	}
}

// -----------------------------------------------------------------------------

func TestCycleSurvivesFetchError(t *testing.T) {
	store := &fakeStore{}
	source := &fakeSource{err: errors.New("feed down")}

	m, _, _, exchanger := newTestMonitor(store, source)
	m.runCycle(time.Now())

	if len(store.saved) != 0 {
		t.Fatal("nothing should persist on fetch failure")
	}
	if len(exchanger.broadcasts) != 0 {
		t.Fatal("nothing should broadcast on fetch failure")
	}
}

// -----------------------------------------------------------------------------

func TestAlertDispatchAndCooldown(t *testing.T) {
	store := &fakeStore{recent: map[string][]models.MSnapshot{
		"600172": risingHistory("600172"),
	}}
	source := &fakeSource{quotes: map[string]models.MQuote{
		"600172": {Code: "600172", Name: "A", Price: 10.3, ChangePct: 3.0, ShareVolume: 7000, Timestamp: 230},
	}}

	m, advisor, notifier, exchanger := newTestMonitor(store, source)

	now := time.Now()
	m.runCycle(now)

	if len(exchanger.alerts) != 1 {
		t.Fatalf("want one recorded alert, got %d", len(exchanger.alerts))
	}
	if exchanger.alerts[0].ModelKind != models.ModelRocket {
		t.Fatalf("want rocket, got %q", exchanger.alerts[0].ModelKind)
	}
	if advisor.calls != 1 {
		t.Fatalf("advisor should be consulted once, got %d", advisor.calls)
	}
	if len(notifier.titles) != 1 || notifier.titles[0] != "🚀 Rocket Launch" {
		t.Fatalf("notification wrong: %v", notifier.titles)
	}

	status := exchanger.broadcasts[0].Rows[0].Status
	if status != models.ModelRocket {
		t.Fatalf("row status should show the alert, got %q", status)
	}

	// Second identical cycle inside the cooldown: no new dispatch.
	m.runCycle(now.Add(10 * time.Second))
	if len(exchanger.alerts) != 1 || len(notifier.titles) != 1 {
		t.Fatalf("cooldown violated: %d alerts, %d notifications", len(exchanger.alerts), len(notifier.titles))
	}

	// After the cooldown it may fire again.
	m.runCycle(now.Add(6 * time.Minute))
	if len(exchanger.alerts) != 2 {
		t.Fatalf("alert should refire after cooldown, got %d", len(exchanger.alerts))
	}
}

// -----------------------------------------------------------------------------

func TestHistoryReadFailureDegradesToMemory(t *testing.T) {
	store := &fakeStore{recentErr: errors.New("db locked")}
	source := &fakeSource{quotes: map[string]models.MQuote{
		"600172": {Code: "600172", Price: 10.0, Timestamp: 100},
	}}

	m, _, _, exchanger := newTestMonitor(store, source)
	m.runCycle(time.Now())

	if len(exchanger.broadcasts) != 1 {
		t.Fatal("cycle should still broadcast on history read failure")
	}
	row := exchanger.broadcasts[0].Rows[0]
	if row.Status != models.TrendInsufficient {
		t.Fatalf("want neutral trend on degraded read, got %q", row.Status)
	}
}

// -----------------------------------------------------------------------------

func TestPersistFailureDoesNotStopCycle(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full"), recent: map[string][]models.MSnapshot{}}
	source := &fakeSource{quotes: map[string]models.MQuote{
		"600172": {Code: "600172", Price: 10.0, Timestamp: 100},
	}}

	m, _, _, exchanger := newTestMonitor(store, source)
	m.runCycle(time.Now())

	if len(exchanger.broadcasts) != 1 {
		t.Fatal("cycle should broadcast despite persist failure")
	}
	if exchanger.broadcasts[0].TickMetrics.PersistFailed != 1 {
		t.Fatalf("persist failure not surfaced: %+v", exchanger.broadcasts[0].TickMetrics)
	}
}
