package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
	Monitor  MMonitorConfig  `yaml:"monitor"`
	Models   MModelsConfig   `yaml:"models"`
	Advisor  MAdvisorConfig  `yaml:"advisor"`
	Notifier MNotifierConfig `yaml:"notifier"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	RetryDelaySeconds  int      `yaml:"retry_delay"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MMonitorConfig struct {
	Symbols          []string `yaml:"symbols"`
	IntervalSeconds  int      `yaml:"interval_seconds"`
	HistoryLen       int      `yaml:"history_len"`
	StatsWindowMins  int      `yaml:"stats_window_mins"`
	RespectCalendar  bool     `yaml:"respect_calendar"`
	ClosedPauseMins  int      `yaml:"closed_pause_mins"`
	FetchBackoffSecs int      `yaml:"fetch_backoff_seconds"`
}

// MModelsConfig holds the trigger thresholds.
// AskBidRatioLimit shapes the order-book feature text; BreakSupportLine
// belongs to an extended risk model that no rule consumes yet and is kept so
// enabling it is a config change, not a schema change.
type MModelsConfig struct {
	RiseSpeedThreshold float64 `yaml:"rise_speed_threshold"`
	VolRatioThreshold  float64 `yaml:"vol_ratio_threshold"`
	DropSpeedThreshold float64 `yaml:"drop_speed_threshold"`
	NetInflowThreshold float64 `yaml:"net_inflow_threshold"`
	AskBidRatioLimit   float64 `yaml:"ask_bid_ratio_limit"`
	BreakSupportLine   float64 `yaml:"break_support_line"`
}

type MAdvisorConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// API key comes from the KIMI_API_KEY environment variable.
	APIKey string `yaml:"-"`
}

type MNotifierConfig struct {
	// Webhook URL and secret come from FEISHU_WEBHOOK_URL / FEISHU_SECRET.
	WebhookURL string `yaml:"-"`
	Secret     string `yaml:"-"`
}
