package advisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/interfaces"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------
// KimiAdvisor asks an OpenAI-compatible chat endpoint for a short trading
// read on a triggered alert. Without an API key it reports disabled and the
// monitor skips it entirely.
// -----------------------------------------------------------------------------

const systemPrompt = "你是一位经验丰富的A股盘口短线交易员。根据给出的异动信号和盘面数据, " +
	"给一个简短的操作判断(看多/看空/观望)和两三句理由。不要免责声明, 不要重复输入数据。"

type KimiAdvisor struct {
	Config *models.MAdvisorConfig
	Client *resty.Client
	Logger *logger.Logger
}

var _ interfaces.IAdvisor = (*KimiAdvisor)(nil)

// -----------------------------------------------------------------------------

func NewKimiAdvisor(cfg *models.MConfig) *KimiAdvisor {
	client := resty.New().
		SetBaseURL(cfg.Advisor.BaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")

	if cfg.Advisor.APIKey != "" {
		client.SetAuthToken(cfg.Advisor.APIKey)
	}

	return &KimiAdvisor{
		Config: &cfg.Advisor,
		Client: client,
		Logger: logger.NewLogger(cfg.LogLevel, "KimiAdvisor"),
	}
}

// -----------------------------------------------------------------------------

func (a *KimiAdvisor) Enabled() bool {
	return a.Config.APIKey != ""
}

// -----------------------------------------------------------------------------

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// -----------------------------------------------------------------------------

// AnalyzeAlert builds the prompt from the alert and its surrounding context
// and returns the model's read as plain text.
func (a *KimiAdvisor) AnalyzeAlert(quote *models.MQuote, alert *models.MAlert, ctx models.MAdvisorContext) (string, error) {
	req := chatRequest{
		Model: a.Config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(quote, alert, ctx)},
		},
		Temperature: 0.3,
	}

	var out chatResponse
	resp, err := a.Client.R().
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("advisor API status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Error != nil {
		return "", fmt.Errorf("advisor API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("advisor API returned no choices")
	}

	advice := strings.TrimSpace(out.Choices[0].Message.Content)
	a.Logger.Debug("Advice for %s: %s", alert.Code, advice)
	return advice, nil
}

// -----------------------------------------------------------------------------

// BuildPrompt renders the alert context as labelled lines. Sections without
// data are left out so the model does not anchor on empty fields.
func BuildPrompt(quote *models.MQuote, alert *models.MAlert, ctx models.MAdvisorContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "信号: %s\n", alert.Title())
	fmt.Fprintf(&b, "标的: %s (%s)\n", alert.Name, alert.Code)
	fmt.Fprintf(&b, "现价: %.2f (涨跌 %+.2f%%, 今开 %.2f, 最高 %.2f, 最低 %.2f)\n",
		quote.Price, quote.ChangePct, quote.Open, quote.High, quote.Low)
	fmt.Fprintf(&b, "3分钟涨速: %+.2f%%, 量比: %.2f\n",
		alert.Indicators.Speed3Min, alert.Indicators.VolRatio)
	fmt.Fprintf(&b, "委比: %+.2f (%s), 均价: %.2f\n",
		ctx.Book.CommitmentRatio, ctx.Book.Feature, ctx.Book.VWAP)
	fmt.Fprintf(&b, "自选池情绪: 平均涨跌 %+.2f%%\n", ctx.PoolSentiment)

	if ctx.IntradayTrend != "" {
		fmt.Fprintf(&b, "近15分钟走势: %s\n", ctx.IntradayTrend)
	}
	if ctx.DailyTrend != "" {
		fmt.Fprintf(&b, "近5日收盘: %s\n", ctx.DailyTrend)
	}

	return b.String()
}
