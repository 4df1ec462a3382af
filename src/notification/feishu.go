package notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/interfaces"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------
// FeishuNotifier posts alert cards to a Feishu group webhook. Without a
// configured webhook URL every Send is a logged no-op, so the monitor never
// needs to care whether notifications are wired.
// -----------------------------------------------------------------------------

type FeishuNotifier struct {
	Config *models.MNotifierConfig
	Client *resty.Client
	Logger *logger.Logger

	now func() time.Time
}

var _ interfaces.INotifier = (*FeishuNotifier)(nil)

// -----------------------------------------------------------------------------

func NewFeishuNotifier(cfg *models.MConfig) *FeishuNotifier {
	return &FeishuNotifier{
		Config: &cfg.Notifier,
		Client: resty.New().SetTimeout(10 * time.Second),
		Logger: logger.NewLogger(cfg.LogLevel, "FeishuNotifier"),
		now:    time.Now,
	}
}

// -----------------------------------------------------------------------------

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send posts an interactive card with the given title and markdown body.
func (n *FeishuNotifier) Send(title, body string) error {
	if n.Config.WebhookURL == "" {
		n.Logger.Debug("Webhook not configured, dropping notification: %s", title)
		return nil
	}

	payload := map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title":    map[string]any{"tag": "plain_text", "content": title},
				"template": "red",
			},
			"elements": []any{
				map[string]any{
					"tag":     "markdown",
					"content": body,
				},
			},
		},
	}

	if n.Config.Secret != "" {
		ts := n.now().Unix()
		payload["timestamp"] = fmt.Sprintf("%d", ts)
		payload["sign"] = GenSign(n.Config.Secret, ts)
	}

	resp, err := n.Client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.Config.WebhookURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode(), resp.String())
	}

	// The webhook reports signature and payload rejections with a 200 and a
	// non-zero code, not always with a JSON content type. Decode the body
	// ourselves instead of trusting the declared type.
	var out feishuResponse
	if err := json.Unmarshal(resp.Body(), &out); err == nil && out.Code != 0 {
		return fmt.Errorf("webhook rejected: code %d, %s", out.Code, out.Msg)
	}

	n.Logger.Info("Notification sent: %s", title)
	return nil
}

// -----------------------------------------------------------------------------

// GenSign implements the webhook signature scheme: HMAC-SHA256 with
// "{timestamp}\n{secret}" as the key over an empty message, base64-encoded.
func GenSign(secret string, timestamp int64) string {
	key := fmt.Sprintf("%d\n%s", timestamp, secret)
	mac := hmac.New(sha256.New, []byte(key))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
