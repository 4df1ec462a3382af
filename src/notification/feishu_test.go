package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------

func notifierConfig(url, secret string) *models.MConfig {
	return &models.MConfig{
		LogLevel: "ERROR",
		Notifier: models.MNotifierConfig{WebhookURL: url, Secret: secret},
	}
}

// -----------------------------------------------------------------------------

func TestSendWithoutWebhookIsNoOp(t *testing.T) {
	n := NewFeishuNotifier(notifierConfig("", ""))
	if err := n.Send("🚀 Rocket Launch", "body"); err != nil {
		t.Fatalf("unconfigured notifier must not error, got %v", err)
	}
}

// -----------------------------------------------------------------------------

func TestSendPostsSignedCard(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.Write([]byte(`{"code":0,"msg":"success"}`))
	}))
	defer srv.Close()

	n := NewFeishuNotifier(notifierConfig(srv.URL, "topsecret"))
	n.now = func() time.Time { return time.Unix(1724914500, 0) }

	if err := n.Send("🌊 High Dive", "**600172** dropped"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got["msg_type"] != "interactive" {
		t.Fatalf("want interactive card, got %v", got["msg_type"])
	}
	if got["timestamp"] != "1724914500" {
		t.Fatalf("timestamp missing: %v", got["timestamp"])
	}
	if got["sign"] != GenSign("topsecret", 1724914500) {
		t.Fatalf("signature mismatch: %v", got["sign"])
	}

	card, _ := got["card"].(map[string]any)
	if card == nil {
		t.Fatal("card missing")
	}
}

// -----------------------------------------------------------------------------

func TestSendSurfacesRejection(t *testing.T) {
	// The real endpoint does not always declare a JSON content type on
	// rejections, so serve the body as plain text on purpose.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(`{"code":19021,"msg":"sign match fail"}`))
	}))
	defer srv.Close()

	n := NewFeishuNotifier(notifierConfig(srv.URL, ""))
	if err := n.Send("t", "b"); err == nil {
		t.Fatal("expected error on non-zero response code")
	}
}

// -----------------------------------------------------------------------------

func TestGenSignIsDeterministic(t *testing.T) {
	a := GenSign("secret", 1724914500)
	b := GenSign("secret", 1724914500)
	if a == "" || a != b {
		t.Fatalf("signature unstable: %q vs %q", a, b)
	}
	if GenSign("secret", 1724914501) == a {
		t.Fatal("different timestamps must sign differently")
	}
}
