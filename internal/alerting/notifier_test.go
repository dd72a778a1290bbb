package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func sampleNotification() Notification {
	return Notification{
		UserID:           "alice",
		When:             time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC),
		Breaches:         []string{"monthly budget"},
		MonthlyUsedPct:   decimal.NewFromInt(92),
		DailyUsedPct:     decimal.NewFromInt(40),
		MonthlyRemaining: decimal.RequireFromString("400.00"),
		DailyRemaining:   decimal.RequireFromString("300.00"),
		Channels:         []string{"telegram"},
	}
}

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier("bot-token", "chat-1", server.URL, 5*time.Second, zerolog.Nop())
	if err := n.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotPayload["chat_id"] != "chat-1" {
		t.Errorf("unexpected chat_id: %s", gotPayload["chat_id"])
	}
	text := gotPayload["text"]
	for _, want := range []string{"[Budget Alert]", "User: alice", "monthly budget", "92.0%"} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestTelegramNotifyHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewTelegramNotifier("bot-token", "chat-1", server.URL, 5*time.Second, zerolog.Nop())
	if err := n.Notify(context.Background(), sampleNotification()); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestTelegramNotifyAPIRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier("bot-token", "chat-1", server.URL, 5*time.Second, zerolog.Nop())
	if err := n.Notify(context.Background(), sampleNotification()); err == nil {
		t.Fatal("expected error when the API reports ok=false")
	}
}

func TestRenderMessage(t *testing.T) {
	text := renderMessage(sampleNotification())

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if lines[0] != "[Budget Alert]" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(text, "Breaches: monthly budget") {
		t.Errorf("breaches line missing:\n%s", text)
	}
	if !strings.Contains(text, "Monthly budget used: 92.0% (400.00 remaining)") {
		t.Errorf("monthly line missing:\n%s", text)
	}
	if !strings.Contains(text, "Daily limit used: 40.0% (300.00 remaining)") {
		t.Errorf("daily line missing:\n%s", text)
	}
}
