package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAlertPostsMessage(t *testing.T) {
	var received telegramMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTEST-TOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewTelegramNotifier("TEST-TOKEN", "chat-42")
	notifier.baseURL = server.URL

	err := notifier.SendAlert("error", "drawdown 20.00% exceeds limit 15.00%")
	require.NoError(t, err)

	assert.Equal(t, "chat-42", received.ChatID)
	assert.Equal(t, "Markdown", received.ParseMode)
	assert.Contains(t, received.Text, "🚨")
	assert.Contains(t, received.Text, "Risk Engine Alert")
	assert.Contains(t, received.Text, "drawdown 20.00% exceeds limit 15.00%")
}

func TestSendAlertNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	notifier := NewTelegramNotifier("TEST-TOKEN", "chat-42")
	notifier.baseURL = server.URL

	err := notifier.SendAlert("info", "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFormatAlertLevels(t *testing.T) {
	tests := []struct {
		level string
		emoji string
	}{
		{"info", "ℹ️"},
		{"warning", "⚠️"},
		{"error", "🚨"},
		{"success", "✅"},
		{"unknown", "ℹ️"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			text := formatAlert(tt.level, "message body")
			assert.Contains(t, text, tt.emoji)
			assert.Contains(t, text, "message body")
		})
	}
}
