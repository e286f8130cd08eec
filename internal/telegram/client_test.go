package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendQuizPoll(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendPoll", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":77,"poll":{"id":"tg-poll-1"}}}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN", srv.URL, zap.NewNop())
	pollID, messageID, err := c.SendQuizPoll(context.Background(),
		-100, "What is the capital of Spain?", []string{"Madrid", "Barcelona"}, 0, "since 1561")
	require.NoError(t, err)

	assert.Equal(t, "tg-poll-1", pollID)
	assert.Equal(t, int64(77), messageID)
	assert.Equal(t, "quiz", got["type"])
	assert.Equal(t, float64(0), got["correct_option_id"])
	assert.Equal(t, false, got["is_anonymous"])
	assert.Equal(t, "since 1561", got["explanation"])
}

func TestSendMessageFallsBackToPlainText(t *testing.T) {
	var bodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		if _, hasMode := body["parse_mode"]; hasMode {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"can't parse entities"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN", srv.URL, zap.NewNop())
	err := c.SendMessage(context.Background(), -100, "<b>hi</b> there", ParseModeHTML)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, "hi there", bodies[1]["text"])
	assert.NotContains(t, bodies[1], "parse_mode")
}

func TestCallSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"bot was kicked"}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN", srv.URL, zap.NewNop())
	err := c.SendMessage(context.Background(), -100, "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was kicked")
	assert.Contains(t, err.Error(), "403")
}

func TestSetWebhookSendsAllowedUpdates(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/setWebhook", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN", srv.URL, zap.NewNop())
	require.NoError(t, c.SetWebhook(context.Background(), "https://example.com/telegram/webhook", "s3cret"))

	assert.Equal(t, "https://example.com/telegram/webhook", got["url"])
	assert.Equal(t, "s3cret", got["secret_token"])
	assert.Equal(t, []interface{}{"message", "poll_answer"}, got["allowed_updates"])
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := ""
	for i := 0; i < 120; i++ {
		long += "ё"
	}
	out := truncate(long, 100)
	assert.LessOrEqual(t, len([]rune(out)), 100)
}
