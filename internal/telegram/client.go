package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// ParseModeHTML is the parse_mode used for formatted bot messages.
const ParseModeHTML = "HTML"

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// Client talks to the Telegram Bot API over HTTP. The base URL is
// configurable so tests can point it at a local server.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Bot API client.
func NewClient(token, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// SendMessage sends a text message. When parseMode is set and the API rejects
// the formatting, it retries once with tags stripped so the user still gets
// the plain text.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text, parseMode string) error {
	params := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if parseMode != "" {
		params["parse_mode"] = parseMode
	}
	_, err := c.call(ctx, "sendMessage", params)
	if err != nil && parseMode != "" {
		c.logger.Warn("formatted send failed, retrying as plain text",
			zap.Int64("chat_id", chatID), zap.Error(err))
		_, err = c.call(ctx, "sendMessage", map[string]interface{}{
			"chat_id": chatID,
			"text":    htmlTagRe.ReplaceAllString(text, ""),
		})
	}
	return err
}

// SendQuizPoll sends a non-anonymous quiz poll and returns the Telegram poll
// id and message id. The poll id is what poll_answer updates carry back.
func (c *Client) SendQuizPoll(ctx context.Context, chatID int64, question string, options []string, correctIndex int, explanation string) (pollID string, messageID int64, err error) {
	params := map[string]interface{}{
		"chat_id":           chatID,
		"question":          truncate(question, 300),
		"options":           options,
		"type":              "quiz",
		"correct_option_id": correctIndex,
		"is_anonymous":      false,
	}
	if explanation != "" {
		params["explanation"] = truncate(explanation, 200)
	}
	raw, err := c.call(ctx, "sendPoll", params)
	if err != nil {
		return "", 0, err
	}
	var result struct {
		MessageID int64    `json:"message_id"`
		Poll      SentPoll `json:"poll"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", 0, fmt.Errorf("decode sendPoll result: %w", err)
	}
	return result.Poll.ID, result.MessageID, nil
}

// SetWebhook registers the webhook URL with a secret token. Only message and
// poll_answer updates are requested.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	params := map[string]interface{}{
		"url":             url,
		"allowed_updates": []string{"message", "poll_answer"},
	}
	if secretToken != "" {
		params["secret_token"] = secretToken
	}
	_, err := c.call(ctx, "setWebhook", params)
	return err
}

// DeleteWebhook removes the webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := c.call(ctx, "deleteWebhook", map[string]interface{}{
		"drop_pending_updates": dropPending,
	})
	return err
}

// GetWebhookInfo returns the current webhook registration state.
func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	raw, err := c.call(ctx, "getWebhookInfo", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	var info WebhookInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode webhook info: %w", err)
	}
	return &info, nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}
	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("%s: telegram error %d: %s", method, apiResp.ErrorCode, apiResp.Description)
	}
	return apiResp.Result, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
