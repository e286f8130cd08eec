package telegram

import "encoding/json"

// Update is an inbound Bot API update delivered to the webhook. Only the
// update kinds the bot subscribes to are modeled.
type Update struct {
	UpdateID   int64       `json:"update_id"`
	Message    *Message    `json:"message,omitempty"`
	PollAnswer *PollAnswer `json:"poll_answer,omitempty"`
}

// Message is a chat message (command, reply, or service message).
type Message struct {
	MessageID      int64  `json:"message_id"`
	From           *User  `json:"from,omitempty"`
	Chat           Chat   `json:"chat"`
	Date           int64  `json:"date"`
	Text           string `json:"text,omitempty"`
	NewChatMembers []User `json:"new_chat_members,omitempty"`
}

// User identifies a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat identifies a private or group chat.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// PollAnswer is a non-anonymous poll vote. OptionIDs holds the selected
// option indexes; quiz polls allow exactly one.
type PollAnswer struct {
	PollID    string `json:"poll_id"`
	User      User   `json:"user"`
	OptionIDs []int  `json:"option_ids"`
}

// SentPoll is the poll object returned by sendPoll.
type SentPoll struct {
	ID string `json:"id"`
}

// WebhookInfo is the getWebhookInfo result.
type WebhookInfo struct {
	URL                string `json:"url"`
	PendingUpdateCount int    `json:"pending_update_count"`
	LastErrorDate      int64  `json:"last_error_date,omitempty"`
	LastErrorMessage   string `json:"last_error_message,omitempty"`
}

// apiResponse is the Bot API envelope: {"ok": true, "result": ...}.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}
