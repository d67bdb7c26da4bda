package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Client calls the Telegram Bot API. Every call uses a fixed short timeout
// and is never retried.
type Client struct {
	botToken string
	baseURL  string
	client   *http.Client
}

// NewClient creates a Bot API client for the given token.
func NewClient(botToken string) *Client {
	return &Client{
		botToken: botToken,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL overrides the Bot API base URL (for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// InlineKeyboardMarkup is the reply_markup structure for inline keyboards.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one button; exactly one of URL, WebApp, or
// CallbackData should be set.
type InlineKeyboardButton struct {
	Text         string      `json:"text"`
	URL          string      `json:"url,omitempty"`
	WebApp       *WebAppInfo `json:"web_app,omitempty"`
	CallbackData string      `json:"callback_data,omitempty"`
}

// WebAppInfo points a button at a Mini App.
type WebAppInfo struct {
	URL string `json:"url"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

// SendMessage sends a text message and returns the provider-assigned
// message id, or zero when the provider did not report one.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) (int64, error) {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	result, err := c.call(ctx, "sendMessage", payload)
	if err != nil {
		return 0, err
	}
	return messageID(result), nil
}

// SendPhoto sends a photo by file id or URL and returns the new message id.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo, caption string, markup *InlineKeyboardMarkup) (int64, error) {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"photo":   photo,
		"caption": caption,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	result, err := c.call(ctx, "sendPhoto", payload)
	if err != nil {
		return 0, err
	}
	return messageID(result), nil
}

// EditMessageText replaces the text of an existing message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	_, err := c.call(ctx, "editMessageText", payload)
	return err
}

// DeleteMessage removes a message from a chat.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	_, err := c.call(ctx, "deleteMessage", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	})
	return err
}

// AnswerCallbackQuery acknowledges an inline-button press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string, showAlert bool) error {
	_, err := c.call(ctx, "answerCallbackQuery", map[string]interface{}{
		"callback_query_id": callbackQueryID,
		"text":              text,
		"show_alert":        showAlert,
	})
	return err
}

// SetWebhook registers the webhook URL with Telegram.
func (c *Client) SetWebhook(ctx context.Context, webhookURL string) error {
	_, err := c.call(ctx, "setWebhook", map[string]interface{}{
		"url": webhookURL,
	})
	return err
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		return nil, fmt.Errorf("%s failed: error %d: %s", method, apiResp.ErrorCode, apiResp.Description)
	}

	return apiResp.Result, nil
}

// messageID extracts the message id from a send result, tolerating results
// that carry none.
func messageID(result json.RawMessage) int64 {
	var sent sentMessage
	if err := json.Unmarshal(result, &sent); err != nil {
		return 0
	}
	return sent.MessageID
}
