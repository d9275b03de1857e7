package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Messenger delivers outbound text to a chat. Chat ids are strings: direct
// chats use the numeric user id, groups their (negative) group id.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// TelegramClient is a minimal Bot API client covering the one method this
// service sends with.
type TelegramClient struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewTelegramClient(token string, client *http.Client) *TelegramClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TelegramClient{token: token, baseURL: defaultAPIBase, client: client}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return err
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("telegram: unexpected response (status %d)", resp.StatusCode)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram: sendMessage failed: %s", parsed.Description)
	}
	return nil
}

// GroupAnnouncer adapts a Messenger into the wizards' announcement sink,
// pinned to one group chat.
type GroupAnnouncer struct {
	Messenger Messenger
	ChatID    string
}

func (a *GroupAnnouncer) Announce(ctx context.Context, text string) error {
	return a.Messenger.SendMessage(ctx, a.ChatID, text)
}
