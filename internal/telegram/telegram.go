package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var apiBaseURL = "https://api.telegram.org/bot"

const (
	timeout = 30 * time.Second

	// MaxCaptionLength is the Bot API limit for photo captions.
	MaxCaptionLength = 1024
)

// Client represents a Telegram Bot API client
type Client struct {
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &Client{
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ChatID returns the chat the client posts to.
func (c *Client) ChatID() string {
	return c.chatID
}

// SendMessage sends a text message to the configured chat
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// SendPhoto uploads a PNG image with a caption to the configured chat
func (c *Client) SendPhoto(ctx context.Context, photo []byte, caption string) error {
	if len(photo) == 0 {
		return fmt.Errorf("photo is required")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("chat_id", c.chatID); err != nil {
		return fmt.Errorf("writing chat_id: %w", err)
	}
	if caption != "" {
		if err := form.WriteField("caption", caption); err != nil {
			return fmt.Errorf("writing caption: %w", err)
		}
	}

	part, err := form.CreateFormFile("photo", "grooming-report.png")
	if err != nil {
		return fmt.Errorf("creating photo part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("writing photo: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendPhoto"), &body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.do(req)
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s%s/%s", apiBaseURL, c.botToken, method)
}

// do sends req and checks both the HTTP status and the API's ok flag.
// redact strips the bot token from transport errors, which quote the request URL.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if c.botToken == "" || !errors.As(err, &urlErr) {
		return err
	}
	urlErr.URL = strings.ReplaceAll(urlErr.URL, c.botToken, "<redacted>")
	return err
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", c.redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	// Parse response to check for errors
	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}

	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &result) == nil && result.Description != "" {
			return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, result.Description)
		}
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}
