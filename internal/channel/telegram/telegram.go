// Package telegram implements the channel Source and Sink over the
// Telegram Bot API (getUpdates / sendMessage).
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AminRahimi/deadman-switch/internal/monitor"
)

// defaultBaseURL is the production Bot API endpoint.
const defaultBaseURL = "https://api.telegram.org"

// defaultTimeout bounds each API call.
const defaultTimeout = 10 * time.Second

// doer abstracts the HTTP client, enabling test doubles.
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Telegram Bot API. It implements both channel.Source
// (getUpdates with an offset cursor) and channel.Sink (sendMessage).
type Client struct {
	token   string
	baseURL string
	http    doer
}

// Opts holds parameters for creating a Client.
type Opts struct {
	Token   string
	Timeout time.Duration
	// For testing: override the API endpoint and HTTP client.
	BaseURL    string
	HTTPClient doer
}

// New creates a Telegram client.
func New(opts Opts) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		token:   opts.Token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}, nil
}

// Name identifies this channel in delivery-failure reports.
func (c *Client) Name() string { return "telegram" }

// update mirrors one entry of the getUpdates result. Edited messages count:
// an owner editing an old message into a check-in word is still a signal.
type update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *message `json:"message"`
	EditedMessage *message `json:"edited_message"`
}

type message struct {
	Chat chat   `json:"chat"`
	Text string `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description"`
	Result      []update `json:"result"`
}

type sendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Fetch pulls updates with update_id >= sinceOffset. Transport failures
// return an empty slice plus the error.
func (c *Client) Fetch(ctx context.Context, sinceOffset int64) ([]monitor.Message, error) {
	q := url.Values{}
	q.Set("timeout", "0")
	if sinceOffset > 0 {
		q.Set("offset", strconv.FormatInt(sinceOffset, 10))
	}

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", c.baseURL, c.token, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: build getUpdates request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: getUpdates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: getUpdates: status %d", resp.StatusCode)
	}

	var parsed updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("telegram: decode getUpdates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram: getUpdates: api error: %s", parsed.Description)
	}

	msgs := make([]monitor.Message, 0, len(parsed.Result))
	for _, upd := range parsed.Result {
		msg := upd.Message
		if msg == nil {
			msg = upd.EditedMessage
		}
		if msg == nil {
			// Non-message update (poll, channel post); cursor still advances.
			msgs = append(msgs, monitor.Message{SequenceID: upd.UpdateID})
			continue
		}
		msgs = append(msgs, monitor.Message{
			SequenceID: upd.UpdateID,
			SenderID:   msg.Chat.ID,
			Text:       msg.Text,
		})
	}
	return msgs, nil
}

// Deliver sends text to a chat via sendMessage.
func (c *Client) Deliver(ctx context.Context, recipientID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(recipientID, 10))
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: sendMessage to %d: %w", recipientID, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: sendMessage to %d: status %d", recipientID, resp.StatusCode)
	}

	var parsed sendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("telegram: decode sendMessage: %w", err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram: sendMessage to %d: api error: %s", recipientID, parsed.Description)
	}
	return nil
}
