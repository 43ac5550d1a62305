// Package resend delivers event emails through the Resend HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/ports"
)

var _ ports.MailSender = (*Client)(nil)

// DefaultAPIURL is the Resend send-email endpoint.
const DefaultAPIURL = "https://api.resend.com/emails"

// ErrPermanent marks a rejection that retrying cannot fix (4xx other than 429).
var ErrPermanent = ports.ErrUndeliverable

// Config captures the subset of Resend behaviour we need.
type Config struct {
	APIKey     string
	From       string
	APIURL     string
	Timeout    time.Duration
	RetryLimit int
	// RetryDelay is the backoff unit; attempt n waits n*RetryDelay. Default 200ms.
	RetryDelay time.Duration
	Client     *http.Client
	Logger     *slog.Logger
}

// Client sends emails via Resend. Without an API key every Send is logged and skipped.
type Client struct {
	apiKey     string
	from       string
	apiURL     string
	retryLimit int
	retryDelay time.Duration
	client     *http.Client
	logger     *slog.Logger
}

// NewClient builds a Resend client.
func NewClient(cfg Config) (*Client, error) {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("email from address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		from:       from,
		apiURL:     fallbackString(strings.TrimSpace(cfg.APIURL), DefaultAPIURL),
		retryLimit: max(cfg.RetryLimit, 0),
		retryDelay: delay,
		client:     hc,
		logger:     logger.With("component", "resend"),
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send delivers msg, retrying transient failures with linear backoff.
func (c *Client) Send(ctx context.Context, msg model.EventEmail) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	if c.apiKey == "" {
		c.logger.WarnContext(ctx, "email api key not configured, skipping email",
			"to", msg.To, "subject", msg.Subject())
		return nil
	}

	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject(),
		Text:    msg.Body(),
	})
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.post(ctx, body)
		if err == nil {
			c.logger.InfoContext(ctx, "email sent", "to", msg.To, "kind", msg.Kind, "attempt", attempt+1)
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrPermanent) || attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	err = fmt.Errorf("email api %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	return err
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
