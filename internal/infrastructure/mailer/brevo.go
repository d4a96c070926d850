// Package mailer sends transactional email through the Brevo HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/ports"
)

// DefaultEndpoint is Brevo's transactional email API.
const DefaultEndpoint = "https://api.brevo.com/v3/smtp/email"

const maxErrorBody = 4 << 10

// ErrNotConfigured is returned when no API key or sender is set.
var ErrNotConfigured = errors.New("email provider is not configured")

// UpstreamError carries a non-201 answer from the provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("email provider returned %d: %s", e.Status, e.Body)
}

// Brevo is a ports.Mailer backed by Brevo.
type Brevo struct {
	endpoint    string
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
}

var _ ports.Mailer = (*Brevo)(nil)

// NewBrevo builds a client from the email settings. A nil client gets a 15s timeout.
func NewBrevo(cfg config.EmailConfig, client *http.Client) *Brevo {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Brevo{
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		client:      client,
	}
}

type contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	Sender      contact   `json:"sender"`
	To          []contact `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

// Send posts one message. Anything other than 201 Created is an *UpstreamError.
func (b *Brevo) Send(ctx context.Context, msg ports.Email) error {
	if b.apiKey == "" || b.senderEmail == "" {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}

	payload := sendRequest{
		Sender:      contact{Email: b.senderEmail, Name: b.senderName},
		To:          make([]contact, 0, len(msg.To)),
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}
	for _, to := range msg.To {
		payload.To = append(payload.To, contact{Email: strings.TrimSpace(to)})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return nil
}
