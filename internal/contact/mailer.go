package contact

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

	"go.uber.org/zap"
)

const defaultResendURL = "https://api.resend.com/emails"

// Email is an outgoing notification.
type Email struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
}

// Mailer delivers notification emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Message string `json:"message"`
}

// ResendConfig configures the Resend HTTP mailer.
type ResendConfig struct {
	APIKey     string
	From       string
	APIURL     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	apiKey string
	from   string
	apiURL string
	client *http.Client
	logger *zap.Logger
}

// NewResendMailer validates the configuration and constructs a mailer.
func NewResendMailer(cfg ResendConfig) (*ResendMailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("contact: resend api key is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("contact: sender address is required")
	}
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		apiURL = defaultResendURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendMailer{apiKey: cfg.APIKey, from: cfg.From, apiURL: apiURL, client: client, logger: logger}, nil
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return errors.New("contact: at least one recipient is required")
	}
	payload, err := json.Marshal(resendRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("contact: marshal email: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("contact: build email request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+m.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := m.client.Do(request)
	if err != nil {
		return fmt.Errorf("contact: send email: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("contact: read email response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr resendError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("contact: resend error (status %d): %s", response.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("contact: resend error (status %d): %s", response.StatusCode, strings.TrimSpace(string(body)))
	}
	var sent resendResponse
	if err := json.Unmarshal(body, &sent); err != nil {
		m.logger.Warn("resend response unreadable", zap.Error(err))
		return nil
	}
	m.logger.Info("contact email sent", zap.String("email_id", sent.ID))
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(_ context.Context, email Email) error {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("contact email (not sent, mailer not configured)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("reply_to", email.ReplyTo),
	)
	return nil
}
