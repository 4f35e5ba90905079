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

	"github.com/shopsphere/shopsphere-backend/pkg/config"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

const sendEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Sender delivers transactional email. The only message the storefront sends
// today is the password reset code.
type Sender interface {
	SendOTP(ctx context.Context, toEmail, otp string, expiry time.Time) error
}

// Client is a thin Sendgrid v3 HTTP client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	from       string
	logg       *logger.Logger
}

// NewClient builds the mail client from Sendgrid configuration.
func NewClient(cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, errors.New("sendgrid from email is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     cfg.APIKey,
		from:       cfg.DefaultFrom,
		logg:       logg,
	}, nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendOTP emails the reset code with its expiry time.
func (c *Client) SendOTP(ctx context.Context, toEmail, otp string, expiry time.Time) error {
	if strings.TrimSpace(toEmail) == "" {
		return errors.New("recipient email is required")
	}

	body := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: toEmail}}}},
		From:             emailAddress{Email: c.from},
		Subject:          "Your password reset code",
		Content: []content{{
			Type:  "text/plain",
			Value: fmt.Sprintf("Your password reset code is %s. It expires at %s.", otp, expiry.UTC().Format(time.RFC1123)),
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("sendgrid returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("sendgrid returned %s", resp.Status)
	}

	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "event", "mail.otp_sent"), "password reset email sent")
	}
	return nil
}
