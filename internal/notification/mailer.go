package notification

import (
	"context"
	"fmt"
	"time"

	"arkom-be/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const resendBaseURL = "https://api.resend.com"

// emailTimeout bounds one notification email, request included.
const emailTimeout = 5 * time.Second

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// IdempotencyKey lets the provider drop a repeated send.
	IdempotencyKey string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// ResendMailer sends transactional email through the Resend HTTP API.
type ResendMailer struct {
	client *resty.Client
	from   string
}

// NewMailer returns a Resend mailer, or a mailer that drops everything when
// no API key is configured.
func NewMailer(apiKey, from string) Mailer {
	if apiKey == "" {
		return nopMailer{}
	}
	return NewResendMailer(resendBaseURL, apiKey, from)
}

// NewResendMailer does not retry: POST /emails is not idempotent without a
// key, and a notification is not worth holding the request for.
func NewResendMailer(baseURL, apiKey, from string) *ResendMailer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(emailTimeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ResendMailer{client: client, from: from}
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	log := logger.FromCtx(ctx).With(zap.String("component", "resend"))

	var (
		result   resendEmailResponse
		apiError resendErrorResponse
	)
	req := m.client.R().SetContext(ctx)
	if email.IdempotencyKey != "" {
		req.SetHeader("Idempotency-Key", email.IdempotencyKey)
	}
	resp, err := req.
		SetBody(resendEmailRequest{
			From:    m.from,
			To:      []string{email.To},
			Subject: email.Subject,
			Text:    email.Text,
			HTML:    email.HTML,
		}).
		SetResult(&result).
		SetError(&apiError).
		Post("/emails")
	if err != nil {
		log.Error("Resend API call failed", zap.Error(err))
		return fmt.Errorf("failed to call Resend API: %w", err)
	}

	if resp.IsError() {
		log.Error("Resend API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("name", apiError.Name),
			zap.String("msg", apiError.Message),
		)
		return fmt.Errorf("resend API error: %s (status: %d)", apiError.Message, resp.StatusCode())
	}

	log.Debug("email sent", zap.String("email_id", result.ID))
	return nil
}

type nopMailer struct{}

func (nopMailer) Send(context.Context, Email) error { return nil }
