// Package resend is a minimal client for the Resend transactional email API,
// used to deliver one-time verification and password-reset codes.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Mailer struct {
	apiKey  string
	from    string
	client  *http.Client
	baseURL string
}

func NewMailer(apiKey, from string) (*Mailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key not set")
	}
	return &Mailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: "https://api.resend.com",
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendVerificationCode emails the registration/verification code.
func (m *Mailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	return m.send(ctx, toEmail, "Verify your email", fmt.Sprintf(`
		<p>Welcome!</p>
		<p>Your verification code is:</p>
		<h2>%s</h2>
		<p>It expires in 10 minutes.</p>
	`, code))
}

// SendPasswordResetCode emails the forgot-password code.
func (m *Mailer) SendPasswordResetCode(ctx context.Context, toEmail, code string) error {
	return m.send(ctx, toEmail, "Reset your password", fmt.Sprintf(`
		<p>We received a request to reset your password.</p>
		<p>Your reset code is:</p>
		<h2>%s</h2>
		<p>It expires in 10 minutes. If you did not request this, ignore this email.</p>
	`, code))
}

func (m *Mailer) send(ctx context.Context, toEmail, subject, html string) error {
	body := sendRequest{
		From:    m.from,
		To:      []string{toEmail},
		Subject: subject,
		HTML:    html,
	}

	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/emails",
		bytes.NewBuffer(b),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return errors.New("failed to send email: " + buf.String())
	}

	return nil
}
