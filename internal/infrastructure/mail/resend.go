// Package mail delivers transactional email through Resend.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/core/ports"
)

const verificationSubject = "Verify your ReplyRocket account"

var verificationTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
  </head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #16181c; margin: 0; padding: 40px 20px;">
    <div style="max-width: 400px; margin: 0 auto; background-color: #1d1f23; border-radius: 16px; padding: 40px; text-align: center;">
      <h1 style="color: #ffffff; font-size: 24px; margin: 0 0 8px;">Verify your email</h1>
      <p style="color: #71767b; font-size: 14px; margin: 0 0 32px;">Enter this code to complete your registration</p>
      <div style="background-color: #16181c; border-radius: 12px; padding: 20px; margin-bottom: 32px;">
        <span style="font-family: monospace; font-size: 32px; font-weight: bold; color: #4a99e9; letter-spacing: 8px;">{{.Code}}</span>
      </div>
      <p style="color: #71767b; font-size: 12px; margin: 0;">This code expires in {{.Minutes}} minutes</p>
    </div>
  </body>
</html>
`))

type verificationData struct {
	Code    string
	Minutes int
}

func renderVerification(code string, minutes int) (string, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, verificationData{Code: code, Minutes: minutes}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ResendMailer implements ports.Mailer.
type ResendMailer struct {
	client      *resend.Client
	from        string
	codeMinutes int
	log         zerolog.Logger
}

func NewResendMailer(apiKey, from string, codeMinutes int, log zerolog.Logger) *ResendMailer {
	return &ResendMailer{
		client:      resend.NewClient(apiKey),
		from:        from,
		codeMinutes: codeMinutes,
		log:         log,
	}
}

var _ ports.Mailer = (*ResendMailer)(nil)

func (m *ResendMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	html, err := renderVerification(code, m.codeMinutes)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: verificationSubject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	m.log.Info().Str("email_id", sent.Id).Msg("verification email sent")
	return nil
}
