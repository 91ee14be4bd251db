package notifier

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/testaro/testaro_backend/internal/core/ports"
	"github.com/testaro/testaro_backend/internal/platform/config"
)

// PostmarkNotifier dispatches transactional emails through Postmark.
type PostmarkNotifier struct {
	client *postmark.Client
	sender string
}

// NewPostmarkNotifier creates a Postmark-backed notifier. All fields are
// required: failing fast at startup beats silently dropping mail in
// production.
func NewPostmarkNotifier(cfg *config.Config) (*PostmarkNotifier, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("postmark server token is required")
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("postmark account token is required")
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email is required")
	}
	return &PostmarkNotifier{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		sender: cfg.SenderEmail,
	}, nil
}

var _ ports.Notifier = (*PostmarkNotifier)(nil)

func (n *PostmarkNotifier) Send(ctx context.Context, address string, kind ports.NotificationKind, data map[string]string) error {
	subject, htmlBody, err := renderTemplate(kind, data)
	if err != nil {
		return err
	}
	resp, err := n.client.SendEmail(ctx, postmark.Email{
		From:       n.sender,
		To:         address,
		Subject:    subject,
		HTMLBody:   htmlBody,
		Tag:        string(kind),
		TrackOpens: true,
	})
	if err != nil {
		return fmt.Errorf("postmark send failed: %w", err)
	}
	// Postmark reports per-message rejections (inactive recipient, bad
	// sender signature) in the response body with a nil transport error.
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	return nil
}

func renderTemplate(kind ports.NotificationKind, data map[string]string) (subject, htmlBody string, err error) {
	switch kind {
	case ports.NotificationWelcome:
		subject = "Welcome to Testaro"
		htmlBody = fmt.Sprintf(
			`<p>Hi,</p><p>Your Testaro account for <b>%s</b> is ready. Happy testing!</p>`,
			data["email"],
		)
	case ports.NotificationPasswordReset:
		subject = "Reset your Testaro password"
		htmlBody = fmt.Sprintf(
			`<p>Hi,</p><p>We received a request to reset your password. The link below is valid for %s minutes:</p>`+
				`<p><a href="%s">Reset password</a></p>`+
				`<p>If you did not request this, you can safely ignore this email.</p>`,
			data["expiryMinutes"], data["resetURL"],
		)
	case ports.NotificationPasswordResetDone:
		subject = "Your Testaro password was changed"
		htmlBody = `<p>Hi,</p><p>Your password was just changed. If this wasn't you, contact support immediately.</p>`
	default:
		return "", "", fmt.Errorf("unknown notification kind: %s", kind)
	}
	return subject, htmlBody, nil
}
