package service

import (
	"context"
	"fmt"
	"html"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/yasinhessnawi1/collapse-backend/internal/config"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
)

const emailTimeLayout = "02/01/2006 15:04 MST"

// mailSender is the part of the SendGrid client used here.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailNotifier sends moderation notifications through SendGrid.
type EmailNotifier struct {
	client       mailSender
	fromEmail    string
	fromName     string
	supportEmail string
}

// NewEmailNotifier creates an EmailNotifier from the notifier settings.
func NewEmailNotifier(cfg *config.NotifierSettings) (*EmailNotifier, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid API key not set")
	}
	return &EmailNotifier{
		client:       sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail:    cfg.FromEmail,
		fromName:     cfg.FromName,
		supportEmail: cfg.SupportEmail,
	}, nil
}

// NotifyBanned emails the account holder the reason and end of the ban.
func (n *EmailNotifier) NotifyBanned(ctx context.Context, user *models.User, entry *models.BanLog) error {
	duration := "This suspension is permanent."
	if entry.BannedUntil != nil {
		duration = fmt.Sprintf("This suspension ends on %s.", entry.BannedUntil.UTC().Format(emailTimeLayout))
	}

	plain := fmt.Sprintf("Hello %s,\n\nYour account has been suspended.\nReason: %s\n%s\n\nIf you believe this is a mistake, contact %s.",
		user.FirstName, entry.Reason, duration, n.supportEmail)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>Your account has been suspended.</p><p><strong>Reason:</strong> %s</p><p>%s</p><p>If you believe this is a mistake, contact %s.</p>",
		html.EscapeString(user.FirstName), html.EscapeString(entry.Reason), duration, html.EscapeString(n.supportEmail))

	return n.send(ctx, user, "Your account has been suspended", plain, htmlContent)
}

// NotifyUnbanned emails the account holder that access is restored.
func (n *EmailNotifier) NotifyUnbanned(ctx context.Context, user *models.User, entry *models.BanLog) error {
	plain := fmt.Sprintf("Hello %s,\n\nYour account has been reactivated and you can sign in again.\n\nQuestions? Contact %s.",
		user.FirstName, n.supportEmail)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>Your account has been reactivated and you can sign in again.</p><p>Questions? Contact %s.</p>",
		html.EscapeString(user.FirstName), html.EscapeString(n.supportEmail))

	return n.send(ctx, user, "Your account has been reactivated", plain, htmlContent)
}

func (n *EmailNotifier) send(ctx context.Context, user *models.User, subject, plain, htmlContent string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(user.FullName(), user.Email)
	message := mail.NewSingleEmail(from, subject, to, plain, htmlContent)

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email with status %d", response.StatusCode)
	}

	log.Info().
		Int64("user_id", user.ID).
		Int("status_code", response.StatusCode).
		Str("subject", subject).
		Msg("Notification email sent")
	return nil
}
