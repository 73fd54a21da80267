package email

import (
	"context"
	"fmt"
	"time"

	"kamatrack/internal/config"
	"kamatrack/internal/logger"
	"kamatrack/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

// Service sends one-shot bargain alerts when a resource first drops to or
// below its affordability threshold. Disabled unless Mailgun is configured.
type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	recipient   string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.AlertRecipient != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		recipient:   cfg.AlertRecipient,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendBargainAlert notifies the configured recipient that a resource has
// become affordable for the first time.
func (s *Service) SendBargainAlert(record *models.ResourceRecord, threshold float64) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	subject := fmt.Sprintf("Bargain found: %s", record.Name)
	textBody := fmt.Sprintf(
		"%s is now selling at %.2f kamas, at or below your threshold of %.2f.\n",
		record.Name, *record.Value, threshold)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		s.recipient,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send bargain alert for %s: %w", record.Name, err)
	}

	logger.Info("Bargain alert sent", "resource", record.Name, "message_id", resp)
	return nil
}
