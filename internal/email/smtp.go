package email

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/logger"
)

// Config is what the SMTP sender needs: relay credentials plus the portal
// base URL its mails link back to.
type Config interface {
	config.EmailConfig
	config.NotificationConfig
}

// SMTPSender sends mail through an SMTP relay using go-mail.
type SMTPSender struct {
	client      *mail.Client
	fromName    string
	fromAddress string
	portalURL   string
	log         *logger.Logger
}

func NewSMTPSender(cfg Config, log *logger.Logger) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.GetSMTPPort()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.GetSMTPUsername() != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.GetSMTPUsername()),
			mail.WithPassword(cfg.GetSMTPPassword()),
		)
	}

	client, err := mail.NewClient(cfg.GetSMTPHost(), opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{
		client:      client,
		fromName:    cfg.GetEmailFromName(),
		fromAddress: cfg.GetEmailFromAddress(),
		portalURL:   cfg.GetAppBaseURL(),
		log:         log,
	}, nil
}

func (s *SMTPSender) SendWelcome(ctx context.Context, to, name string) error {
	return s.send(ctx, to, "welcome", struct{ Name, PortalURL string }{Name: name, PortalURL: s.portalURL})
}

func (s *SMTPSender) SendQuoteReceived(ctx context.Context, to string, params QuoteReceivedParams) error {
	params.PortalURL = s.portalURL
	return s.send(ctx, to, "quote_received", params)
}

func (s *SMTPSender) SendQuoteStatusChanged(ctx context.Context, to string, params QuoteStatusParams) error {
	params.PortalURL = s.portalURL
	return s.send(ctx, to, "quote_status", params)
}

func (s *SMTPSender) SendContactAck(ctx context.Context, to, name string) error {
	return s.send(ctx, to, "contact_ack", struct{ Name string }{Name: name})
}

func (s *SMTPSender) send(ctx context.Context, to, templateName string, data interface{}) error {
	body, err := render(templateName, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromAddress); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subjects[templateName])
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	s.log.Info("email sent", "kind", templateName, "to", to)
	return nil
}
