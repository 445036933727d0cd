// Package email sends transactional mail for account and quote events.
package email

import (
	"context"

	"agency_portal_backend/platform/logger"
)

// QuoteReceivedParams fills the confirmation mail sent after a submission.
// PortalURL is stamped by the sender.
type QuoteReceivedParams struct {
	Name         string
	QuoteID      string
	ServiceLabel string
	PackageType  string
	TotalPrice   int64
	Currency     string
	TimelineDays int
	PortalURL    string
}

// QuoteStatusParams fills the status update mail. PortalURL is stamped by
// the sender.
type QuoteStatusParams struct {
	Name         string
	QuoteID      string
	ServiceLabel string
	NewStatus    string
	ProjectTitle string
	PortalURL    string
}

// Sender delivers transactional email. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendQuoteReceived(ctx context.Context, to string, params QuoteReceivedParams) error
	SendQuoteStatusChanged(ctx context.Context, to string, params QuoteStatusParams) error
	SendContactAck(ctx context.Context, to, name string) error
}

// NoopSender logs instead of sending. Used when EMAIL_ENABLED=false and in
// tests.
type NoopSender struct {
	Log *logger.Logger
}

func (n *NoopSender) SendWelcome(_ context.Context, to, _ string) error {
	n.Log.Debug("email skipped", "kind", "welcome", "to", to)
	return nil
}

func (n *NoopSender) SendQuoteReceived(_ context.Context, to string, params QuoteReceivedParams) error {
	n.Log.Debug("email skipped", "kind", "quote_received", "to", to, "quote_id", params.QuoteID)
	return nil
}

func (n *NoopSender) SendQuoteStatusChanged(_ context.Context, to string, params QuoteStatusParams) error {
	n.Log.Debug("email skipped", "kind", "quote_status", "to", to, "quote_id", params.QuoteID)
	return nil
}

func (n *NoopSender) SendContactAck(_ context.Context, to, _ string) error {
	n.Log.Debug("email skipped", "kind", "contact_ack", "to", to)
	return nil
}
