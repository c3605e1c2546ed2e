// Package email provides transactional email sending for the application.
package email

import (
	"context"

	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
)

// DigestItem is one report line in the municipality digest.
type DigestItem struct {
	ReportRef string
	Address   string
	IssueType string
	Filed     string
}

// Sender is the interface for sending application emails.
type Sender interface {
	SendReportAckEmail(ctx context.Context, toEmail, name, reportRef, address, issueType string) error
	SendMunicipalityDigestEmail(ctx context.Context, toEmail, municipalityLabel string, items []DigestItem) error
}

// NewSender creates the configured sender. When email is disabled it returns
// a no-op sender that only logs, so the rest of the system works without SMTP.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return &NoopSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

// NoopSender logs instead of sending. Used in development without SMTP.
type NoopSender struct {
	log *logger.Logger
}

func (n *NoopSender) SendReportAckEmail(_ context.Context, toEmail, _, reportRef, _, _ string) error {
	n.log.Info("email disabled, skipping report ack", "to", toEmail, "report", reportRef)
	return nil
}

func (n *NoopSender) SendMunicipalityDigestEmail(_ context.Context, toEmail, municipalityLabel string, items []DigestItem) error {
	n.log.Info("email disabled, skipping municipality digest", "to", toEmail, "municipality", municipalityLabel, "reports", len(items))
	return nil
}
