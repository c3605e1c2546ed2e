// Package notification turns domain events into outbound messages.
// It subscribes to the event bus and delegates delivery to the email sender,
// either directly or through the asynq task queue when one is configured.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"greenbin_backend/internal/email"
	"greenbin_backend/internal/municipality"
	"greenbin_backend/internal/reports/repository"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"
)

// digestWindowHours is how far back the daily digest looks.
const digestWindowHours = 24

// UserDirectory resolves user contact details for outbound mail.
// Implemented by an adapter over the auth service.
type UserDirectory interface {
	GetContact(ctx context.Context, userID uuid.UUID) (email string, name string, err error)
}

// Service sends report acknowledgements and municipality digests.
type Service struct {
	sender  email.Sender
	users   UserDirectory
	reports repository.Repository
	matcher *municipality.Matcher
	cfg     config.NotificationConfig
	log     *logger.Logger
}

// NewService creates the notification service.
func NewService(sender email.Sender, users UserDirectory, reportsRepo repository.Repository, matcher *municipality.Matcher, cfg config.NotificationConfig, log *logger.Logger) *Service {
	return &Service{
		sender:  sender,
		users:   users,
		reports: reportsRepo,
		matcher: matcher,
		cfg:     cfg,
		log:     log,
	}
}

// SendReportAck emails the reporter that their report was received.
func (s *Service) SendReportAck(ctx context.Context, reportID uuid.UUID) error {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("load report for ack: %w", err)
	}

	toEmail, name, err := s.users.GetContact(ctx, report.UserID)
	if err != nil {
		return fmt.Errorf("resolve reporter contact: %w", err)
	}

	return s.sender.SendReportAckEmail(ctx, toEmail, name,
		reportRef(report), report.Address, string(report.IssueType))
}

// SendMunicipalityDigest emails the last day's reports for one municipality
// to the configured digest address. No reports means no mail.
func (s *Service) SendMunicipalityDigest(ctx context.Context, code string) error {
	digestAddress := s.cfg.GetMunicipalityDigestAddress()
	if digestAddress == "" {
		s.log.Debug("no digest address configured, skipping", "municipality", code)
		return nil
	}

	partner, ok := s.matcher.Lookup(code)
	if !ok {
		return fmt.Errorf("unknown municipality %q", code)
	}

	recent, err := s.reports.ListByMunicipalitySince(ctx, code, digestWindowHours)
	if err != nil {
		return fmt.Errorf("load digest reports: %w", err)
	}
	if len(recent) == 0 {
		return nil
	}

	items := make([]email.DigestItem, 0, len(recent))
	for _, r := range recent {
		items = append(items, email.DigestItem{
			ReportRef: reportRef(r),
			Address:   r.Address,
			IssueType: string(r.IssueType),
			Filed:     r.CreatedAt.Format("02.01.2006 15:04"),
		})
	}

	return s.sender.SendMunicipalityDigestEmail(ctx, digestAddress, partner.Label, items)
}

// reportRef derives the citizen-facing reference from the report id.
func reportRef(r repository.Report) string {
	return "GB-" + strings.ToUpper(r.ID.String()[:8])
}
