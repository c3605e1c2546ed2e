package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Compile-time check that SMTPSender implements Sender.
var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// SendReportAckEmail confirms to a citizen that their report was received.
func (s *SMTPSender) SendReportAckEmail(ctx context.Context, toEmail, name, reportRef, address, issueType string) error {
	content, err := renderEmailTemplate("report_ack.html", reportAckEmailData{
		baseEmailData: baseEmailData{
			Title:   "Meldung eingegangen",
			Heading: "Vielen Dank für Ihre Meldung",
		},
		Name:      name,
		ReportRef: reportRef,
		Address:   address,
		IssueType: issueType,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectReportAck, content)
}

// SendMunicipalityDigestEmail sends the daily report overview to a municipality.
func (s *SMTPSender) SendMunicipalityDigestEmail(ctx context.Context, toEmail, municipalityLabel string, items []DigestItem) error {
	subject := fmt.Sprintf(subjectMunicipalityDigestFmt, municipalityLabel)
	content, err := renderEmailTemplate("municipality_digest.html", municipalityDigestEmailData{
		baseEmailData: baseEmailData{
			Title:   "Tagesübersicht",
			Heading: fmt.Sprintf("Neue Meldungen für %s", municipalityLabel),
		},
		MunicipalityLabel: municipalityLabel,
		Items:             items,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
