// Package mail sends review outcomes to a fixed list of recipients
package mail

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/config"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier mails outcomes through an SMTP relay
type SMTPNotifier struct {
	sender     sender
	from       string
	recipients []string
	logger     *zap.Logger
}

// NewSMTPNotifier creates a notifier from cfg
func NewSMTPNotifier(cfg config.MailConfig, logger *zap.Logger) *SMTPNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPNotifier{
		sender:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:       cfg.From,
		recipients: cfg.Recipients,
		logger:     logger,
	}
}

// NotifySuccess mails the delivered report as an attachment
func (n *SMTPNotifier) NotifySuccess(ctx context.Context, identity entities.RecordingIdentity, report *entities.Report, location string) error {
	var body strings.Builder
	fmt.Fprintf(&body, "The consultation review for %q is ready.\n\n", topic(identity))
	writeIdentity(&body, identity)
	if location != "" {
		fmt.Fprintf(&body, "Report: %s\n", location)
	}

	m := n.message("✅ Consultation review: "+topic(identity), body.String())
	attach(m, report)
	return n.send(ctx, m, identity)
}

// NotifyFailure mails the reason the review failed. The degraded report is
// attached when there is one.
func (n *SMTPNotifier) NotifyFailure(ctx context.Context, identity entities.RecordingIdentity, reason string, report *entities.Report) error {
	var body strings.Builder
	fmt.Fprintf(&body, "The consultation review for %q could not be completed.\n\n", topic(identity))
	writeIdentity(&body, identity)
	fmt.Fprintf(&body, "Reason: %s\n", reason)

	m := n.message("❌ Consultation review failed: "+topic(identity), body.String())
	attach(m, report)
	return n.send(ctx, m, identity)
}

func (n *SMTPNotifier) message(subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

func (n *SMTPNotifier) send(ctx context.Context, m *gomail.Message, identity entities.RecordingIdentity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	n.logger.Info("📧 Mail sent",
		zap.String("entity_id", identity.EntityID),
		zap.Strings("subject", m.GetHeader("Subject")),
		zap.Int("recipients", len(n.recipients)),
	)
	return nil
}

func attach(m *gomail.Message, report *entities.Report) {
	if report == nil {
		return
	}
	body := report.Body
	m.Attach(report.Filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(body)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {report.MimeType}}),
	)
}

func topic(identity entities.RecordingIdentity) string {
	if identity.Topic != "" {
		return identity.Topic
	}
	return identity.EntityID
}

func writeIdentity(b *strings.Builder, identity entities.RecordingIdentity) {
	fmt.Fprintf(b, "Recording: %s (%s)\n", identity.EntityID, identity.Kind)
	if !identity.StartTime.IsZero() {
		fmt.Fprintf(b, "Started: %s\n", identity.StartTime.Format("2006-01-02 15:04 MST"))
	}
	if identity.HostEmail != "" {
		fmt.Fprintf(b, "Host: %s\n", identity.HostEmail)
	}
}

// NoopNotifier logs outcomes when no SMTP relay is configured
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a notifier that only logs
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopNotifier{logger: logger}
}

// NotifySuccess implements the notifier
func (n *NoopNotifier) NotifySuccess(_ context.Context, identity entities.RecordingIdentity, report *entities.Report, location string) error {
	n.logger.Info("📭 Mail disabled, success not sent",
		zap.String("entity_id", identity.EntityID),
		zap.String("filename", report.Filename),
		zap.String("location", location),
	)
	return nil
}

// NotifyFailure implements the notifier
func (n *NoopNotifier) NotifyFailure(_ context.Context, identity entities.RecordingIdentity, reason string, _ *entities.Report) error {
	n.logger.Info("📭 Mail disabled, failure not sent",
		zap.String("entity_id", identity.EntityID),
		zap.String("reason", reason),
	)
	return nil
}
