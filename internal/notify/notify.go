// Package notify delivers scan results to the configured channels.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"optionscout/internal/config"
	"optionscout/internal/models"
)

// Notifier delivers completed scan runs and errors.
type Notifier interface {
	SendScanReport(ctx context.Context, run models.RankedIdeas) error
	SendError(ctx context.Context, err error, errContext string) error
}

// Channel is a single delivery mechanism.
type Channel interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
	IsEnabled() bool
}

// MultiNotifier fans a report out to every enabled channel. A channel failure
// never blocks the others; all failures are collected into one error.
type MultiNotifier struct {
	channels []Channel
}

// NewMultiNotifier builds a notifier from configuration.
func NewMultiNotifier(cfg config.NotificationConfig) *MultiNotifier {
	mn := &MultiNotifier{}
	if !cfg.Enabled {
		return mn
	}
	if cfg.Email.Enabled {
		mn.channels = append(mn.channels, NewEmailChannel(cfg.Email))
	}
	return mn
}

// AddChannel registers an additional delivery channel.
func (mn *MultiNotifier) AddChannel(ch Channel) {
	mn.channels = append(mn.channels, ch)
}

// SendScanReport delivers the ranked run to all channels.
func (mn *MultiNotifier) SendScanReport(ctx context.Context, run models.RankedIdeas) error {
	subject := reportSubject(run)
	body := BuildReportText(run)
	return mn.send(ctx, subject, body)
}

// SendError delivers a failure notice.
func (mn *MultiNotifier) SendError(ctx context.Context, err error, errContext string) error {
	subject := "optionscout: scan failed"
	body := fmt.Sprintf("Context: %s\nError: %v\nTime: %s",
		errContext, err, time.Now().Format("2006-01-02 15:04:05"))
	return mn.send(ctx, subject, body)
}

func (mn *MultiNotifier) send(ctx context.Context, subject, body string) error {
	var errs []string
	for _, ch := range mn.channels {
		if !ch.IsEnabled() {
			continue
		}
		if err := ch.Send(ctx, subject, body); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func reportSubject(run models.RankedIdeas) string {
	if run.Empty() {
		return fmt.Sprintf("optionscout: no ideas (%d symbols scanned)", len(run.Meta.Universe))
	}
	return fmt.Sprintf("optionscout: %d tier-1, %d tier-2, %d watch",
		len(run.Tier1), len(run.Tier2), len(run.Watch))
}

// EmailChannel delivers reports over SMTP.
type EmailChannel struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
	to       string
	enabled  bool
}

// NewEmailChannel creates an email channel from configuration.
func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	return &EmailChannel{
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
		enabled:  cfg.Enabled && cfg.SMTPHost != "" && cfg.From != "" && cfg.To != "",
	}
}

// Name returns the channel name.
func (e *EmailChannel) Name() string { return "email" }

// IsEnabled returns whether the channel is configured and enabled.
func (e *EmailChannel) IsEnabled() bool { return e.enabled }

// Send delivers one message. Port 465 uses implicit TLS; everything else
// goes through smtp.SendMail which negotiates STARTTLS when offered.
func (e *EmailChannel) Send(ctx context.Context, subject, body string) error {
	if !e.enabled {
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		e.from, e.to, subject, body)
	addr := fmt.Sprintf("%s:%d", e.smtpHost, e.smtpPort)

	var auth smtp.Auth
	if e.username != "" && e.password != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.smtpHost)
	}

	if e.smtpPort == 465 {
		return e.sendWithTLS(addr, auth, msg)
	}
	return smtp.SendMail(addr, auth, e.from, []string{e.to}, []byte(msg))
}

func (e *EmailChannel) sendWithTLS(addr string, auth smtp.Auth, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: e.smtpHost})
	if err != nil {
		return fmt.Errorf("TLS dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.smtpHost)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}
	if err := client.Mail(e.from); err != nil {
		return fmt.Errorf("SMTP MAIL command failed: %w", err)
	}
	if err := client.Rcpt(e.to); err != nil {
		return fmt.Errorf("SMTP RCPT command failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command failed: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}
	return client.Quit()
}

// NoOpNotifier discards everything. Used when notifications are disabled.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier { return &NoOpNotifier{} }

// SendScanReport does nothing.
func (n *NoOpNotifier) SendScanReport(ctx context.Context, run models.RankedIdeas) error { return nil }

// SendError does nothing.
func (n *NoOpNotifier) SendError(ctx context.Context, err error, errContext string) error {
	return nil
}
