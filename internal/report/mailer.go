package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

const (
	mailSubject = "Your Spoken English Feedback Report"
	mailBody    = "Dear user,\n\nPlease find attached your spoken English feedback report.\n\nRegards,\nCareerVani Team"
)

// MailConfig holds SMTP settings. An empty Host disables mailing.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// StartTLS selects the TLS policy: "mandatory", "opportunistic"
	// (default) or "none".
	StartTLS string
}

// Mailer sends reports over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

// NewMailer creates a Mailer. It does not connect until the first send.
func NewMailer(cfg MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("report: smtp host must not be empty")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New("report: sender address must not be empty")
	}

	opts := []mail.Option{}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	switch cfg.StartTLS {
	case "mandatory":
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case "", "opportunistic":
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	default:
		return nil, fmt.Errorf("report: unknown starttls policy %q", cfg.StartTLS)
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("report: smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

// SendReport mails pdf to the learner with the HTML rendering of r as an
// alternative body.
func (m *Mailer) SendReport(ctx context.Context, to string, r *Spoken, pdf []byte) error {
	msg, err := buildMessage(m.from, to, r, pdf)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("report: send mail: %w", err)
	}
	slog.Info("feedback report emailed", "to", to)
	return nil
}

func buildMessage(from, to string, r *Spoken, pdf []byte) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("report: sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("report: recipient: %w", err)
	}
	msg.Subject(mailSubject)
	msg.SetBodyString(mail.TypeTextPlain, mailBody)
	if r != nil {
		if html, err := r.HTML(); err == nil {
			msg.AddAlternativeString(mail.TypeTextHTML, html)
		}
	}
	if err := msg.AttachReader(Filename, bytes.NewReader(pdf), mail.WithFileContentType(mail.ContentType("application/pdf"))); err != nil {
		return nil, fmt.Errorf("report: attach pdf: %w", err)
	}
	return msg, nil
}
