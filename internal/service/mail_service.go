package service

import (
	"context"
	"fmt"
	"log/slog"

	config "github.com/sunghyun0422/snf.semi/configs"
	"github.com/wneessen/go-mail"
)

// Envelope is one plain-text message.
type Envelope struct {
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer is the notification dispatcher. Enabled reports whether Send can deliver at
// all, so callers can refuse work before writing anything.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, env Envelope) error
}

type smtpMailer struct {
	cfg config.SMTP
}

// NewSMTPMailer returns a mailer that talks to the configured relay. When the relay is
// not configured every Send fails with ErrMailUnavailable.
func NewSMTPMailer(cfg config.SMTP) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Enabled() bool {
	return m.cfg.Enabled()
}

func (m *smtpMailer) Send(ctx context.Context, env Envelope) error {
	if !m.Enabled() {
		return ErrMailUnavailable
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("invalid recipient: %w", err)
	}
	if env.ReplyTo != "" {
		if err := msg.ReplyTo(env.ReplyTo); err != nil {
			slog.Info(err.Error())
			return fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(mail.TypeTextPlain, env.Body)

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("smtp delivery failed", "to", env.To, "error", err)
		return err
	}

	slog.Info("mail sent", "to", env.To, "subject", env.Subject)
	return nil
}

func (m *smtpMailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}
