package smtp

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/config"
)

type dialer interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer sends plain-text transactional email over SMTP.
type Mailer struct {
	client dialer
	from   string
	log    *zap.Logger
}

// NewMailer builds an SMTP client from cfg. SMTP_ENCRYPTION selects
// "starttls", "ssl" or "none".
func NewMailer(cfg *config.Config, log *zap.Logger) (*Mailer, error) {
	if cfg.SMTPFrom == "" {
		return nil, errors.New("SMTP_FROM is required")
	}
	opts := []mail.Option{mail.WithPort(cfg.SMTPPort)}
	switch cfg.SMTPEncryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return newMailer(client, cfg.SMTPFrom, log), nil
}

func newMailer(client dialer, from string, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{client: client, from: from, log: log.With(zap.String("component", "mailer"))}
}

func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error("send email failed", zap.String("subject", subject), zap.Error(err))
		return err
	}
	m.log.Debug("email sent", zap.String("subject", subject))
	return nil
}
