package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/electroworld/auth-service/internal/application/auth"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool // opportunistic TLS, for local relays such as mailpit
}

// SMTPSender delivers notifications as plain-text mail.
type SMTPSender struct {
	lg  zerolog.Logger
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig, lg zerolog.Logger) *SMTPSender {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &SMTPSender{
		lg:  lg.With().Str("component", "smtp_sender").Logger(),
		cfg: cfg,
	}
}

func (s *SMTPSender) buildMsg(n auth.Notification) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(n.Recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(n.Subject)
	m.SetBodyString(mail.TypeTextPlain, n.Body)
	return m, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func (s *SMTPSender) Send(ctx context.Context, n auth.Notification) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m, err := s.buildMsg(n)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client init: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("host", s.cfg.Host).Msg("smtp send failed")
		return fmt.Errorf("smtp send: %w", err)
	}

	s.lg.Debug().Str("subject", n.Subject).Msg("smtp send ok")
	return nil
}
