package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"geodigest/internal/config"
)

// ErrNotConfigured is returned when SMTP host, credentials or recipient are missing.
var ErrNotConfigured = errors.New("email delivery is not configured")

// SMTPSender delivers messages over SMTP with optional STARTTLS and PLAIN auth
type SMTPSender struct {
	cfg       config.Email
	timeout   time.Duration
	tlsConfig *tls.Config
	log       *slog.Logger
}

// NewSMTPSender creates a sender from the email configuration
func NewSMTPSender(cfg config.Email, log *slog.Logger) *SMTPSender {
	if log == nil {
		log = slog.Default()
	}
	return &SMTPSender{
		cfg:     cfg,
		timeout: cfg.SMTP.TimeoutDuration(),
		log:     log,
	}
}

// WithTLSConfig overrides the STARTTLS configuration
func (s *SMTPSender) WithTLSConfig(tc *tls.Config) *SMTPSender {
	s.tlsConfig = tc
	return s
}

// NewMessage addresses an HTML body using the configured sender and recipient
func (s *SMTPSender) NewMessage(subject, html string) Message {
	return Message{
		From:     s.cfg.FromAddress,
		FromName: s.cfg.FromName,
		To:       s.cfg.ToAddress,
		Subject:  subject,
		HTML:     html,
	}
}

// Verify connects, negotiates TLS and authenticates without sending.
func (s *SMTPSender) Verify(ctx context.Context) error {
	if s.cfg.SMTP.Host == "" {
		return ErrNotConfigured
	}
	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Quit(); err != nil {
		return fmt.Errorf("failed to close SMTP session: %w", err)
	}
	return nil
}

// Send delivers one message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.SMTP.Host == "" || msg.To == "" {
		return ErrNotConfigured
	}
	if msg.From == "" {
		msg.From = s.cfg.FromAddress
	}

	payload, err := msg.Bytes()
	if err != nil {
		return err
	}

	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to start message data: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write message data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if err := c.Quit(); err != nil {
		s.log.Warn("SMTP quit failed after delivery", "error", err)
	}

	s.log.Info("Email sent successfully", "to", msg.To, "subject", msg.Subject)
	return nil
}

// connect dials the server and runs EHLO, STARTTLS and AUTH
func (s *SMTPSender) connect(ctx context.Context) (*smtp.Client, error) {
	host := s.cfg.SMTP.Host
	addr := net.JoinHostPort(host, strconv.Itoa(s.cfg.SMTP.Port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if s.timeout > 0 {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}

	if err := c.Hello("localhost"); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed EHLO: %w", err)
	}

	if s.cfg.SMTP.TLSEnabled {
		tc := s.tlsConfig
		if tc == nil {
			tc = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		}
		if err := c.StartTLS(tc); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed STARTTLS: %w", err)
		}
	}

	if s.cfg.SMTP.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, host)
		if err := c.Auth(auth); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed SMTP authentication: %w", err)
		}
	}

	return c, nil
}
