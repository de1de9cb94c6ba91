package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

const defaultSendTimeout = 30 * time.Second

type smtpSender struct {
	addr    string
	host    string
	auth    smtp.Auth
	useTLS  bool
	timeout time.Duration
	from    string
	replyTo string
}

// NewSMTPSender creates an SMTP-backed mail sender.
// PLAIN authentication is enabled when credentials are configured; with
// SMTPUseTLS the session is upgraded via STARTTLS after the initial
// handshake, matching the usual port 587 submission flow.
func NewSMTPSender(cfg Config) (Sender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTPHost is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: SMTPPort must be positive", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}
	if !ValidAddress(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}

	var auth smtp.Auth
	if cfg.SMTPUsername != "" || cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &smtpSender{
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:    cfg.SMTPHost,
		auth:    auth,
		useTLS:  cfg.SMTPUseTLS,
		timeout: timeout,
		from:    cfg.SenderEmail,
		replyTo: cfg.SupportEmail,
	}, nil
}

// MustNewSMTPSender creates an SMTP sender that panics on invalid config.
func MustNewSMTPSender(cfg Config) Sender {
	sender, err := NewSMTPSender(cfg)
	if err != nil {
		panic(err)
	}
	return sender
}

// Send performs a full SMTP exchange for the message. The connection carries
// a deadline covering the whole exchange, so a stalled server surfaces as a
// delivery failure instead of blocking the worker indefinitely.
func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		_ = conn.Close()
		return errors.Join(ErrFailedToSendEmail, err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return errors.Join(ErrFailedToSendEmail, err)
	}
	defer func() { _ = client.Close() }()

	if s.useTLS {
		ok, _ := client.Extension("STARTTLS")
		if !ok {
			return errors.Join(ErrFailedToSendEmail, errors.New("server does not support STARTTLS"))
		}
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return errors.Join(ErrFailedToSendEmail, err)
		}
	}

	if s.auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(s.auth); err != nil {
				return errors.Join(ErrFailedToSendEmail, err)
			}
		}
	}

	if err := client.Mail(s.from); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	for _, rcpt := range msg.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return errors.Join(ErrFailedToSendEmail, fmt.Errorf("recipient %s: %w", rcpt, err))
		}
	}

	w, err := client.Data()
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if _, err := w.Write(s.buildMessage(msg)); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := w.Close(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	if err := client.Quit(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}

// buildMessage assembles the raw RFC 5322 message with an HTML body.
func (s *smtpSender) buildMessage(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.Recipients, ", ") + "\r\n")
	if s.replyTo != "" {
		b.WriteString("Reply-To: " + s.replyTo + "\r\n")
	}
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.BodyHTML)
	b.WriteString("\r\n")
	return []byte(b.String())
}
