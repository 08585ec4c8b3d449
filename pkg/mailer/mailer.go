// Package mailer provides a small SMTP client for outbound notification email.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned when SMTP credentials are unset or still sample values.
var ErrNotConfigured = errors.New("mailer: not configured")

// placeholderValues are the sample credentials shipped in .env.example files.
var placeholderValues = map[string]bool{
	"your-email@gmail.com":         true,
	"your-gmail-app-password-here": true,
	"your-app-password":            true,
	"changeme":                     true,
}

// Credentials identify the sending account.
type Credentials struct {
	Username string
	Password string
}

// Configured reports whether both values are set and neither is a known placeholder.
func (c Credentials) Configured() bool {
	u := strings.TrimSpace(c.Username)
	p := strings.TrimSpace(c.Password)
	if u == "" || p == "" {
		return false
	}
	return !placeholderValues[strings.ToLower(u)] && !placeholderValues[strings.ToLower(p)]
}

// Message is a single outbound email.
type Message struct {
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Client sends email.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Config describes the SMTP relay.
type Config struct {
	Host        string
	Port        int
	Credentials Credentials
	// From defaults to Credentials.Username.
	From    string
	Timeout time.Duration
}

// SMTPClient sends mail through an authenticated SMTP relay with STARTTLS.
type SMTPClient struct {
	cfg Config
}

// NewSMTPClient always succeeds. With invalid credentials Send returns
// ErrNotConfigured.
func NewSMTPClient(cfg Config) *SMTPClient {
	if cfg.From == "" {
		cfg.From = cfg.Credentials.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPClient{cfg: cfg}
}

var _ Client = (*SMTPClient)(nil)

// Configured reports whether Send will attempt delivery.
func (c *SMTPClient) Configured() bool {
	return c.cfg.Host != "" && c.cfg.Credentials.Configured()
}

// Send delivers msg. It returns ErrNotConfigured without dialing when the
// credentials are missing or placeholders.
func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	m, err := c.build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.cfg.Credentials.Username),
		mail.WithPassword(c.cfg.Credentials.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(c.cfg.Timeout),
	}
	if c.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mailer: new client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

func (c *SMTPClient) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(c.cfg.From); err != nil {
		return nil, fmt.Errorf("mailer: from: %w", err)
	}
	to := msg.To
	if to == "" {
		to = c.cfg.From
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("mailer: to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("mailer: reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)

	switch {
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
		if msg.TextBody != "" {
			m.AddAlternativeString(mail.TypeTextPlain, msg.TextBody)
		}
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}
	return m, nil
}
