package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// DefaultClientURL is used for item links when no client URL is configured.
const DefaultClientURL = "http://localhost:5173"

// Config selects and authenticates the SMTP transport.
type Config struct {
	// Service names a well-known provider (gmail, outlook, ...). Host and
	// Port override it when set.
	Service  string
	Host     string
	Port     int
	Username string
	Password string
	FromName string

	// RecipientOverride, when set, receives every owner notice instead of
	// the owner.
	RecipientOverride string
	// MonitorAddress gets a blind copy of every owner notice.
	MonitorAddress string
	ClientURL      string
}

// Configured reports whether sender account and credential are present.
func (c Config) Configured() bool {
	return c.Username != "" && c.Password != ""
}

func (c Config) clientURL() string {
	if c.ClientURL == "" {
		return DefaultClientURL
	}
	return c.ClientURL
}

type server struct {
	host string
	port int
	// implicit TLS rather than STARTTLS
	ssl bool
}

var providers = map[string]server{
	"gmail":   {host: "smtp.gmail.com", port: 587},
	"outlook": {host: "smtp-mail.outlook.com", port: 587},
	"hotmail": {host: "smtp-mail.outlook.com", port: 587},
	"yahoo":   {host: "smtp.mail.yahoo.com", port: 465, ssl: true},
	"icloud":  {host: "smtp.mail.me.com", port: 587},
	"zoho":    {host: "smtp.zoho.com", port: 465, ssl: true},
}

func resolveServer(c Config) (server, error) {
	if c.Host != "" {
		s := server{host: c.Host, port: c.Port}
		if s.port == 0 {
			s.port = 587
		}
		s.ssl = s.port == 465
		return s, nil
	}

	name := strings.ToLower(strings.TrimSpace(c.Service))
	if name == "" {
		name = "gmail"
	}
	s, ok := providers[name]
	if !ok {
		return server{}, fmt.Errorf("unknown mail service %q", c.Service)
	}
	if c.Port != 0 {
		s.port = c.Port
		s.ssl = c.Port == 465
	}
	return s, nil
}

// SMTPMailer delivers messages through an authenticated SMTP server.
type SMTPMailer struct {
	client   *mail.Client
	from     string
	fromName string
	host     string
	port     int
}

// NewSMTPMailer builds a mailer from cfg. It returns ErrNotConfigured when
// the sender account or credential is missing.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	srv, err := resolveServer(cfg)
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(srv.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if srv.ssl {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(srv.host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating SMTP client: %w", err)
	}

	fromName := cfg.FromName
	if fromName == "" {
		fromName = "CampusFound"
	}

	return &SMTPMailer{
		client:   client,
		from:     cfg.Username,
		fromName: fromName,
		host:     srv.host,
		port:     srv.port,
	}, nil
}

// Addr returns the resolved server address.
func (m *SMTPMailer) Addr() string {
	return fmt.Sprintf("%s:%d", m.host, m.port)
}

// Send delivers msg in a single attempt.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	out := mail.NewMsg()
	if err := out.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	if len(msg.Bcc) > 0 {
		if err := out.Bcc(msg.Bcc...); err != nil {
			return fmt.Errorf("setting bcc: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("setting reply-to: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("delivering mail: %w", err)
	}
	return nil
}
