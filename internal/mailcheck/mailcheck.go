// Package mailcheck sends one diagnostic email with credentials taken from
// the environment, to confirm an SMTP relay accepts them.
package mailcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/wneessen/go-mail"
)

// DefaultPort is the submission port used when SMTP_PORT is unset.
const DefaultPort = 587

// Settings are the SMTP credentials and addresses of the diagnostic.
type Settings struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USER"`
	Password string `mapstructure:"SMTP_PASS"`
	From     string `mapstructure:"MAIL_FROM"`
	To       string `mapstructure:"MAIL_TO"`
}

// FromEnv decodes Settings from env. Unrelated keys are ignored.
func FromEnv(env map[string]string) (Settings, error) {
	s := Settings{Port: DefaultPort}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, err
	}
	in := make(map[string]any, len(env))
	for k, v := range env {
		if v = strings.TrimSpace(v); v != "" {
			in[k] = v
		}
	}
	if err := dec.Decode(in); err != nil {
		return s, fmt.Errorf("invalid mail settings: %w", err)
	}
	return s, s.Validate()
}

// Validate names every missing required variable.
func (s Settings) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"SMTP_HOST", s.Host},
		{"SMTP_USER", s.Username},
		{"SMTP_PASS", s.Password},
		{"MAIL_FROM", s.From},
		{"MAIL_TO", s.To},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing mail settings: %s", strings.Join(missing, ", "))
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", s.Port)
	}
	return nil
}

// Sender delivers prepared messages.
type Sender interface {
	Send(ctx context.Context, msgs ...*mail.Msg) error
}

// SMTPSender is a Sender backed by a go-mail client.
type SMTPSender struct {
	client *mail.Client
}

// NewSMTPSender dials nothing until Send. TLS is used when the server
// offers it.
func NewSMTPSender(s Settings, timeout time.Duration) (*SMTPSender, error) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, err := mail.NewClient(s.Host,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPSender{client: c}, nil
}

// Send dials, delivers msgs and closes the connection.
func (s *SMTPSender) Send(ctx context.Context, msgs ...*mail.Msg) error {
	return s.client.DialAndSendWithContext(ctx, msgs...)
}

// NewMessage builds the diagnostic email.
func NewMessage(s Settings, now time.Time) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.From); err != nil {
		return nil, fmt.Errorf("invalid MAIL_FROM: %w", err)
	}
	if err := m.To(s.To); err != nil {
		return nil, fmt.Errorf("invalid MAIL_TO: %w", err)
	}
	m.Subject("tally mail check")
	m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"This is a test email sent by tally.\n\nServer: %s:%d\nSent: %s\n",
		s.Host, s.Port, now.UTC().Format(time.RFC3339)))
	return m, nil
}

// Run sends one diagnostic email and logs the outcome. Failures are logged
// with whether the server reported them as temporary, then returned.
func Run(ctx context.Context, s Settings, sender Sender, logger *slog.Logger) error {
	msg, err := NewMessage(s, time.Now())
	if err != nil {
		logger.Error("mail check failed", "stage", "compose", "err", err)
		return err
	}

	if err := sender.Send(ctx, msg); err != nil {
		var sendErr *mail.SendError
		temporary := errors.As(err, &sendErr) && sendErr.IsTemp()
		logger.Error("mail check failed",
			"stage", "send",
			"host", s.Host,
			"port", s.Port,
			"temporary", temporary,
			"err", err,
		)
		return fmt.Errorf("send failed: %w", err)
	}

	logger.Info("mail check sent", "host", s.Host, "port", s.Port, "to", s.To)
	return nil
}
