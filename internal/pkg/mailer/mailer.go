package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const xMailer = "drive-backend"

// Message is a single outgoing email
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers messages over SMTP with retries
type Mailer struct {
	config *Config
	tokens oauth2.TokenSource
	logger *zap.Logger
}

// New creates a Mailer. No network call is made here.
func New(cfg *Config, logger *zap.Logger) (*Mailer, error) {
	if cfg == nil {
		return nil, errors.New("mail config is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Mailer{config: cfg, logger: logger}
	if cfg.Auth == AuthXOAUTH2 {
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			TokenURL:     cfg.OAuth2.TokenURL,
			Scopes:       cfg.OAuth2.Scopes,
		}
		// ReuseTokenSource caches the token until it expires
		m.tokens = cc.TokenSource(context.Background())
	}
	return m, nil
}

// Send delivers msg, retrying up to MaxRetries times
func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	if err := validateMessage(msg); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	built, err := m.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	client, err := m.newClient()
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= m.config.MaxRetries; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, m.config.SendTimeout)
		lastErr = client.DialAndSendWithContext(sendCtx, built)
		cancel()
		if lastErr == nil {
			m.logger.Debug("email sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
			return nil
		}

		m.logger.Warn("email delivery attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt < m.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.config.RetryInterval):
			}
		}
	}
	return fmt.Errorf("failed to send email after %d attempts: %w", m.config.MaxRetries, lastErr)
}

func (m *Mailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTimeout(m.config.ConnectTimeout),
	}

	switch m.config.TLS {
	case TLSImplicit:
		opts = append(opts, mail.WithSSL())
	case TLSOpportunistic:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	case TLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	switch m.config.Auth {
	case AuthPlain:
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.Username),
			mail.WithPassword(m.config.Password),
		)
	case AuthXOAUTH2:
		token, err := m.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("get access token: %w", err)
		}
		username := m.config.Username
		if username == "" {
			username = m.config.FromAddr
		}
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthXOAUTH2),
			mail.WithUsername(username),
			mail.WithPassword(token.AccessToken),
		)
	default:
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthNoAuth))
	}

	return mail.NewClient(m.config.SMTPHost, opts...)
}

func (m *Mailer) buildMessage(msg *Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.FromFormat(m.config.FromName, m.config.FromAddr); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}
	out.Subject(msg.Subject)
	if msg.HTML {
		out.SetBodyString(mail.TypeTextHTML, msg.Body)
	} else {
		out.SetBodyString(mail.TypeTextPlain, msg.Body)
	}
	out.SetGenHeader(mail.HeaderXMailer, xMailer)
	out.SetDate()
	out.SetMessageID()
	return out, nil
}

func validateMessage(msg *Message) error {
	switch {
	case msg == nil:
		return errors.New("message is required")
	case len(msg.To) == 0:
		return errors.New("at least one recipient is required")
	case msg.Subject == "":
		return errors.New("subject is required")
	case msg.Body == "":
		return errors.New("body is required")
	}
	return nil
}
