package mailer

import (
	"errors"
	"fmt"
	"time"
)

// AuthMode selects the SMTP authentication mechanism
type AuthMode string

const (
	AuthNone    AuthMode = "none"
	AuthPlain   AuthMode = "plain"
	AuthXOAUTH2 AuthMode = "xoauth2"
)

// TLSMode selects how the connection is secured
type TLSMode string

const (
	TLSMandatory     TLSMode = "mandatory"
	TLSOpportunistic TLSMode = "opportunistic"
	TLSImplicit      TLSMode = "implicit"
	TLSNone          TLSMode = "none"
)

// OAuth2Config holds client-credentials settings for XOAUTH2
type OAuth2Config struct {
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

// Config holds SMTP delivery settings
type Config struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	TLS      TLSMode  `mapstructure:"tls"`
	Auth     AuthMode `mapstructure:"auth"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	// FromAddr also serves as the XOAUTH2 username when Username is empty
	FromAddr string       `mapstructure:"from_addr"`
	FromName string       `mapstructure:"from_name"`
	OAuth2   OAuth2Config `mapstructure:"oauth2"`

	MaxRetries     int           `mapstructure:"max_retries"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	SendTimeout    time.Duration `mapstructure:"send_timeout"`
}

// DefaultConfig returns a disabled configuration with sane defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:        false,
		SMTPPort:       587,
		TLS:            TLSMandatory,
		Auth:           AuthPlain,
		FromName:       "Drive",
		MaxRetries:     3,
		RetryInterval:  2 * time.Second,
		ConnectTimeout: 10 * time.Second,
		SendTimeout:    30 * time.Second,
	}
}

// SetDefaults fills zero values
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.SMTPPort == 0 {
		c.SMTPPort = d.SMTPPort
	}
	if c.TLS == "" {
		c.TLS = d.TLS
	}
	if c.Auth == "" {
		c.Auth = d.Auth
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = d.RetryInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = d.SendTimeout
	}
}

// Validate checks the configuration; a disabled mailer is always valid
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SMTPHost == "" {
		return errors.New("mail: smtp_host is required")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return errors.New("mail: smtp_port must be between 1 and 65535")
	}
	if c.FromAddr == "" {
		return errors.New("mail: from_addr is required")
	}
	switch c.TLS {
	case TLSMandatory, TLSOpportunistic, TLSImplicit, TLSNone:
	default:
		return fmt.Errorf("mail: unknown tls mode %q", c.TLS)
	}
	switch c.Auth {
	case AuthNone:
	case AuthPlain:
		if c.Username == "" {
			return errors.New("mail: username is required for plain auth")
		}
	case AuthXOAUTH2:
		o := c.OAuth2
		if o.TokenURL == "" || o.ClientID == "" || o.ClientSecret == "" {
			return errors.New("mail: oauth2 token_url, client_id and client_secret are required for xoauth2")
		}
	default:
		return fmt.Errorf("mail: unknown auth mode %q", c.Auth)
	}
	return nil
}
