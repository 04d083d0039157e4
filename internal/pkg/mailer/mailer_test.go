package mailer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.SMTPHost = "127.0.0.1"
	cfg.SMTPPort = 1
	cfg.TLS = TLSNone
	cfg.Auth = AuthNone
	cfg.FromAddr = "noreply@drive.test"
	cfg.MaxRetries = 1
	cfg.ConnectTimeout = time.Second
	cfg.SendTimeout = 2 * time.Second
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, (&Config{}).Validate())
	assert.NoError(t, testConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing host", func(c *Config) { c.SMTPHost = "" }, "smtp_host"},
		{"missing from", func(c *Config) { c.FromAddr = "" }, "from_addr"},
		{"bad tls", func(c *Config) { c.TLS = "starttls" }, "tls"},
		{"plain without user", func(c *Config) { c.Auth = AuthPlain }, "username"},
		{"xoauth2 without client", func(c *Config) { c.Auth = AuthXOAUTH2 }, "oauth2"},
		{"bad auth", func(c *Config) { c.Auth = "cram-md5" }, "auth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, TLSMandatory, cfg.TLS)
	assert.Equal(t, AuthPlain, cfg.Auth)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestMailer_BuildMessage(t *testing.T) {
	m, err := New(testConfig(), nil)
	require.NoError(t, err)

	msg, err := m.buildMessage(&Message{
		To:      []string{"bob@example.com"},
		Subject: "Alice shared a file with you",
		Body:    "report.pdf",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "bob@example.com")
	assert.Contains(t, out, "noreply@drive.test")
	assert.Contains(t, out, "Subject: Alice shared a file with you")
	assert.Contains(t, out, "X-Mailer: drive-backend")
}

func TestMailer_SendValidation(t *testing.T) {
	m, err := New(testConfig(), nil)
	require.NoError(t, err)

	assert.ErrorContains(t, m.Send(context.Background(), &Message{Subject: "s", Body: "b"}), "recipient")
	assert.ErrorContains(t, m.Send(context.Background(), &Message{To: []string{"a@b.c"}, Body: "b"}), "subject")
}

func TestMailer_SendUnreachable(t *testing.T) {
	m, err := New(testConfig(), nil)
	require.NoError(t, err)

	err = m.Send(context.Background(), &Message{To: []string{"bob@example.com"}, Subject: "s", Body: "b"})
	assert.ErrorContains(t, err, "after 1 attempts")
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.SMTPHost = ""
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
