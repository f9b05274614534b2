package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)

	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, "memory", c.Cache.Kind)
	require.Equal(t, GmailHost, c.SMTP.Host)
	require.Equal(t, 587, c.SMTP.Port)
	require.Equal(t, DefaultSender, c.SMTP.Username)
	require.Equal(t, DefaultSender, c.SMTP.From)
	require.Equal(t, 60*time.Minute, c.Auth.Reset.TTL)
	require.Equal(t, 48*time.Hour, c.Auth.Verify.TTL)
	require.Equal(t, 10, c.Security.PasswordPolicy.MinLength)
	require.Equal(t, 5, c.Uploads.MaxProofMB)
	require.Equal(t, 30*time.Minute, c.Checkout.PendingTTL)
}

func TestGmailAppPasswordOverride(t *testing.T) {
	t.Setenv("SMTP_PASSWORD", "other-secret")
	t.Setenv("GMAIL_APP_PASSWORD", "abcd efgh ijkl mnop")

	c, err := FromEnv()
	require.NoError(t, err)

	// GMAIL_APP_PASSWORD manda y queda sin espacios
	require.Equal(t, "abcdefghijklmnop", c.SMTP.Password)
	require.False(t, c.GmailPasswordSuspect())
}

func TestGmailPasswordSuspect(t *testing.T) {
	t.Setenv("GMAIL_APP_PASSWORD", "too short")
	c, err := FromEnv()
	require.NoError(t, err)
	require.True(t, c.GmailPasswordSuspect())

	// con otro host no opinamos
	t.Setenv("SMTP_HOST", "mail.example.com")
	c, err = FromEnv()
	require.NoError(t, err)
	require.False(t, c.GmailPasswordSuspect())
}

func TestNormalizeAppPassword(t *testing.T) {
	require.Equal(t, "abcdefghijklmnop", NormalizeAppPassword(" abcd efgh ijkl mnop "))
	require.Equal(t, "", NormalizeAppPassword("   "))
}

func TestLoadYAMLAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":9090"
smtp:
  username: ventas@example.com
  password: from-yaml
email:
  base_url: https://madidi.example.com
  debug_echo_links: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("SERVER_ADDR", ":7070")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", c.Server.Addr) // env pisa yaml
	require.Equal(t, "ventas@example.com", c.SMTP.Username)
	require.Equal(t, "from-yaml", c.SMTP.Password)
	require.Equal(t, "https://madidi.example.com", c.Email.BaseURL)
	require.True(t, c.Email.DebugEchoLinks)
}

func TestProdForcesNoDebugLinksAndNeedsSecret(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("EMAIL_DEBUG_LINKS", "true")

	_, err := FromEnv()
	require.Error(t, err) // falta JWT_SECRET

	t.Setenv("JWT_SECRET", "super-secret-signing-key")
	c, err := FromEnv()
	require.NoError(t, err)
	require.False(t, c.Email.DebugEchoLinks)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("RATE_WINDOW", "not-a-duration")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestValidateRejectsBadTLSMode(t *testing.T) {
	t.Setenv("SMTP_TLS", "tls13")
	_, err := FromEnv()
	require.Error(t, err)
}
