package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MAIL_FAILURE_POLICY", "LOG")
	t.Setenv("FRONTEND_URL", "https://app.example.com/")
	t.Setenv("ACTIVATION_TOKEN_TTL_HOURS", "48")
	t.Setenv("SEND_STUDENT_ACTIVATION_EMAILS", "not-a-bool")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, MailFailurePolicyLog, cfg.MailFailurePolicy)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, 48*time.Hour, cfg.ActivationTokenTTL)
	assert.False(t, cfg.SendStudentActivationEmails)
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("MAIL_FAILURE_POLICY", "retry")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_FAILURE_POLICY")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_BOOL", "true")

	assert.Equal(t, 7, getEnvInt("TEST_INT", 7))
	assert.True(t, getEnvBool("TEST_BOOL", false))
	assert.Equal(t, "fallback", getEnv("TEST_MISSING_KEY", "fallback"))
}

func TestImportArchiveEnabled(t *testing.T) {
	cfg := &Config{ImportArchiveBucket: "imports"}
	assert.False(t, cfg.ImportArchiveEnabled())

	cfg.S3AccessKeyID = "key"
	cfg.S3SecretAccessKey = "secret"
	assert.True(t, cfg.ImportArchiveEnabled())
}
