package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("ALLOWED_ROLES", "")
	t.Setenv("STATUS_POLICY", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, []string{"admin", "user"}, cfg.AllowedRoles)
	assert.Equal(t, "permissive", cfg.StatusPolicy)
	assert.Equal(t, "primary", cfg.GoogleCalendarID)
	assert.Equal(t, 5*time.Second, cfg.AuthResolveTimeout)
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("ALLOWED_ROLES", "admin, manager ,,technician")
	t.Setenv("AUTO_CONVERT_QUALIFIED", "false")
	t.Setenv("REPORT_CACHE_TTL", "90s")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550000000")

	cfg := Load()

	assert.True(t, cfg.SMTPEnabled())
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, []string{"admin", "manager", "technician"}, cfg.AllowedRoles)
	assert.False(t, cfg.AutoConvertQualified)
	assert.Equal(t, 90*time.Second, cfg.ReportCacheTTL)
	assert.True(t, cfg.TwilioEnabled())
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("X_INT", "not-a-number")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, time.Minute, getEnvAsDuration("X_DUR", time.Minute))
}
