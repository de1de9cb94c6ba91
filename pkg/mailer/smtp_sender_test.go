package mailer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/mailer"
)

func TestNewSMTPSender_ValidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config mailer.Config
	}{
		{
			name: "full config",
			config: mailer.Config{
				SenderEmail:  "noreply@example.com",
				SupportEmail: "support@example.com",
				SMTPHost:     "smtp.example.com",
				SMTPPort:     587,
				SMTPUsername: "user",
				SMTPPassword: "secret",
				SMTPUseTLS:   true,
				SendTimeout:  10 * time.Second,
			},
		},
		{
			name: "no credentials",
			config: mailer.Config{
				SenderEmail: "noreply@example.com",
				SMTPHost:    "localhost",
				SMTPPort:    1025,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender, err := mailer.NewSMTPSender(tt.config)
			require.NoError(t, err)
			assert.NotNil(t, sender)
		})
	}
}

func TestNewSMTPSender_InvalidConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing host", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewSMTPSender(mailer.Config{
			SenderEmail: "noreply@example.com",
			SMTPPort:    587,
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "SMTPHost is required")
	})

	t.Run("missing port", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewSMTPSender(mailer.Config{
			SenderEmail: "noreply@example.com",
			SMTPHost:    "smtp.example.com",
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "SMTPPort must be positive")
	})

	t.Run("missing sender email", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewSMTPSender(mailer.Config{
			SMTPHost: "smtp.example.com",
			SMTPPort: 587,
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "SenderEmail is required")
	})

	t.Run("invalid sender email", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewSMTPSender(mailer.Config{
			SenderEmail: "not-an-address",
			SMTPHost:    "smtp.example.com",
			SMTPPort:    587,
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "valid email address")
	})
}

func TestMustNewSMTPSender_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		mailer.MustNewSMTPSender(mailer.Config{})
	})
}
