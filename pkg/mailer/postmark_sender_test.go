package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/mailer"
)

func TestNewPostmarkSender_ValidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config mailer.Config
	}{
		{
			name: "with support email",
			config: mailer.Config{
				PostmarkServerToken:  "server-token",
				PostmarkAccountToken: "account-token",
				SenderEmail:          "noreply@example.com",
				SupportEmail:         "support@example.com",
			},
		},
		{
			name: "without support email",
			config: mailer.Config{
				PostmarkServerToken:  "server-token",
				PostmarkAccountToken: "account-token",
				SenderEmail:          "noreply@example.com",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender, err := mailer.NewPostmarkSender(tt.config)
			require.NoError(t, err)
			assert.NotNil(t, sender)
		})
	}
}

func TestNewPostmarkSender_InvalidConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing server token", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewPostmarkSender(mailer.Config{
			PostmarkAccountToken: "account-token",
			SenderEmail:          "noreply@example.com",
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "PostmarkServerToken is required")
	})

	t.Run("missing account token", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewPostmarkSender(mailer.Config{
			PostmarkServerToken: "server-token",
			SenderEmail:         "noreply@example.com",
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "PostmarkAccountToken is required")
	})

	t.Run("missing sender email", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewPostmarkSender(mailer.Config{
			PostmarkServerToken:  "server-token",
			PostmarkAccountToken: "account-token",
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "SenderEmail is required")
	})

	t.Run("invalid support email", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewPostmarkSender(mailer.Config{
			PostmarkServerToken:  "server-token",
			PostmarkAccountToken: "account-token",
			SenderEmail:          "noreply@example.com",
			SupportEmail:         "broken",
		})
		require.Error(t, err)
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "SupportEmail must be a valid email address")
	})
}

func TestMustNewPostmarkSender_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		mailer.MustNewPostmarkSender(mailer.Config{})
	})
}
