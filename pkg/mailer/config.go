package mailer

import "time"

// Config holds mail transport configuration.
// SMTP settings and Postmark tokens are both optional so that each deployment
// configures only the transport it actually uses. SenderEmail is required as
// it establishes the sender identity for all outbound mail.
type Config struct {
	SenderEmail  string `env:"SENDER_EMAIL,required"` // SenderEmail is the From address on all outbound mail.
	SupportEmail string `env:"SUPPORT_EMAIL"`         // SupportEmail, when set, becomes the Reply-To address.

	SMTPHost     string        `env:"SMTP_HOST"`                       // SMTPHost is the SMTP server hostname.
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`      // SMTPPort is the SMTP server port.
	SMTPUsername string        `env:"SMTP_USERNAME"`                   // SMTPUsername enables PLAIN auth when set.
	SMTPPassword string        `env:"SMTP_PASSWORD"`                   // SMTPPassword is paired with SMTPUsername.
	SMTPUseTLS   bool          `env:"SMTP_USE_TLS" envDefault:"true"`  // SMTPUseTLS upgrades the session via STARTTLS.
	SendTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`   // SendTimeout bounds a full SMTP exchange.

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`  // PostmarkServerToken authorizes the Postmark API.
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"` // PostmarkAccountToken authorizes account-level calls.
}
