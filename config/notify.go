package config

import "time"

// NotifyConfig configures outbound email through the Resend API.
type NotifyConfig struct {
	// APIKey is the Resend API key. When empty, email is logged and skipped.
	APIKey string `env:"RESEND_API_KEY"`
	// From must be a sender verified with the provider.
	From    string        `env:"EMAIL_FROM"    envDefault:"Event Hub <noreply@eventhub.com>"`
	APIURL  string        `env:"EMAIL_API_URL" envDefault:"https://api.resend.com/emails"`
	Timeout time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
	// MaxRetries is the number of additional delivery attempts per email.
	MaxRetries int `env:"EMAIL_MAX_RETRIES" envDefault:"2"`
	// QueueKey is the Redis list used as the mail outbox.
	QueueKey string `env:"EMAIL_QUEUE_KEY" envDefault:"eventhub:mail:outbox"`
	// PollTimeout bounds each blocking pop of the mailer worker.
	PollTimeout time.Duration `env:"EMAIL_POLL_TIMEOUT" envDefault:"5s"`
}

// Sanitize applies guardrails to notifier configuration values.
func (n *NotifyConfig) Sanitize() {
	if n.Timeout <= 0 {
		n.Timeout = 10 * time.Second
	}
	if n.MaxRetries < 0 {
		n.MaxRetries = 0
	}
	if n.MaxRetries > 10 {
		n.MaxRetries = 10
	}
	if n.QueueKey == "" {
		n.QueueKey = "eventhub:mail:outbox"
	}
	if n.PollTimeout <= 0 {
		n.PollTimeout = 5 * time.Second
	}
}

// Enabled reports whether email delivery is configured.
func (n *NotifyConfig) Enabled() bool { return n.APIKey != "" }
