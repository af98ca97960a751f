package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// SMTP (outbound)
	// ----------------------------
	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"talent@reachpilot.io"`

	// ----------------------------
	// IMAP (inbound)
	// ----------------------------
	IMAPHost     string `envconfig:"IMAP_HOST" default:"localhost"`
	IMAPPort     int    `envconfig:"IMAP_PORT" default:"993"`
	IMAPUser     string `envconfig:"IMAP_USER" default:""`
	IMAPPassword string `envconfig:"IMAP_PASSWORD" default:""`
	IMAPFolder   string `envconfig:"IMAP_FOLDER" default:"INBOX"`

	// ----------------------------
	// Sweep
	// ----------------------------
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"60s"`
	SendDelay      time.Duration `envconfig:"SEND_DELAY" default:"1500ms"`
	InboxBatchSize int           `envconfig:"INBOX_BATCH_SIZE" default:"50"`

	// Delays between an external trigger and its scheduled email.
	SkillOfferDelay time.Duration `envconfig:"SKILL_OFFER_DELAY" default:"1h"`
	ReviewDelay     time.Duration `envconfig:"REVIEW_DELAY" default:"1h"`
	RejectDelay     time.Duration `envconfig:"REJECT_DELAY" default:"24h"`

	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort string `envconfig:"API_PORT" default:"8080"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	// ----------------------------
	// Database
	// ----------------------------
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return &cfg, err
}
