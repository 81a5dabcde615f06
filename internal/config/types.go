package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string      `env:"DB_NAME,required"`
	Port      string      `env:"PORT,required"`
	LogFormat string      `env:"LOG_FORMAT" envDefault:"json"`
	Slack     SlackConfig `envPrefix:"SLACK_"`
	Turso     TursoConfig `envPrefix:"TURSO_"`
	ProjectID string      `env:"GCP_PROJECT"`
	Retry     RetryConfig `envPrefix:"SUBMIT_RETRY_"`
}

type SlackConfig struct {
	Token         string `env:"BOT_TOKEN"`
	ChannelID     string `env:"CHANNEL_ID"`
	SigningSecret string `env:"SIGNING_SECRET"`
}

// Enabled reports whether enough is configured to post messages.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string `env:"PRIMARY_URL"`
	AuthToken  string `env:"AUTH_TOKEN"`
}

type RetryConfig struct {
	MaxRetries uint64        `env:"MAX" envDefault:"3"`
	BaseDelay  time.Duration `env:"BASE_DELAY" envDefault:"50ms"`
}
