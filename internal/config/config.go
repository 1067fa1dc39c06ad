package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN         string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL         string `env:"RABBITMQ_URL,required=true"`
	RedisURL            string `env:"REDIS_URL,required=true"`
	MailGatewayURL      string `env:"MAIL_GATEWAY_URL,required=true"`
	MailFromAddress     string `env:"MAIL_FROM_ADDRESS,default=noreply@hiretrack.io"`
	MailRateLimitPerSec int    `env:"MAIL_RATE_LIMIT_PER_SEC,default=50"`
	WorkerConcurrency   int    `env:"WORKER_CONCURRENCY,default=8"`
	EmailMaxAttempts    int    `env:"EMAIL_MAX_ATTEMPTS,default=3"`
	APIPort             int    `env:"API_PORT,default=8080"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
