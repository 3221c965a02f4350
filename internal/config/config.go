// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string `env:"KIDQUEST_ADDR" envDefault:":8080"`
	DBPath   string `env:"KIDQUEST_DB_PATH" envDefault:"kidquest.db"`
	DataDir  string `env:"KIDQUEST_DATA_DIR" envDefault:"."`
	LogLevel string `env:"KIDQUEST_LOG_LEVEL" envDefault:"info"`

	JWTSecret     string `env:"KIDQUEST_JWT_SECRET,required"`
	SessionTTLHrs int    `env:"KIDQUEST_SESSION_TTL_HOURS" envDefault:"720"`
	TokenTTLHrs   int    `env:"KIDQUEST_TOKEN_TTL_HOURS" envDefault:"24"`

	VAPIDPublicKey  string `env:"KIDQUEST_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"KIDQUEST_VAPID_PRIVATE_KEY"`
	PushSubscriber  string `env:"KIDQUEST_PUSH_SUBSCRIBER"`

	SESRegion    string `env:"KIDQUEST_SES_REGION" envDefault:"us-east-1"`
	SESFromEmail string `env:"KIDQUEST_SES_FROM_EMAIL"`
	SESFromName  string `env:"KIDQUEST_SES_FROM_NAME" envDefault:"KidQuest"`

	S3Endpoint       string `env:"KIDQUEST_S3_ENDPOINT"`
	S3Bucket         string `env:"KIDQUEST_S3_BUCKET"`
	S3Region         string `env:"KIDQUEST_S3_REGION" envDefault:"us-east-1"`
	S3AccessKey      string `env:"KIDQUEST_S3_ACCESS_KEY"`
	S3SecretKey      string `env:"KIDQUEST_S3_SECRET_KEY"`
	BackupPassphrase string `env:"KIDQUEST_BACKUP_PASSPHRASE"`
	BackupHour       int    `env:"KIDQUEST_BACKUP_HOUR" envDefault:"3"`
	BackupRetention  int    `env:"KIDQUEST_BACKUP_RETENTION_DAYS" envDefault:"30"`
}

// Load reads .env when present, then parses the environment. A missing
// .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
