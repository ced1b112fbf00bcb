package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a default; REDIS_URL and MONGODB_URL may be left empty, in
// which case the queue broker and subscription registry start degraded and
// the service keeps running on the synchronous path.
type Config struct {
	// Server
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Queue broker (Redis)
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	BrokerTimeout  time.Duration `env:"BROKER_CONNECT_TIMEOUT" envDefault:"5s"`
	BrokerPollWait time.Duration `env:"BROKER_POLL_WAIT" envDefault:"2s"`

	// Subscription registry (MongoDB)
	MongoURL      string        `env:"MONGODB_URL" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string        `env:"MONGODB_DATABASE" envDefault:"notifications"`
	MongoTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`

	// Email provider (Postmark)
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	EmailFrom            string `env:"EMAIL_FROM" envDefault:"noreply@artistbooking.com"`

	// SMS provider (Twilio) — all three empty means SMS runs disabled.
	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `env:"TWILIO_PHONE_NUMBER"`

	// Web push (VAPID)
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `env:"VAPID_EMAIL" envDefault:"admin@example.com"`

	// Worker counts, one pool partition per channel topic
	EmailWorkers int `env:"EMAIL_WORKERS" envDefault:"5"`
	SMSWorkers   int `env:"SMS_WORKERS" envDefault:"5"`
	PushWorkers  int `env:"PUSH_WORKERS" envDefault:"5"`

	// Rate limiting: maximum provider calls per second per channel
	RateLimit int `env:"RATE_LIMIT_PER_CHANNEL" envDefault:"100"`

	// Bounded per-provider-call timeout. The source system had none; this is
	// an added safety margin so one slow endpoint cannot starve the pool.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"5s"`

	// Maximum delivery attempts for a queued job before it is logged as
	// permanently failed.
	MaxAttempts int `env:"MAX_DELIVERY_ATTEMPTS" envDefault:"3"`
}

// Load reads the optional .env file, then parses the environment.
func Load() (*Config, error) {
	// The .env file is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
