package config

import "time"

const (
	DefaultPort     = "8000"
	DefaultLogLevel = "info"
	DefaultEnvFile  = ".env"

	DefaultSheetsTimeout = 15 * time.Second

	DefaultMNotifyEndpoint = "https://api.mnotify.com/api/sms/quick"
	DefaultMNotifySenderID = "IYC-C 2025"
	DefaultSMSTimeout      = 10 * time.Second
	MaxSenderIDLength      = 11

	DefaultConferenceName = "IYC Conference 2025"
	DefaultFrontendURL    = "http://localhost:8000"

	DefaultRateLimitRequests = 5
	DefaultRateLimitWindow   = 1 * time.Minute

	// PublishTimeout bounds the registration event. It counts towards the
	// request budget checked by Validate.
	PublishTimeout = 5 * time.Second

	DefaultRequestTimeout = 40 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaRegistrationsTopic = "registrations.recorded"
)

var DefaultAllowedOrigins = []string{
	"http://localhost:8000",
	"http://127.0.0.1:8000",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}
