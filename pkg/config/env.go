package config

const (
	EnvFile = "ENV_FILE"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvSheetsCredentialsPath = "GOOGLE_SHEETS_CREDENTIALS_PATH"
	EnvSheetID               = "GOOGLE_SHEET_ID"
	EnvSheetsTimeout         = "SHEETS_TIMEOUT"

	EnvMNotifyAPIKey   = "MNOTIFY_API_KEY"
	EnvMNotifyEndpoint = "MNOTIFY_ENDPOINT"
	EnvMNotifySenderID = "MNOTIFY_SENDER_ID"
	EnvSMSTimeout      = "SMS_TIMEOUT"

	EnvConferenceName    = "CONFERENCE_NAME"
	EnvFrontendURL       = "FRONTEND_URL"
	EnvAllowedOrigins    = "ALLOWED_ORIGINS"
	EnvWhatsAppGroupLink = "WHATSAPP_GROUP_LINK"
	EnvFacebookURL       = "FACEBOOK_URL"
	EnvYouTubeURL        = "YOUTUBE_URL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvTrustedProxies    = "TRUSTED_PROXIES"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaRegistrationsTopic = "KAFKA_REGISTRATIONS_TOPIC"
)
