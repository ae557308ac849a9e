package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"confreg/pkg/client"
	kafka_config "confreg/pkg/kafka/config"
	"confreg/pkg/logger"
)

type Config struct {
	Port string

	SheetsCredentialsPath string
	SheetID               string
	SheetsTimeout         time.Duration

	MNotifyAPIKey   string
	MNotifyEndpoint string
	MNotifySenderID string
	SMSTimeout      time.Duration

	ConferenceName    string
	FrontendURL       string
	AllowedOrigins    []string
	WhatsAppGroupLink string
	FacebookURL       string
	YouTubeURL        string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustedProxies    []string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Kafka                   *kafka_config.Config
	KafkaRegistrationsTopic string

	LogLevel string
	Log      *logger.Logger
	Client   *client.Client
}

// Load reads the environment (and an optional .env file), validates the
// result and exits the process when the configuration is unusable.
func Load(serviceName string) *Config {
	cfg, err := Read(NewSource())
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()

	cfg.Client = client.NewClient()
	cfg.Client.SetSheets(cfg.Log, cfg.SheetsCredentialsPath, cfg.SheetID)
	cfg.Client.SetMNotify(cfg.Log, cfg.MNotifyEndpoint, cfg.MNotifyAPIKey, cfg.MNotifySenderID, cfg.SMSTimeout)
	return cfg
}

// NewSource builds the viper instance configuration is read from. Process
// environment wins over the .env file.
func NewSource() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	envFile := os.Getenv(EnvFile)
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if _, err := os.Stat(envFile); err == nil {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ignoring unreadable env file %s: %v\n", envFile, err)
		}
	}
	return v
}

// Read maps a viper source onto Config and validates it.
func Read(v *viper.Viper) (*Config, error) {
	src := source{v: v}

	cfg := &Config{
		Port: src.str(EnvPort, DefaultPort),

		SheetsCredentialsPath: src.str(EnvSheetsCredentialsPath, ""),
		SheetID:               src.str(EnvSheetID, ""),
		SheetsTimeout:         src.duration(EnvSheetsTimeout, DefaultSheetsTimeout),

		MNotifyAPIKey:   src.str(EnvMNotifyAPIKey, ""),
		MNotifyEndpoint: src.str(EnvMNotifyEndpoint, DefaultMNotifyEndpoint),
		MNotifySenderID: src.str(EnvMNotifySenderID, DefaultMNotifySenderID),
		SMSTimeout:      src.duration(EnvSMSTimeout, DefaultSMSTimeout),

		ConferenceName:    src.str(EnvConferenceName, DefaultConferenceName),
		FrontendURL:       src.str(EnvFrontendURL, DefaultFrontendURL),
		AllowedOrigins:    src.list(EnvAllowedOrigins, DefaultAllowedOrigins),
		WhatsAppGroupLink: src.str(EnvWhatsAppGroupLink, ""),
		FacebookURL:       src.str(EnvFacebookURL, ""),
		YouTubeURL:        src.str(EnvYouTubeURL, ""),

		RateLimitRequests: src.num(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   src.duration(EnvRateLimitWindow, DefaultRateLimitWindow),
		TrustedProxies:    src.list(EnvTrustedProxies, nil),

		RequestTimeout: src.duration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: src.duration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: src.num(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     src.duration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    src.duration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     src.duration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: src.duration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Kafka: &kafka_config.Config{
			Brokers:              src.list(kafka_config.EnvKafkaBrokers, nil),
			ProducerMaxAttempts:  src.num(kafka_config.EnvKafkaProducerMaxAttempts, kafka_config.DefaultProducerMaxAttempts),
			ProducerBatchTimeout: src.duration(kafka_config.EnvKafkaProducerBatchTimeout, kafka_config.DefaultProducerBatchTimeout),
			ProducerRequireAcks:  src.num(kafka_config.EnvKafkaProducerRequireAcks, kafka_config.DefaultProducerRequireAcks),
			ProducerCompression:  src.str(kafka_config.EnvKafkaProducerCompression, kafka_config.DefaultProducerCompression),
			ProducerAsync:        src.boolean(kafka_config.EnvKafkaProducerAsync, kafka_config.DefaultProducerAsync),
		},
		KafkaRegistrationsTopic: src.str(EnvKafkaRegistrationsTopic, DefaultKafkaRegistrationsTopic),

		LogLevel: src.str(EnvLogLevel, DefaultLogLevel),
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MNotifySenderID == "" {
		problems = append(problems, "MNotifySenderID cannot be empty")
	} else if len(cfg.MNotifySenderID) > MaxSenderIDLength {
		problems = append(problems, fmt.Sprintf("MNotifySenderID must be at most %d characters, got: %q", MaxSenderIDLength, cfg.MNotifySenderID))
	}
	if cfg.MNotifyEndpoint == "" {
		problems = append(problems, "MNotifyEndpoint cannot be empty")
	}
	if strings.TrimSpace(cfg.ConferenceName) == "" {
		problems = append(problems, "ConferenceName cannot be empty")
	}

	if cfg.SheetsTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("SheetsTimeout must be positive, got: %s", cfg.SheetsTimeout))
	}
	if cfg.SMSTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("SMSTimeout must be positive, got: %s", cfg.SMSTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		problems = append(problems, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if budget := cfg.RegistrationBudget(); cfg.RequestTimeout > 0 && cfg.RequestTimeout <= budget {
		problems = append(problems, fmt.Sprintf("RequestTimeout must exceed SheetsTimeout + publish timeout + SMSTimeout (%s), got: %s", budget, cfg.RequestTimeout))
	}
	if cfg.WriteTimeout > 0 && cfg.WriteTimeout <= cfg.RequestTimeout {
		problems = append(problems, fmt.Sprintf("WriteTimeout must exceed RequestTimeout (%s), got: %s", cfg.RequestTimeout, cfg.WriteTimeout))
	}
	if _, err := cfg.TrustedProxyPrefixes(); err != nil {
		problems = append(problems, err.Error())
	}

	if cfg.RateLimitRequests <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.KafkaEnabled() {
		if cfg.KafkaRegistrationsTopic == "" {
			problems = append(problems, "KafkaRegistrationsTopic cannot be empty when KAFKA_BROKERS is set")
		}
		if err := cfg.Kafka.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range problems {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"conference_name", cfg.ConferenceName,
		"frontend_url", cfg.FrontendURL,
		"whatsapp_group_link_set", cfg.WhatsAppGroupLink != "",
		"facebook_url", cfg.FacebookURL,
		"youtube_url", cfg.YouTubeURL,
		"sheets_credentials_path", cfg.SheetsCredentialsPath,
		"sheet_id_set", cfg.SheetID != "",
		"sheets_timeout", cfg.SheetsTimeout,
		"mnotify_api_key_set", cfg.MNotifyAPIKey != "",
		"mnotify_sender_id", cfg.MNotifySenderID,
		"sms_timeout", cfg.SMSTimeout,
		"allowed_origins", cfg.CORSOrigins(),
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"trusted_proxies", cfg.TrustedProxies,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_enabled", cfg.KafkaEnabled(),
		"kafka_registrations_topic", cfg.KafkaRegistrationsTopic,
	)
}

// CORSOrigins is AllowedOrigins plus the frontend URL, deduplicated.
func (cfg *Config) CORSOrigins() []string {
	seen := make(map[string]struct{}, len(cfg.AllowedOrigins)+1)
	origins := make([]string, 0, len(cfg.AllowedOrigins)+1)
	for _, o := range append(append([]string{}, cfg.AllowedOrigins...), cfg.FrontendURL) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		origins = append(origins, o)
	}
	return origins
}

// RegistrationBudget is the longest a registration can legitimately take
// once it has been committed: the sheet write, the event and the SMS.
func (cfg *Config) RegistrationBudget() time.Duration {
	return cfg.SheetsTimeout + PublishTimeout + cfg.SMSTimeout
}

// TrustedProxyPrefixes parses TrustedProxies. Bare addresses are treated as
// single-host prefixes.
func (cfg *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cfg.TrustedProxies))
	for _, raw := range cfg.TrustedProxies {
		if prefix, err := netip.ParsePrefix(raw); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TrustedProxies entries must be IPs or CIDRs, got: %q", raw)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (cfg *Config) KafkaEnabled() bool {
	return cfg.Kafka.Enabled()
}

type source struct {
	v *viper.Viper
}

func (s source) str(key, fallback string) string {
	if value := strings.TrimSpace(s.v.GetString(key)); value != "" {
		return value
	}
	return fallback
}

func (s source) num(key string, fallback int) int {
	if value := s.v.GetString(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) duration(key string, fallback time.Duration) time.Duration {
	if value := s.v.GetString(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func (s source) boolean(key string, fallback bool) bool {
	if value := s.v.GetString(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func (s source) list(key string, fallback []string) []string {
	value := s.v.GetString(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
