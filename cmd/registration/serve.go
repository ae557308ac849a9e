package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"confreg/internal/registrations/events"
	"confreg/internal/registrations/handler"
	"confreg/internal/registrations/notifier"
	"confreg/internal/registrations/repository"
	"confreg/internal/registrations/service"
	"confreg/internal/registrations/validator"
	"confreg/pkg/app"
	"confreg/pkg/config"
	"confreg/pkg/kafka"
	kafkamw "confreg/pkg/kafka/middleware"
)

const ServiceName = "registration"

var rootCmd = &cobra.Command{
	Use:   "registration",
	Short: "Conference registration intake API",
	Long: `Accepts attendee registrations, records them in a Google Sheet and
sends a confirmation SMS through mNotify.

Configuration is read from the environment and an optional .env file
(override the location with ENV_FILE).`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, healthCmd, smsTestCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting conference registration API", "conference", cfg.ConferenceName)
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	registrationService := initServices(cfg, publisher)

	serverApp.SetApp(
		handler.NewRootHandler(cfg),
		handler.NewHealthHandler(registrationService, cfg.Log),
		handler.NewRegistrationHandler(registrationService, cfg.Log, serverApp.WriteMiddleware()...),
	)
	cfg.Log.Info("API is ready to accept registrations")
	serverApp.Run()
	return nil
}

func initServices(cfg *config.Config, publisher events.Publisher) service.RegistrationService {
	registrationValidator := validator.NewRegistrationValidator(cfg.Log)
	registrationRepo := repository.NewSheetRegistrationRepository(cfg)
	smsNotifier := notifier.NewSMSNotifier(cfg)

	registrationService := service.NewRegistrationService(
		registrationRepo,
		smsNotifier,
		publisher,
		registrationValidator,
		cfg,
	)

	cfg.Log.Info("Registration service initialized", "sms_ready", smsNotifier.Ready())
	return registrationService
}

// initPublisher falls back to a no-op publisher when Kafka is not
// configured or the producer cannot be built.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka not configured, registration events disabled")
		return events.NewNopPublisher()
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.KafkaRegistrationsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, registration events disabled", "error", err)
		return events.NewNopPublisher()
	}
	producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
	serverApp.OnShutdown(producer.Close)

	cfg.Log.Info("Kafka producer initialized", "topic", producer.Topic(), "brokers", cfg.Kafka.Brokers)
	return events.NewKafkaPublisher(producer)
}

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}
