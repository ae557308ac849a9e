package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confreg/internal/registrations/events"
	"confreg/internal/registrations/notifier"
	"confreg/internal/registrations/repository"
	"confreg/internal/registrations/validator"
	"confreg/pkg/config"
	apperrors "confreg/pkg/errors"
	"confreg/pkg/logger"
	"confreg/pkg/middleware"
	"confreg/pkg/model"
	"confreg/pkg/sanitizer"
)

const (
	MsgSaveFailed      = "Failed to save registration. Please try again or contact support."
	MsgValidation      = "Validation failed"
	MsgNoPhone         = "No phone number provided"
	MsgSMSConfirmation = "Confirmation SMS sent successfully"
	MsgTimedOut        = "Request timeout"
)

type RegistrationService interface {
	Register(ctx context.Context, req *model.RegistrationRequest) (*model.RegistrationResult, error)
	Health(ctx context.Context) *model.HealthReport
}

type registrationService struct {
	repo          repository.RegistrationRepository
	notifier      notifier.Notifier
	publisher     events.Publisher
	validator     *validator.RegistrationValidator
	log           *logger.Logger
	sheetsTimeout time.Duration
}

func NewRegistrationService(
	repo repository.RegistrationRepository,
	notifier notifier.Notifier,
	publisher events.Publisher,
	validator *validator.RegistrationValidator,
	cfg *config.Config,
) RegistrationService {
	return &registrationService{
		repo:          repo,
		notifier:      notifier,
		publisher:     publisher,
		validator:     validator,
		log:           cfg.Log,
		sheetsTimeout: cfg.SheetsTimeout,
	}
}

// Register validates, sanitizes and persists one registration, then attempts
// the confirmation SMS. Once the row is saved the call succeeds whatever
// happens to the SMS.
func (s *registrationService) Register(ctx context.Context, req *model.RegistrationRequest) (*model.RegistrationResult, error) {
	requestID := middleware.RequestIDFromContext(ctx)
	log := s.log.With("request_id", requestID)

	if err := s.validator.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("Registration validation failed", "error", err)
			return nil, apperrors.Validation(MsgValidation, verrs.Fields())
		}
		return nil, apperrors.Internal("An unexpected error occurred. Please try again.", err)
	}

	log.Info("Processing new registration")
	reg := sanitizer.SanitizeRegistration(*req)

	// From here on the client gets the outcome of the write, never a timeout.
	if !middleware.Commit(ctx) {
		log.Warn("Request timed out before the registration was saved")
		return nil, apperrors.Timeout(MsgTimedOut)
	}

	if err := s.persist(ctx, &reg); err != nil {
		log.Error("Failed to save to Google Sheets", "error", err)
		return nil, apperrors.Sheets(MsgSaveFailed, err)
	}
	log.Info("Registration saved to Google Sheets successfully")

	s.publish(ctx, log, &reg, requestID)

	smsSent, smsMessage := s.notify(ctx, log, &reg)

	if smsSent {
		smsMessage = MsgSMSConfirmation
	}

	return &model.RegistrationResult{
		Success: true,
		Message: fmt.Sprintf("Registration successful! Welcome, %s!", reg.FullName),
		Data: &model.RegistrationData{
			Name:       reg.FullName,
			SMSSent:    smsSent,
			SMSMessage: smsMessage,
		},
	}, nil
}

// persist is detached from the caller's cancellation so that a client
// hanging up does not abort a half-written row.
func (s *registrationService) persist(ctx context.Context, reg *model.Registration) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sheetsTimeout)
	defer cancel()
	return s.repo.Append(ctx, reg)
}

func (s *registrationService) publish(ctx context.Context, log *logger.Logger, reg *model.Registration, requestID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.PublishTimeout)
	defer cancel()
	if err := s.publisher.RegistrationRecorded(ctx, reg, requestID); err != nil {
		log.Warn("Failed to publish registration event", "error", err)
	}
}

func (s *registrationService) notify(ctx context.Context, log *logger.Logger, reg *model.Registration) (sent bool, message string) {
	if reg.Phone == "" {
		return false, MsgNoPhone
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("SMS service error (non-critical)", "panic", r)
			sent, message = false, fmt.Sprint(r)
		}
	}()

	sent, message = s.notifier.SendConfirmation(context.WithoutCancel(ctx), reg.Phone, reg.FullName)
	if sent {
		log.Info("SMS confirmation sent successfully")
	} else {
		log.Warn("SMS failed but registration succeeded", "reason", message)
	}
	return sent, message
}
