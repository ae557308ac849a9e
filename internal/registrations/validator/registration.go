package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"confreg/pkg/logger"
	"confreg/pkg/model"
	"confreg/pkg/sanitizer"
)

const (
	MsgGhanaPhone     = "Phone number must be in Ghana format (e.g., 0241234567 or +233241234567)"
	MsgPrivacyConsent = "You must agree to the privacy terms to register"
	MsgContactMethod  = "Contact method must be one of: Phone, Email, WhatsApp"
)

var ghanaPhone = regexp.MustCompile(`^0\d{9}$|^\+233\d{9}$|^233\d{9}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fields groups the messages by the JSON name of the offending field.
func (v ValidationErrors) Fields() map[string][]string {
	fields := make(map[string][]string, len(v))
	for _, err := range v {
		fields[err.Field] = append(fields[err.Field], err.Message)
	}
	return fields
}

type RegistrationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRegistrationValidator(log *logger.Logger) *RegistrationValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("ghana_phone", validateGhanaPhone); err != nil {
		log.Fatal("Failed to register 'ghana_phone' validator", "error", err)
	}

	log.Info("Registration validator initialized successfully")

	return &RegistrationValidator{
		validate: v,
		logger:   log,
	}
}

func validateGhanaPhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return ghanaPhone.MatchString(sanitizer.CleanPhone(phone))
}

// Validate checks req in place. Required text fields are trimmed before the
// checks run and, on success, the phone is replaced by its cleaned form with
// the original prefix kept.
func (v *RegistrationValidator) Validate(req *model.RegistrationRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Church = strings.TrimSpace(req.Church)
	req.City = strings.TrimSpace(req.City)

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.Phone != "" {
		req.Phone = sanitizer.CleanPhone(req.Phone)
	}
	return nil
}

func (v *RegistrationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
			if err.Field() == "privacy_consent" {
				message = MsgPrivacyConsent
			}
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = MsgContactMethod
		case "ghana_phone":
			message = MsgGhanaPhone
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
