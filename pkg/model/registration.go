package model

// RegistrationRequest is the attendee submission as posted by the form.
type RegistrationRequest struct {
	FullName          string `json:"full_name" validate:"required,min=2,max=100"`
	Church            string `json:"church" validate:"required,min=2,max=100"`
	City              string `json:"city" validate:"required,min=2,max=100"`
	Phone             string `json:"phone,omitempty" validate:"omitempty,min=10,max=15,ghana_phone"`
	Institution       string `json:"institution,omitempty" validate:"omitempty,min=2,max=150"`
	Leader            string `json:"leader,omitempty" validate:"omitempty,min=2,max=100"`
	Email             string `json:"email,omitempty" validate:"omitempty,email"`
	ContactMethod     string `json:"contact_method,omitempty" validate:"omitempty,oneof=Phone Email WhatsApp"`
	FirstTimeAttendee string `json:"first_time_attendee,omitempty"`
	PrayerRequest     string `json:"prayer_request,omitempty" validate:"omitempty,max=500"`
	PrivacyConsent    bool   `json:"privacy_consent" validate:"required"`
}

// Registration is a validated submission whose free text has been escaped.
// It only lives for the duration of one request.
type Registration struct {
	FullName          string `json:"full_name"`
	Church            string `json:"church"`
	City              string `json:"city"`
	Phone             string `json:"phone"`
	Institution       string `json:"institution"`
	Leader            string `json:"leader"`
	Email             string `json:"email"`
	ContactMethod     string `json:"contact_method"`
	FirstTimeAttendee string `json:"first_time_attendee"`
	PrayerRequest     string `json:"prayer_request"`
}

type RegistrationResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *RegistrationData `json:"data,omitempty"`
}

type RegistrationData struct {
	Name       string `json:"name"`
	SMSSent    bool   `json:"sms_sent"`
	SMSMessage string `json:"sms_message"`
}
